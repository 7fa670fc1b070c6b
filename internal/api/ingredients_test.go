package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestListIngredients(t *testing.T) {
	router, db := setupTestAPI(t)

	testhelpers.CreateIngredient(t, db, "Salt", "g")
	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "Milk", "ml")

	w := doJSON(t, router, "GET", "/api/ingredients", "", nil)
	require.Equal(t, 200, w.Code)

	var all []models.Ingredient
	decodeBody(t, w, &all)
	assert.Len(t, all, 3)

	w = doJSON(t, router, "GET", "/api/ingredients?name=s", "", nil)
	require.Equal(t, 200, w.Code)

	var filtered []models.Ingredient
	decodeBody(t, w, &filtered)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Salt", filtered[0].Name)
	assert.Equal(t, "Sugar", filtered[1].Name)
}

func TestGetIngredient(t *testing.T) {
	router, db := setupTestAPI(t)

	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")

	w := doJSON(t, router, "GET", "/api/ingredients/"+salt.ID.String(), "", nil)
	require.Equal(t, 200, w.Code)

	var found models.Ingredient
	decodeBody(t, w, &found)
	assert.Equal(t, "Salt", found.Name)
	assert.Equal(t, "g", found.MeasurementUnit)

	w = doJSON(t, router, "GET", "/api/ingredients/"+uuid.New().String(), "", nil)
	assert.Equal(t, 404, w.Code)

	w = doJSON(t, router, "GET", "/api/ingredients/not-a-uuid", "", nil)
	assert.Equal(t, 404, w.Code)
}
