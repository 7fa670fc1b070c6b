package api

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func seedIngredients(t *testing.T, db *gorm.DB) (flour, sugar uuid.UUID) {
	t.Helper()
	f := testhelpers.CreateIngredient(t, db, "Flour", "g")
	s := testhelpers.CreateIngredient(t, db, "Sugar", "g")
	return f.ID, s.ID
}

func recipeBody(flour uuid.UUID) gin.H {
	return gin.H{
		"ingredients": []gin.H{
			{"id": flour.String(), "amount": 200},
		},
		"name":         "Pancakes",
		"text":         "Mix and fry",
		"cooking_time": 15,
	}
}

func createRecipe(t *testing.T, router *gin.Engine, token string, flour uuid.UUID) types.RecipeResponse {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/recipes", token, recipeBody(flour))
	if w.Code != 201 {
		t.Fatalf("failed to create recipe: status %d body %s", w.Code, w.Body.String())
	}

	var recipe types.RecipeResponse
	decodeBody(t, w, &recipe)
	return recipe
}

func TestRecipeLifecycle(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, sugar := seedIngredients(t, db)

	token := registerAndLogin(t, router, "author@example.com", "author")
	recipe := createRecipe(t, router, token, flour)

	assert.Equal(t, "Pancakes", recipe.Name)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)

	// Anonymous read sees the recipe with flags down
	w := doJSON(t, router, "GET", "/api/recipes/"+recipe.ID.String(), "", nil)
	require.Equal(t, 200, w.Code)
	var viewed types.RecipeResponse
	decodeBody(t, w, &viewed)
	assert.False(t, viewed.IsFavorited)
	assert.False(t, viewed.IsInShoppingCart)

	// Update replaces the ingredient set
	w = doJSON(t, router, "PATCH", "/api/recipes/"+recipe.ID.String(), token, gin.H{
		"ingredients": []gin.H{
			{"id": sugar.String(), "amount": 50},
		},
		"name":         "Sweet Pancakes",
		"text":         "Mix, sweeten and fry",
		"cooking_time": 20,
	})
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &viewed)
	assert.Equal(t, "Sweet Pancakes", viewed.Name)
	require.Len(t, viewed.Ingredients, 1)
	assert.Equal(t, "Sugar", viewed.Ingredients[0].Name)

	w = doJSON(t, router, "DELETE", "/api/recipes/"+recipe.ID.String(), token, nil)
	assert.Equal(t, 204, w.Code)

	w = doJSON(t, router, "GET", "/api/recipes/"+recipe.ID.String(), "", nil)
	assert.Equal(t, 404, w.Code)
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	w := doJSON(t, router, "POST", "/api/recipes", "", recipeBody(flour))
	assert.Equal(t, 401, w.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	token := registerAndLogin(t, router, "author@example.com", "author")

	// No ingredients
	w := doJSON(t, router, "POST", "/api/recipes", token, gin.H{
		"ingredients":  []gin.H{},
		"name":         "Pancakes",
		"text":         "Mix and fry",
		"cooking_time": 15,
	})
	assert.Equal(t, 400, w.Code)

	// Duplicate ingredients
	w = doJSON(t, router, "POST", "/api/recipes", token, gin.H{
		"ingredients": []gin.H{
			{"id": flour.String(), "amount": 100},
			{"id": flour.String(), "amount": 200},
		},
		"name":         "Pancakes",
		"text":         "Mix and fry",
		"cooking_time": 15,
	})
	assert.Equal(t, 400, w.Code)

	// Unknown ingredient
	w = doJSON(t, router, "POST", "/api/recipes", token, gin.H{
		"ingredients": []gin.H{
			{"id": uuid.New().String(), "amount": 100},
		},
		"name":         "Pancakes",
		"text":         "Mix and fry",
		"cooking_time": 15,
	})
	assert.Equal(t, 400, w.Code)
}

func TestUpdateRecipeByNonAuthor(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	authorToken := registerAndLogin(t, router, "author@example.com", "author")
	otherToken := registerAndLogin(t, router, "other@example.com", "other")

	recipe := createRecipe(t, router, authorToken, flour)

	w := doJSON(t, router, "PATCH", "/api/recipes/"+recipe.ID.String(), otherToken, recipeBody(flour))
	assert.Equal(t, 403, w.Code)

	w = doJSON(t, router, "DELETE", "/api/recipes/"+recipe.ID.String(), otherToken, nil)
	assert.Equal(t, 403, w.Code)
}

func TestFavoriteEndpoints(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	token := registerAndLogin(t, router, "author@example.com", "author")
	recipe := createRecipe(t, router, token, flour)

	w := doJSON(t, router, "POST", "/api/recipes/"+recipe.ID.String()+"/favorite", token, nil)
	require.Equal(t, 201, w.Code)

	var short types.ShortRecipeResponse
	decodeBody(t, w, &short)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, recipe.Name, short.Name)

	// Favoriting twice is a client error
	w = doJSON(t, router, "POST", "/api/recipes/"+recipe.ID.String()+"/favorite", token, nil)
	assert.Equal(t, 400, w.Code)

	w = doJSON(t, router, "DELETE", "/api/recipes/"+recipe.ID.String()+"/favorite", token, nil)
	assert.Equal(t, 204, w.Code)

	w = doJSON(t, router, "DELETE", "/api/recipes/"+recipe.ID.String()+"/favorite", token, nil)
	assert.Equal(t, 400, w.Code)
}

func TestShoppingCartEndpoints(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, sugar := seedIngredients(t, db)

	token := registerAndLogin(t, router, "author@example.com", "author")
	pancakes := createRecipe(t, router, token, flour)

	w := doJSON(t, router, "POST", "/api/recipes", token, gin.H{
		"ingredients": []gin.H{
			{"id": flour.String(), "amount": 300},
			{"id": sugar.String(), "amount": 50},
		},
		"name":         "Cake",
		"text":         "Bake",
		"cooking_time": 45,
	})
	require.Equal(t, 201, w.Code)
	var cake types.RecipeResponse
	decodeBody(t, w, &cake)

	for _, id := range []uuid.UUID{pancakes.ID, cake.ID} {
		w = doJSON(t, router, "POST", "/api/recipes/"+id.String()+"/shopping_cart", token, nil)
		require.Equal(t, 201, w.Code)
	}

	w = doJSON(t, router, "GET", "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
	assert.Equal(t, "Shopping list:\n\nFlour (g) - 500\nSugar (g) - 50\n", w.Body.String())

	w = doJSON(t, router, "DELETE", "/api/recipes/"+cake.ID.String()+"/shopping_cart", token, nil)
	assert.Equal(t, 204, w.Code)

	w = doJSON(t, router, "GET", "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "Shopping list:\n\nFlour (g) - 200\n", w.Body.String())
}

func TestRecipeListFilters(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	authorToken := registerAndLogin(t, router, "author@example.com", "author")
	readerToken := registerAndLogin(t, router, "reader@example.com", "reader")

	recipe := createRecipe(t, router, authorToken, flour)

	w := doJSON(t, router, "POST", "/api/recipes/"+recipe.ID.String()+"/favorite", readerToken, nil)
	require.Equal(t, 201, w.Code)

	// Favorited filter honors the requesting identity
	w = doJSON(t, router, "GET", "/api/recipes?is_favorited=1", readerToken, nil)
	require.Equal(t, 200, w.Code)
	var page struct {
		Count   int64                  `json:"count"`
		Results []types.RecipeResponse `json:"results"`
	}
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Count)

	// Author filter
	w = doJSON(t, router, "GET", "/api/recipes?author="+recipe.Author.ID.String(), "", nil)
	require.Equal(t, 200, w.Code)
	decodeBody(t, w, &page)
	assert.EqualValues(t, 1, page.Count)

	// Malformed author id
	w = doJSON(t, router, "GET", "/api/recipes?author=42", "", nil)
	assert.Equal(t, 400, w.Code)
}

func TestGetLink(t *testing.T) {
	router, db := setupTestAPI(t)
	flour, _ := seedIngredients(t, db)

	token := registerAndLogin(t, router, "author@example.com", "author")
	recipe := createRecipe(t, router, token, flour)

	w := doJSON(t, router, "GET", "/api/recipes/"+recipe.ID.String()+"/get-link", "", nil)
	require.Equal(t, 200, w.Code)

	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.Equal(t, "http://localhost:8080/recipes/"+recipe.ID.String(), resp["short-link"])

	w = doJSON(t, router, "GET", "/api/recipes/"+uuid.New().String()+"/get-link", "", nil)
	assert.Equal(t, 404, w.Code)
}
