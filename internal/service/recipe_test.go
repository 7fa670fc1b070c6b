package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

func setupRecipeTest(t *testing.T) (*service.RecipeService, *testRecipeEnv) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewRecipeService(db, testhelpers.StubImageStore{})

	env := &testRecipeEnv{db: db}
	env.author = testhelpers.CreateUser(t, db, "author@example.com", "author")
	env.flour = testhelpers.CreateIngredient(t, db, "Flour", "g")
	env.sugar = testhelpers.CreateIngredient(t, db, "Sugar", "g")
	return svc, env
}

type testRecipeEnv struct {
	db     *gorm.DB
	author *models.User
	flour  *models.Ingredient
	sugar  *models.Ingredient
}

func validRecipeRequest(env *testRecipeEnv) *types.RecipeRequest {
	return &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{
			{ID: env.flour.ID, Amount: 200},
		},
		Name:        "Pancakes",
		Text:        "Mix and fry",
		CookingTime: 15,
	}
}

func TestCreateRecipe(t *testing.T) {
	svc, env := setupRecipeTest(t)

	recipe, err := svc.Create(context.Background(), env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, env.author.ID, recipe.Author.ID)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Flour", recipe.Ingredients[0].Name)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
}

func TestCreateRecipeRejectsEmptyIngredients(t *testing.T) {
	svc, env := setupRecipeTest(t)

	req := validRecipeRequest(env)
	req.Ingredients = nil

	_, err := svc.Create(context.Background(), env.author.ID, req)
	assert.ErrorIs(t, err, service.ErrEmptyIngredients)
}

func TestCreateRecipeRejectsDuplicateIngredients(t *testing.T) {
	svc, env := setupRecipeTest(t)

	req := validRecipeRequest(env)
	req.Ingredients = []types.IngredientAmount{
		{ID: env.flour.ID, Amount: 100},
		{ID: env.flour.ID, Amount: 200},
	}

	_, err := svc.Create(context.Background(), env.author.ID, req)
	assert.ErrorIs(t, err, service.ErrDuplicateIngredients)
}

func TestCreateRecipeRejectsUnknownIngredient(t *testing.T) {
	svc, env := setupRecipeTest(t)

	req := validRecipeRequest(env)
	req.Ingredients = []types.IngredientAmount{{ID: uuid.New(), Amount: 10}}

	_, err := svc.Create(context.Background(), env.author.ID, req)
	assert.ErrorIs(t, err, service.ErrUnknownIngredient)
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	svc, env := setupRecipeTest(t)

	recipe, err := svc.Create(context.Background(), env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), env.author.ID, recipe.ID, &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{
			{ID: env.sugar.ID, Amount: 50},
		},
		Name:        "Sweet Pancakes",
		Text:        "Mix, sweeten and fry",
		CookingTime: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "Sweet Pancakes", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, "Sugar", updated.Ingredients[0].Name)
	assert.Equal(t, 50, updated.Ingredients[0].Amount)
}

func TestUpdateRequiresIngredients(t *testing.T) {
	svc, env := setupRecipeTest(t)

	recipe, err := svc.Create(context.Background(), env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	req := validRecipeRequest(env)
	req.Ingredients = nil

	_, err = svc.Update(context.Background(), env.author.ID, recipe.ID, req)
	assert.ErrorIs(t, err, service.ErrEmptyIngredients)
}

func TestUpdateByNonAuthorForbidden(t *testing.T) {
	svc, env := setupRecipeTest(t)

	recipe, err := svc.Create(context.Background(), env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	other := uuid.New()
	_, err = svc.Update(context.Background(), other, recipe.ID, validRecipeRequest(env))
	assert.ErrorIs(t, err, service.ErrNotRecipeAuthor)

	err = svc.Delete(context.Background(), other, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotRecipeAuthor)
}

func TestFavoriteToggle(t *testing.T) {
	svc, env := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	short, err := svc.Favorite(ctx, env.author.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, recipe.Name, short.Name)

	_, err = svc.Favorite(ctx, env.author.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyFavorited)

	viewed, err := svc.Get(ctx, &env.author.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, viewed.IsFavorited)

	require.NoError(t, svc.Unfavorite(ctx, env.author.ID, recipe.ID))
	assert.ErrorIs(t, svc.Unfavorite(ctx, env.author.ID, recipe.ID), service.ErrNotFavorited)
}

func TestShoppingCartToggle(t *testing.T) {
	svc, env := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, env.author.ID, recipe.ID)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, env.author.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyInCart)

	viewed, err := svc.Get(ctx, &env.author.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, viewed.IsInShoppingCart)

	require.NoError(t, svc.RemoveFromCart(ctx, env.author.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, env.author.ID, recipe.ID), service.ErrNotInCart)
}

func TestToggleOnMissingRecipe(t *testing.T) {
	svc, env := setupRecipeTest(t)
	ctx := context.Background()

	missing := uuid.New()
	_, err := svc.Favorite(ctx, env.author.ID, missing)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
	assert.ErrorIs(t, svc.Unfavorite(ctx, env.author.ID, missing), service.ErrRecipeNotFound)
	_, err = svc.AddToCart(ctx, env.author.ID, missing)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}

func TestAnonymousViewerFlagsFalse(t *testing.T) {
	svc, env := setupRecipeTest(t)
	ctx := context.Background()

	recipe, err := svc.Create(ctx, env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	_, err = svc.Favorite(ctx, env.author.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, env.author.ID, recipe.ID)
	require.NoError(t, err)

	viewed, err := svc.Get(ctx, nil, recipe.ID)
	require.NoError(t, err)
	assert.False(t, viewed.IsFavorited)
	assert.False(t, viewed.IsInShoppingCart)
}

func TestListFilteredByFavorites(t *testing.T) {
	svc, env := setupRecipeTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, env.author.ID, validRecipeRequest(env))
	require.NoError(t, err)

	second := validRecipeRequest(env)
	second.Name = "Waffles"
	_, err = svc.Create(ctx, env.author.ID, second)
	require.NoError(t, err)

	_, err = svc.Favorite(ctx, env.author.ID, first.ID)
	require.NoError(t, err)

	count, results, err := svc.List(ctx, &env.author.ID, service.RecipeFilters{
		FavoritedOnly: true,
		Page:          1,
		Limit:         10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, results, 1)
	assert.Equal(t, first.ID, results[0].ID)
}

func TestDeleteRemovesRelations(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewRecipeService(db, testhelpers.StubImageStore{})
	ctx := context.Background()

	author := testhelpers.CreateUser(t, db, "author@example.com", "author")
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")

	recipe, err := svc.Create(ctx, author.ID, &types.RecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 100}},
		Name:        "Bread",
		Text:        "Bake",
		CookingTime: 60,
	})
	require.NoError(t, err)

	_, err = svc.Favorite(ctx, author.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, author.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author.ID, recipe.ID))

	for _, model := range []interface{}{
		&models.Recipe{}, &models.RecipeIngredient{}, &models.Favorite{}, &models.ShoppingCart{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err = svc.Get(ctx, nil, recipe.ID)
	assert.ErrorIs(t, err, service.ErrRecipeNotFound)
}
