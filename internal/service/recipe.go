package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNotRecipeAuthor      = errors.New("only the author can modify this recipe")
	ErrEmptyIngredients     = errors.New("recipe must have at least one ingredient")
	ErrDuplicateIngredients = errors.New("recipe ingredients must not repeat")
	ErrInvalidAmount        = errors.New("ingredient amount must be at least 1")
	ErrUnknownIngredient    = errors.New("recipe refers to an unknown ingredient")
	ErrAlreadyFavorited     = errors.New("recipe is already in favorites")
	ErrNotFavorited         = errors.New("recipe is not in favorites")
	ErrAlreadyInCart        = errors.New("recipe is already in the shopping cart")
	ErrNotInCart            = errors.New("recipe is not in the shopping cart")
)

// RecipeService handles recipe CRUD and the favorite / shopping cart
// relation toggles.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// RecipeFilters narrows recipe listings. FavoritedOnly and InCartOnly
// are ignored for anonymous viewers, as in the upstream filter contract.
type RecipeFilters struct {
	Author        *uuid.UUID
	FavoritedOnly bool
	InCartOnly    bool
	Page          int
	Limit         int
}

// List returns a page of recipes with per-viewer flags computed
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, f RecipeFilters) (int64, []types.RecipeResponse, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if f.Author != nil {
		query = query.Where("recipes.author_id = ?", *f.Author)
	}
	if f.FavoritedOnly && viewer != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *viewer)
	}
	if f.InCartOnly && viewer != nil {
		query = query.
			Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", *viewer)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, nil, err
	}

	var recipes []models.Recipe
	if err := query.
		Order("recipes.created_at, recipes.id").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&recipes).Error; err != nil {
		return 0, nil, err
	}

	results, err := s.buildResponses(ctx, viewer, recipes)
	if err != nil {
		return 0, nil, err
	}
	return count, results, nil
}

// Get retrieves one recipe with per-viewer flags computed
func (s *RecipeService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	responses, err := s.buildResponses(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// Create persists a recipe and its ingredient rows as one unit
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	if err := validateIngredients(req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        req.Name,
		AuthorID:    authorID,
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return insertRecipeIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		if imageURL != "" {
			_ = s.images.Delete(ctx, imageURL)
		}
		return nil, err
	}

	return s.Get(ctx, &authorID, recipe.ID)
}

// Update rewrites the recipe and replaces its whole ingredient set.
// The ingredient list is mandatory even for partial updates.
func (s *RecipeService) Update(ctx context.Context, userID, id uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}

	if err := validateIngredients(req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	oldImage := recipe.ImageURL
	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	if imageURL != "" {
		recipe.ImageURL = imageURL
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkIngredientsExist(tx, req.Ingredients); err != nil {
			return err
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertRecipeIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		if imageURL != "" {
			_ = s.images.Delete(ctx, imageURL)
		}
		return nil, err
	}

	if imageURL != "" && oldImage != "" {
		_ = s.images.Delete(ctx, oldImage)
	}

	return s.Get(ctx, &userID, recipe.ID)
}

// Delete removes a recipe together with its ingredient and relation rows
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrNotRecipeAuthor
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.ShoppingCart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	if recipe.ImageURL != "" {
		_ = s.images.Delete(ctx, recipe.ImageURL)
	}
	return nil
}

// Favorite adds the recipe to the user's favorites
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, userID, recipeID, &models.Favorite{UserID: userID, RecipeID: recipeID}, ErrAlreadyFavorited)
}

// Unfavorite removes the recipe from the user's favorites
func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRelation(ctx, userID, recipeID, &models.Favorite{}, ErrNotFavorited)
}

// AddToCart adds the recipe to the user's shopping cart
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error) {
	return s.addRelation(ctx, userID, recipeID, &models.ShoppingCart{UserID: userID, RecipeID: recipeID}, ErrAlreadyInCart)
}

// RemoveFromCart removes the recipe from the user's shopping cart
func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRelation(ctx, userID, recipeID, &models.ShoppingCart{}, ErrNotInCart)
}

// addRelation implements the shared add half of the toggle contract:
// conflict when the row exists, short recipe body on success. A race on
// the unique index is reported as the same conflict.
func (s *RecipeService) addRelation(ctx context.Context, userID, recipeID uuid.UUID, row interface{}, conflict error) (*types.ShortRecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(row).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, conflict
	}

	short := shortRecipeResponse(&recipe)
	return &short, nil
}

// removeRelation implements the shared remove half: absent row is a
// client error, success has no body.
func (s *RecipeService) removeRelation(ctx context.Context, userID, recipeID uuid.UUID, model interface{}, absent error) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return absent
	}
	return nil
}

func validateIngredients(items []types.IngredientAmount) error {
	if len(items) == 0 {
		return ErrEmptyIngredients
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return ErrInvalidAmount
		}
		if _, ok := seen[item.ID]; ok {
			return ErrDuplicateIngredients
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

func checkIngredientsExist(tx *gorm.DB, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrUnknownIngredient
	}
	return nil
}

func insertRecipeIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return tx.Create(&rows).Error
}

func (s *RecipeService) storeImage(ctx context.Context, dataURI string) (string, error) {
	if dataURI == "" {
		return "", nil
	}
	data, ext, err := DecodeBase64Image(dataURI)
	if err != nil {
		return "", err
	}
	return s.images.Save(ctx, data, ext)
}

// buildResponses assembles the read representation of recipes: embedded
// author with is_subscribed, ingredient rows and the per-viewer flags.
func (s *RecipeService) buildResponses(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	if len(recipes) == 0 {
		return []types.RecipeResponse{}, nil
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	authorSeen := make(map[uuid.UUID]struct{})
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		if _, ok := authorSeen[recipes[i].AuthorID]; !ok {
			authorSeen[recipes[i].AuthorID] = struct{}{}
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}
	}

	var authors []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[uuid.UUID]*models.User, len(authors))
	for i := range authors {
		authorByID[authors[i].ID] = &authors[i]
	}

	subscribed, err := subscribedSet(ctx, s.db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}

	type ingredientRow struct {
		RecipeID        uuid.UUID
		IngredientID    uuid.UUID
		Name            string
		MeasurementUnit string
		Amount          int
	}
	var rows []ingredientRow
	if err := s.db.WithContext(ctx).Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit, recipe_ingredients.amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Order("ingredients.name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	ingredientsByRecipe := make(map[uuid.UUID][]types.RecipeIngredientResponse)
	for _, row := range rows {
		ingredientsByRecipe[row.RecipeID] = append(ingredientsByRecipe[row.RecipeID], types.RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	favorited, err := s.relationSet(ctx, viewer, recipeIDs, &models.Favorite{})
	if err != nil {
		return nil, err
	}
	inCart, err := s.relationSet(ctx, viewer, recipeIDs, &models.ShoppingCart{})
	if err != nil {
		return nil, err
	}

	results := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]

		var author types.UserResponse
		if a, ok := authorByID[r.AuthorID]; ok {
			author = userResponse(a, subscribed[a.ID])
		}

		ingredients := ingredientsByRecipe[r.ID]
		if ingredients == nil {
			ingredients = []types.RecipeIngredientResponse{}
		}

		results[i] = types.RecipeResponse{
			ID:               r.ID,
			Author:           author,
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.ImageURL,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return results, nil
}

// relationSet returns which of the given recipes appear in the viewer's
// favorite or cart rows. Anonymous viewers get an empty set.
func (s *RecipeService) relationSet(ctx context.Context, viewer *uuid.UUID, recipeIDs []uuid.UUID, model interface{}) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(recipeIDs) == 0 {
		return set, nil
	}

	type relationRow struct {
		RecipeID uuid.UUID
	}
	var rows []relationRow
	if err := s.db.WithContext(ctx).Model(model).
		Select("recipe_id").
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		set[row.RecipeID] = true
	}
	return set, nil
}
