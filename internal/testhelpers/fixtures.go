package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every fixture user
const TestPassword = "password123"

// StubImageStore satisfies the image store contract without touching
// disk or the network.
type StubImageStore struct{}

func (StubImageStore) Save(ctx context.Context, data []byte, ext string) (string, error) {
	return fmt.Sprintf("/media/%s.%s", uuid.New(), ext), nil
}

func (StubImageStore) Delete(ctx context.Context, url string) error {
	return nil
}

// CreateUser inserts a user with the shared test password
func CreateUser(t *testing.T, db *gorm.DB, email, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateIngredient inserts one ingredient reference row
func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient: %v", err)
	}
	return ingredient
}

// CreateRecipe inserts a recipe with the given ingredient amounts
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[*models.Ingredient]int) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		Name:        name,
		AuthorID:    author.ID,
		Text:        "Instructions for " + name,
		CookingTime: 10,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe: %v", err)
	}

	for ingredient, amount := range amounts {
		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to create recipe ingredient: %v", err)
		}
	}
	return recipe
}

// AddToCart inserts a shopping cart row
func AddToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()

	if err := db.Create(&models.ShoppingCart{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("failed to add recipe to cart: %v", err)
	}
}

// AddFavorite inserts a favorite row
func AddFavorite(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()

	if err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error; err != nil {
		t.Fatalf("failed to favorite recipe: %v", err)
	}
}
