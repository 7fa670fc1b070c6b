package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/types"
)

// ShoppingListFilename is the attachment name of the downloaded report
const ShoppingListFilename = "shopping_list.txt"

const shoppingListHeader = "Shopping list:"

// ShoppingListService aggregates ingredient amounts across every recipe
// in a user's shopping cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate sums amounts per (ingredient name, measurement unit) over
// the user's cart, sorted by name in code-point order. An empty cart
// yields an empty slice.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	var items []types.ShoppingListItem
	if err := s.db.WithContext(ctx).Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error; err != nil {
		return nil, err
	}

	// Sort here rather than in SQL so the order does not depend on the
	// database collation.
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	return items, nil
}

// Render produces the plain-text report: a fixed header, a blank line,
// then one line per aggregated ingredient.
func (s *ShoppingListService) Render(items []types.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader)
	b.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s (%s) - %d\n", item.Name, item.MeasurementUnit, item.Amount)
	}
	return b.String()
}

// Report aggregates and renders the user's shopping list in one call
func (s *ShoppingListService) Report(ctx context.Context, userID uuid.UUID) (string, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.Render(items), nil
}
