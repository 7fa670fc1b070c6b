package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

var ErrIngredientNotFound = errors.New("ingredient not found")

// IngredientService serves the immutable ingredient reference data
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// List returns ingredients ordered by name, optionally narrowed by a
// case-insensitive name prefix.
func (s *IngredientService) List(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	if namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Get retrieves an ingredient by ID
func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

type ingredientFixture struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// LoadFromFile seeds ingredients from a JSON fixture with get-or-create
// semantics. Returns the number of rows created.
func (s *IngredientService) LoadFromFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read ingredients file: %w", err)
	}

	var fixtures []ingredientFixture
	if err := json.Unmarshal(content, &fixtures); err != nil {
		return 0, fmt.Errorf("failed to parse ingredients file: %w", err)
	}

	created := 0
	for _, f := range fixtures {
		if f.Name == "" || f.MeasurementUnit == "" {
			return created, fmt.Errorf("ingredient entry missing name or measurement_unit")
		}

		ingredient := models.Ingredient{Name: f.Name, MeasurementUnit: f.MeasurementUnit}
		result := s.db.WithContext(ctx).Where("name = ?", f.Name).FirstOrCreate(&ingredient)
		if result.Error != nil {
			return created, result.Error
		}
		if result.RowsAffected > 0 {
			created++
		}
	}

	return created, nil
}
