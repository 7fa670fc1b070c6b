package types

import "github.com/google/uuid"

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// UpdateMeRequest is a partial profile update; nil fields are left untouched.
type UpdateMeRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// AvatarRequest carries a base64 data URI (e.g. "data:image/png;base64,...").
type AvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}

// IngredientAmount references an ingredient row with its amount in a recipe.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1"`
}

type RecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Name        string             `json:"name" binding:"required,max=255"`
	Image       string             `json:"image"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1"`
}
