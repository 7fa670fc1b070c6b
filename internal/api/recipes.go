package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipeService   *service.RecipeService
	shoppingService *service.ShoppingListService
	authService     *service.AuthService
	writeLimit      gin.HandlerFunc
	baseURL         string
}

// NewRecipeHandler wires the recipe routes. writeLimit throttles the
// recipe write path; pass nil to disable throttling.
func NewRecipeHandler(recipeService *service.RecipeService, shoppingService *service.ShoppingListService, authService *service.AuthService, writeLimit gin.HandlerFunc, baseURL string) *RecipeHandler {
	if writeLimit == nil {
		writeLimit = func(c *gin.Context) { c.Next() }
	}
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
		authService:     authService,
		writeLimit:      writeLimit,
		baseURL:         baseURL,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListRecipes)
		recipes.POST("", auth, h.writeLimit, h.CreateRecipe)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetRecipe)
		recipes.PUT("/:id", auth, h.writeLimit, h.UpdateRecipe)
		recipes.PATCH("/:id", auth, h.writeLimit, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.writeLimit, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", auth, h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", auth, h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", auth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromShoppingCart)
	}
}

// ListRecipes returns a page of recipes with optional filters
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	params, ok := parsePageParams(c)
	if !ok {
		return
	}

	filters := service.RecipeFilters{
		Page:  params.Page,
		Limit: params.Limit,
	}

	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "author must be a valid user id"})
			return
		}
		filters.Author = &authorID
	}
	filters.FavoritedOnly = boolFlag(c.Query("is_favorited"))
	filters.InCartOnly = boolFlag(c.Query("is_in_shopping_cart"))

	count, results, err := h.recipeService.List(c.Request.Context(), viewerID(c), filters)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.PageResponse{Count: count, Results: results})
}

// GetRecipe returns one recipe with viewer-dependent flags
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// CreateRecipe creates a recipe authored by the authenticated user
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe rewrites a recipe; only the author may do so
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), currentUserID(c), id, &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe; only the author may do so
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetLink returns a stable share link for the recipe
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := h.recipeService.Get(c.Request.Context(), nil, id); err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"short-link": fmt.Sprintf("%s/recipes/%s", h.baseURL, id)})
}

// FavoriteRecipe adds the recipe to the user's favorites
func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addRelation(c, h.recipeService.Favorite)
}

// UnfavoriteRecipe removes the recipe from the user's favorites
func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeRelation(c, h.recipeService.Unfavorite)
}

// AddToShoppingCart adds the recipe to the user's shopping cart
func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.addRelation(c, h.recipeService.AddToCart)
}

// RemoveFromShoppingCart removes the recipe from the user's shopping cart
func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.removeRelation(c, h.recipeService.RemoveFromCart)
}

// DownloadShoppingCart streams the aggregated shopping list as a text file
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	report, err := h.shoppingService.Report(c.Request.Context(), currentUserID(c))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*types.ShortRecipeResponse, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	short, err := add(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, short)
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), currentUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func boolFlag(raw string) bool {
	return raw == "1" || raw == "true"
}
