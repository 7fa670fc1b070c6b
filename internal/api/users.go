package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/types"
)

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", middleware.OptionalAuthMiddleware(h.authService), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.PATCH("/me", middleware.AuthMiddleware(h.authService), h.UpdateMe)
		users.PUT("/me/avatar", middleware.AuthMiddleware(h.authService), h.SetAvatar)
		users.DELETE("/me/avatar", middleware.AuthMiddleware(h.authService), h.DeleteAvatar)
		users.POST("/set_password", middleware.AuthMiddleware(h.authService), h.SetPassword)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuthMiddleware(h.authService), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

// Register creates a new user account
func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// ListUsers returns a page of registered users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params, ok := parsePageParams(c)
	if !ok {
		return
	}

	count, results, err := h.userService.List(c.Request.Context(), viewerID(c), params.Page, params.Limit)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.PageResponse{Count: count, Results: results})
}

// GetUser returns one user's public profile
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), viewerID(c), id)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Me returns the authenticated user's own profile
func (h *UserHandler) Me(c *gin.Context) {
	userID := currentUserID(c)

	user, err := h.userService.Get(c.Request.Context(), &userID, userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe applies a partial update to the authenticated user's profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req types.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// SetAvatar stores a new avatar from a base64 payload
func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.userService.SetAvatar(c.Request.Context(), currentUserID(c), req.Avatar)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

// DeleteAvatar removes the authenticated user's avatar
func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.userService.DeleteAvatar(c.Request.Context(), currentUserID(c)); err != nil {
		serviceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetPassword changes the authenticated user's password
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.SetPassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the authenticated user follows
func (h *UserHandler) Subscriptions(c *gin.Context) {
	params, ok := parsePageParams(c)
	if !ok {
		return
	}
	recipesLimit, ok := parseBoundedInt(c, "recipes_limit", 0, 0)
	if !ok {
		return
	}

	count, results, err := h.userService.Subscriptions(c.Request.Context(), currentUserID(c), recipesLimit, params.Page, params.Limit)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.PageResponse{Count: count, Results: results})
}

// Subscribe follows an author
func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	recipesLimit, ok := parseBoundedInt(c, "recipes_limit", 0, 0)
	if !ok {
		return
	}

	author, err := h.userService.Subscribe(c.Request.Context(), currentUserID(c), id, recipesLimit)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, author)
}

// Unsubscribe stops following an author
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.userService.Unsubscribe(c.Request.Context(), currentUserID(c), id); err != nil {
		serviceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
