package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/service"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

type pageParams struct {
	Page  int
	Limit int
}

// parsePageParams reads the page and limit query values. Values must be
// strictly numeric and positive; anything else is a client error rather
// than a silent fallback. Returns ok=false after writing the response.
func parsePageParams(c *gin.Context) (pageParams, bool) {
	page, ok := parseBoundedInt(c, "page", 1, 0)
	if !ok {
		return pageParams{}, false
	}
	limit, ok := parseBoundedInt(c, "limit", defaultPageSize, maxPageSize)
	if !ok {
		return pageParams{}, false
	}
	return pageParams{Page: page, Limit: limit}, true
}

// parseBoundedInt parses a positive integer query parameter. An absent
// parameter yields def; max of 0 means uncapped.
func parseBoundedInt(c *gin.Context, name string, def, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	if max > 0 && n > max {
		n = max
	}
	return n, true
}

// parseID reads the id path parameter. A malformed identifier cannot
// name any resource, so it reads as absent.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID returns the authenticated user set by AuthMiddleware
func currentUserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get("user_id")
	id, _ := v.(uuid.UUID)
	return id
}

// viewerID returns the requesting identity, or nil for anonymous reads
func viewerID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get("user_id")
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// serviceError maps service sentinel errors onto HTTP responses
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrIngredientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotRecipeAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrInvalidImageData),
		errors.Is(err, service.ErrEmptyIngredients),
		errors.Is(err, service.ErrDuplicateIngredients),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnknownIngredient),
		errors.Is(err, service.ErrSelfSubscription),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrAlreadyInCart),
		errors.Is(err, service.ErrNotInCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
