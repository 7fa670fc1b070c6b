package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (v *stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	return v.claims, v.err
}

func runRequest(t *testing.T, handler gin.HandlerFunc, header string) (*httptest.ResponseRecorder, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var captured *uuid.UUID
	router := gin.New()
	router.GET("/", handler, func(c *gin.Context) {
		if v, ok := c.Get("user_id"); ok {
			id := v.(uuid.UUID)
			captured = &id
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, captured
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID}}
	invalid := &stubValidator{err: errors.New("invalid token")}

	w, captured := runRequest(t, middleware.AuthMiddleware(valid), "Bearer sometoken")
	assert.Equal(t, 200, w.Code)
	if assert.NotNil(t, captured) {
		assert.Equal(t, userID, *captured)
	}

	w, _ = runRequest(t, middleware.AuthMiddleware(valid), "")
	assert.Equal(t, 401, w.Code)

	w, _ = runRequest(t, middleware.AuthMiddleware(valid), "NotBearer sometoken")
	assert.Equal(t, 401, w.Code)

	w, _ = runRequest(t, middleware.AuthMiddleware(invalid), "Bearer sometoken")
	assert.Equal(t, 401, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	valid := &stubValidator{claims: &types.TokenClaims{UserID: userID}}
	invalid := &stubValidator{err: errors.New("invalid token")}

	w, captured := runRequest(t, middleware.OptionalAuthMiddleware(valid), "Bearer sometoken")
	assert.Equal(t, 200, w.Code)
	if assert.NotNil(t, captured) {
		assert.Equal(t, userID, *captured)
	}

	// Anonymous and malformed requests pass through without identity
	w, captured = runRequest(t, middleware.OptionalAuthMiddleware(valid), "")
	assert.Equal(t, 200, w.Code)
	assert.Nil(t, captured)

	w, captured = runRequest(t, middleware.OptionalAuthMiddleware(invalid), "Bearer sometoken")
	assert.Equal(t, 200, w.Code)
	assert.Nil(t, captured)
}
