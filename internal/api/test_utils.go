package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/types"
)

// setupTestAPI builds a router with all routes registered against an
// isolated database. Redis is absent, so throttling and token
// revocation run in their fallback modes.
func setupTestAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	router := gin.New()
	router.Use(gin.Recovery())

	cfg := &config.Config{
		BaseURL:   "http://localhost:8080",
		JWTSecret: "test-secret-0123456789",
	}
	SetupAPI(router, db, nil, testhelpers.StubImageStore{}, cfg)

	return router, db
}

// doJSON performs a request with an optional JSON body and bearer token
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
}

// registerAndLogin creates an account through the API and returns its token
func registerAndLogin(t *testing.T, router *gin.Engine, email, username string) string {
	t.Helper()

	w := doJSON(t, router, "POST", "/api/users", "", gin.H{
		"email":      email,
		"username":   username,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	})
	if w.Code != 201 {
		t.Fatalf("failed to register %s: status %d body %s", email, w.Code, w.Body.String())
	}

	w = doJSON(t, router, "POST", "/api/auth/token/login", "", gin.H{
		"email":    email,
		"password": "password123",
	})
	if w.Code != 200 {
		t.Fatalf("failed to login %s: status %d body %s", email, w.Code, w.Body.String())
	}

	var resp types.TokenResponse
	decodeBody(t, w, &resp)
	return resp.AuthToken
}
