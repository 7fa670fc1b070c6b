package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// SetupAPI wires services and handlers onto the router. The Redis
// client and image store are optional; without them token revocation,
// write throttling and image uploads fall back to their local modes.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, images service.ImageStore, cfg *config.Config) {
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db, images)
	recipeService := service.NewRecipeService(db, images)
	ingredientService := service.NewIngredientService(db)
	shoppingService := service.NewShoppingListService(db)

	var writeLimit gin.HandlerFunc
	if redisClient != nil {
		writeLimit = middleware.NewWriteRateLimiter(redisClient).RateLimitMiddleware()
	}

	apiGroup := router.Group("/api")
	{
		NewAuthHandler(authService).RegisterRoutes(apiGroup)
		NewUserHandler(userService, authService).RegisterRoutes(apiGroup)
		NewRecipeHandler(recipeService, shoppingService, authService, writeLimit, cfg.BaseURL).RegisterRoutes(apiGroup)
		NewIngredientHandler(ingredientService).RegisterRoutes(apiGroup)
	}

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
