package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// Server wraps the HTTP server and its routing setup
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
}

// New builds the router with all routes registered
func New(db *gorm.DB, redisClient *redis.Client, images service.ImageStore, cfg *config.Config) *Server {
	router := gin.Default()
	router.Use(middleware.CORS(nil))

	// The local store keeps files under MediaDir; serve them directly.
	// S3-backed images are served from the bucket.
	if _, ok := images.(*service.LocalImageStore); ok {
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	api.SetupAPI(router, db, redisClient, images, cfg)

	return &Server{router: router, cfg: cfg}
}

// Start begins serving and blocks until the listener stops
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ServerHost + ":" + s.cfg.ServerPort,
		Handler: s.router,
	}

	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
