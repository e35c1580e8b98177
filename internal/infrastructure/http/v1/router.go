// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/http/v1/handlers"
	"numbering/internal/infrastructure/http/v1/middleware"
	"numbering/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Service implements the numbering operations
	Service *numbering.Service

	// Logger for request logging
	Logger *logger.Logger

	// Health serves /health; nil registers a liveness-only handler
	Health *handlers.HealthHandler

	// Mode is the gin mode (gin.ReleaseMode when empty)
	Mode string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	healthHandler := cfg.Health
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler("dev", nil, nil)
	}
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")
	{
		RegisterNumberingRoutes(api.Group("/numbering"), handlers.NewNumberingHandler(base, cfg.Service))
	}

	return router
}
