// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"infinito/internal/domain/contribution"
	"infinito/internal/domain/impact"
	"infinito/internal/domain/product"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/http/v1/handlers"
	"infinito/internal/infrastructure/http/v1/middleware"
	"infinito/internal/metadata"
	"infinito/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Database backs the readiness probe; nil when running on the memory store
	Database handlers.Database

	// Version is reported by /health/info
	Version string

	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string

	Contributions *contribution.Service
	Products      *product.Service
	Calculator    *impact.Calculator
	Exporter      *export.Exporter

	// MetadataRegistry stores entity definitions
	MetadataRegistry *metadata.Registry

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	base := handlers.NewBaseHandler()

	registerContributionRoutes(v1, base, cfg)
	registerProductRoutes(v1, base, cfg)
	registerImpactRoutes(v1, base, cfg)
	registerMetaRoutes(v1, base, cfg)

	return router
}

func registerContributionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Contributions == nil {
		return
	}
	h := handlers.NewContributionHandler(base, cfg.Contributions, cfg.Exporter)

	g := rg.Group("/contributions")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
	g.POST("/:id/classify", h.Classify)
	g.POST("/:id/transition", h.Transition)
}

func registerProductRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Products == nil {
		return
	}
	h := handlers.NewProductHandler(base, cfg.Products, cfg.Exporter)

	g := rg.Group("/products")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/publish", h.Publish)
	g.GET("/export", h.Export)
	g.GET("/:id", h.Get)
}

func registerImpactRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Calculator == nil {
		return
	}
	h := handlers.NewImpactHandler(base, cfg.Calculator)

	g := rg.Group("/impact")
	g.POST("/calculate", h.Calculate)
	g.GET("/factors", h.Factors)
}

// registerMetaRoutes registers metadata/schema endpoints.
func registerMetaRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.MetadataRegistry == nil {
		return
	}
	h := handlers.NewMetadataHandler(base, cfg.MetadataRegistry)

	meta := rg.Group("/meta")
	{
		meta.GET("", h.ListEntities)
		meta.GET("/:name", h.GetEntity)
	}
}
