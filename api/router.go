// Package api wires the HTTP surface: routes, middleware and handlers.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatpick/copysmith/api/handler"
	"github.com/seatpick/copysmith/api/middleware"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/pipeline"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(o *pipeline.Orchestrator, sd pipeline.SearchDataClient, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cfg, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Batch copy generation
	protected.POST("/generate", handler.Generate(o, cfg))

	// Standalone enrichment lookups
	protected.POST("/search-volume", handler.SearchVolume(sd, cfg))
	protected.POST("/analyze-competitors", handler.AnalyzeCompetitors(o, cfg))

	return r
}
