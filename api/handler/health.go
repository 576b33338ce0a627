package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports per-provider configuration status and degrades when a provider the
// main endpoints depend on is missing credentials. The process itself serving
// this endpoint is the liveness signal; no outbound calls are made.
func Health(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := map[string]models.ServiceStatus{
			"generation":  generationStatus(cfg.Generation),
			"search_data": searchDataStatus(cfg.SearchData),
		}

		status := "healthy"
		message := ""
		if !cfg.Generation.Configured() {
			status = "degraded"
			message = "generation provider not configured; /generate will refuse requests"
		} else if !cfg.SearchData.Configured() {
			status = "degraded"
			message = "search-data provider not configured; enrichment endpoints will refuse requests"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Services: services,
			Message:  message,
			Version:  "0.1.0",
		})
	}
}

func generationStatus(g config.GenerationConfig) models.ServiceStatus {
	if !g.Configured() {
		return models.ServiceStatus{Detail: "no OPENAI_API_KEY or OPENROUTER_API_KEY set"}
	}
	return models.ServiceStatus{Configured: true, Detail: "model " + g.Model}
}

func searchDataStatus(s config.SearchDataConfig) models.ServiceStatus {
	if !s.Configured() {
		return models.ServiceStatus{Detail: "no SERPDATA_LOGIN/SERPDATA_PASSWORD set"}
	}
	return models.ServiceStatus{Configured: true}
}
