package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/pipeline"
	"github.com/seatpick/copysmith/webhook"
)

// Generate returns a handler for POST /api/v1/generate.
//
// Flow:
//  1. Parse & validate GenerateRequest, apply configured defaults.
//  2. Refuse early when a required provider has no credentials.
//  3. ProcessBatch → per-page results in request order.
//  4. Respond 200 with results and the batch usage summary.
//
// Per-page failures do not change the HTTP status: once the batch is
// accepted the response is 200 and callers inspect Results[].Success.
func Generate(o *pipeline.Orchestrator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.GenerateResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults(cfg.SearchData.Location, cfg.SearchData.Language, cfg.Generation.Model)

		// ── 2. Provider checks ──────────────────────────────────────
		if !cfg.Generation.Configured() {
			c.JSON(http.StatusServiceUnavailable, models.GenerateResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotConfigured,
					Message: "generation provider not configured: set OPENAI_API_KEY or OPENROUTER_API_KEY",
				},
			})
			return
		}
		if (req.IncludeSearchVolume || req.IncludeCompetitorAnalysis) && !cfg.SearchData.Configured() {
			c.JSON(http.StatusServiceUnavailable, models.GenerateResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotConfigured,
					Message: "search-data provider not configured: set SERPDATA_LOGIN and SERPDATA_PASSWORD",
				},
			})
			return
		}

		// ── 3. Run the batch ────────────────────────────────────────
		batch, err := o.ProcessBatch(c.Request.Context(), req)
		if err != nil {
			pe := asPipelineError(err)
			c.JSON(mapErrorToStatus(pe), models.GenerateResponse{
				Error: pe.ToDetail(),
			})
			return
		}

		// ── 4. Assemble response ────────────────────────────────────
		succeeded := 0
		for _, r := range batch.Results {
			if r.Success {
				succeeded++
			}
		}

		if cfg.Webhook.URL != "" {
			webhook.DeliverAsync(cfg.Webhook.URL, cfg.Webhook.Secret, &webhook.Event{
				Type:      "batch.completed",
				Timestamp: time.Now().Unix(),
				Data: webhook.BatchCompleted{
					TotalPages:            len(batch.Results),
					SuccessfulGenerations: succeeded,
					TotalCost:             batch.Summary.TotalCost,
				},
			})
		}

		c.JSON(http.StatusOK, models.GenerateResponse{
			Success: true,
			Results: batch.Results,
			Summary: models.BatchSummary{
				TotalPages:            len(batch.Results),
				SuccessfulGenerations: succeeded,
				Usage:                 batch.Summary,
			},
		})
	}
}
