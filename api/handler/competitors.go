package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/pipeline"
)

// AnalyzeCompetitors returns a handler for POST /api/v1/analyze-competitors.
//
// Runs the standalone competitor chain for one keyword: SERP lookup, content
// extraction, insight summarisation. Needs both providers, since the insight
// step is an LLM call.
func AnalyzeCompetitors(o *pipeline.Orchestrator, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeCompetitorsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AnalyzeCompetitorsResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		if req.Location == 0 {
			req.Location = cfg.SearchData.Location
		}
		if req.Language == "" {
			req.Language = cfg.SearchData.Language
		}
		if req.Model == "" {
			req.Model = cfg.Generation.Model
		}

		if !cfg.SearchData.Configured() || !cfg.Generation.Configured() {
			c.JSON(http.StatusServiceUnavailable, models.AnalyzeCompetitorsResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotConfigured,
					Message: "competitor analysis needs both the search-data and generation providers configured",
				},
			})
			return
		}

		analysis, err := o.AnalyzeKeyword(c.Request.Context(), req)
		if err != nil {
			pe := asPipelineError(err)
			c.JSON(mapErrorToStatus(pe), models.AnalyzeCompetitorsResponse{
				Error: pe.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.AnalyzeCompetitorsResponse{
			Success: true,
			Data:    analysis,
		})
	}
}
