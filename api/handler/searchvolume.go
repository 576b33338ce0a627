package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/pipeline"
)

// SearchVolume returns a handler for POST /api/v1/search-volume.
//
// Returns one record per requested keyword, zero-filled where the provider
// has no data.
func SearchVolume(sd pipeline.SearchDataClient, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchVolumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.SearchVolumeResponse{
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

		if !cfg.SearchData.Configured() {
			c.JSON(http.StatusServiceUnavailable, models.SearchVolumeResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeNotConfigured,
					Message: "search-data provider not configured: set SERPDATA_LOGIN and SERPDATA_PASSWORD",
				},
			})
			return
		}

		records, err := sd.GetSearchVolume(c.Request.Context(), req.Keywords, req.Location, req.Language)
		if err != nil {
			pe := asPipelineError(err)
			c.JSON(mapErrorToStatus(pe), models.SearchVolumeResponse{
				Error: pe.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.SearchVolumeResponse{
			Success: true,
			Data:    records,
		})
	}
}
