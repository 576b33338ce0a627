package handler

import (
	"errors"
	"net/http"

	"github.com/seatpick/copysmith/models"
)

// asPipelineError normalizes any error into a PipelineError so handlers can
// always emit a structured detail.
func asPipelineError(err error) *models.PipelineError {
	var pe *models.PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return models.NewPipelineError(models.ErrCodeInternal, err.Error(), err)
}

// mapErrorToStatus translates pipeline error codes to HTTP status codes,
// including the generation-provider codes.
func mapErrorToStatus(e *models.PipelineError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	case models.ErrCodeTimeout, models.ErrCodeTaskTimeout:
		return http.StatusGatewayTimeout
	case models.ErrCodeRateLimited, models.ErrCodeLLMRateLimited:
		return http.StatusTooManyRequests
	case models.ErrCodeUnauthorized, models.ErrCodeLLMAuthFailure:
		return http.StatusUnauthorized
	case models.ErrCodeNoResults:
		return http.StatusNotFound
	case models.ErrCodeProvider, models.ErrCodeLLMFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
