package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotConfigured = "PROVIDER_NOT_CONFIGURED"
	ErrCodeProvider      = "PROVIDER_FAILURE"
	ErrCodeTimeout       = "PROVIDER_TIMEOUT"
	ErrCodeTaskTimeout   = "TASK_TIMEOUT"
	ErrCodeNoResults     = "NO_RESULTS"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternal      = "INTERNAL_ERROR"

	// LLM-related error codes for the generation provider.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PipelineError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
// Raw transport errors from provider clients are always wrapped into one of
// these before reaching a caller.
type PipelineError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *PipelineError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// Retryable reports whether the error is worth retrying where a retry
// policy exists (task polling, generation attempts). Validation, missing
// configuration and auth failures are terminal.
func (e *PipelineError) Retryable() bool {
	switch e.Code {
	case ErrCodeInvalidInput, ErrCodeNotConfigured, ErrCodeUnauthorized, ErrCodeLLMAuthFailure:
		return false
	}
	return true
}
