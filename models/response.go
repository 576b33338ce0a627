package models

// ErrorResponse is the bare failure envelope used where no endpoint-specific
// response shape applies (middleware rejections).
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// PageResult is the per-page outcome of a batch. Exactly one is returned for
// every requested page name, in the original request order, whether the page
// succeeded or failed.
type PageResult struct {
	// PageName echoes the requested page name.
	PageName string `json:"page_name"`

	// Success indicates whether a description was produced for this page.
	Success bool `json:"success"`

	// Description is the generated marketing copy.
	Description string `json:"description,omitempty"`

	// WordCount is the whitespace-delimited word count of Description.
	WordCount int `json:"word_count,omitempty"`

	// IsValidLength reports whether WordCount landed inside the brand length
	// bounds. False after exhausted retries is a soft warning, not a failure.
	IsValidLength bool `json:"is_valid_length,omitempty"`

	// SearchVolume is the monthly search volume for the page name, when
	// search-volume enrichment was requested and succeeded.
	SearchVolume *int `json:"search_volume,omitempty"`

	// Usage is the token/cost accounting of the final generation attempt.
	Usage *TokenUsage `json:"usage,omitempty"`

	// HasCompetitorInsights indicates competitor analysis fed this page's prompt.
	HasCompetitorInsights bool `json:"has_competitor_insights,omitempty"`

	// CompetitorDomains lists the analysed competitor hostnames (www. stripped).
	CompetitorDomains []string `json:"competitor_domains,omitempty"`

	// SeatpickTop3 is true when the brand domain already ranks among the
	// analysed competitors. Callers use it to skip redundant publishing.
	SeatpickTop3 *bool `json:"seatpick_top3,omitempty"`

	// Error is populated only when Success is false.
	Error string `json:"error,omitempty"`
}

// BatchSummary aggregates a batch's outcome for the API response.
type BatchSummary struct {
	TotalPages            int          `json:"total_pages"`
	SuccessfulGenerations int          `json:"successful_generations"`
	Usage                 UsageSummary `json:"usage"`
}

// GenerateResponse is the response for POST /api/v1/generate.
//
// The endpoint returns 200 once validation and provider checks pass, even if
// every page failed; callers inspect Results[].Success, not the HTTP status.
type GenerateResponse struct {
	Success bool         `json:"success"`
	Results []PageResult `json:"results,omitempty"`
	Summary BatchSummary `json:"summary"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SearchVolumeResponse is the response for POST /api/v1/search-volume.
type SearchVolumeResponse struct {
	Success bool                 `json:"success"`
	Data    []SearchVolumeRecord `json:"data,omitempty"`
	Error   *ErrorDetail         `json:"error,omitempty"`
}

// CompetitorAnalysis is the payload of a standalone competitor analysis.
type CompetitorAnalysis struct {
	Keyword             string `json:"keyword"`
	TotalResults        int64  `json:"total_results"`
	CompetitorsAnalyzed int    `json:"competitors_analyzed"`
	Insights            string `json:"insights"`
}

// AnalyzeCompetitorsResponse is the response for POST /api/v1/analyze-competitors.
type AnalyzeCompetitorsResponse struct {
	Success bool                `json:"success"`
	Data    *CompetitorAnalysis `json:"data,omitempty"`
	Error   *ErrorDetail        `json:"error,omitempty"`
}

// ServiceStatus reports whether one external capability is configured.
type ServiceStatus struct {
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status   string                   `json:"status"` // "healthy" or "degraded"
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
	Message  string                   `json:"message,omitempty"`
	Version  string                   `json:"version"`
}
