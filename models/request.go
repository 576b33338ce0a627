package models

// MaxBatchPages is the hard cap on pages per batch. A policy decision to
// bound worst-case LLM spend per request, not a performance limit.
const MaxBatchPages = 10

// GenerateRequest is the payload for POST /api/v1/generate.
type GenerateRequest struct {
	// Pages lists the keyword targets to generate copy for. Required, 1-10.
	Pages []string `json:"pages" binding:"required,min=1,max=10"`

	// Location is the provider location code (e.g. 2840 for the US).
	// Default: configured location.
	Location int `json:"location,omitempty"`

	// Language is the two-letter language code. Default: configured language.
	Language string `json:"language,omitempty"`

	// IncludeSearchVolume enriches each page's prompt with search metrics.
	IncludeSearchVolume bool `json:"include_search_volume,omitempty"`

	// IncludeCompetitorAnalysis enriches each page's prompt with insights
	// summarised from top-ranking competitor pages.
	IncludeCompetitorAnalysis bool `json:"include_competitor_analysis,omitempty"`

	// Model overrides the configured generation model.
	Model string `json:"model,omitempty"`
}

// Defaults applies configured fallbacks to unset fields.
func (r *GenerateRequest) Defaults(location int, language, model string) {
	if r.Location == 0 {
		r.Location = location
	}
	if r.Language == "" {
		r.Language = language
	}
	if r.Model == "" {
		r.Model = model
	}
}

// SearchVolumeRequest is the payload for POST /api/v1/search-volume.
type SearchVolumeRequest struct {
	Keywords []string `json:"keywords" binding:"required,min=1"`
	Location int      `json:"location,omitempty"`
	Language string   `json:"language,omitempty"`
}

// AnalyzeCompetitorsRequest is the payload for POST /api/v1/analyze-competitors.
type AnalyzeCompetitorsRequest struct {
	Keyword  string `json:"keyword" binding:"required"`
	Location int    `json:"location,omitempty"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
}
