package models

// CostBreakdown splits the monetary cost of a generation call by direction.
// Amounts are USD.
type CostBreakdown struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
}

// TokenUsage is the per-call token accounting returned by the generation
// provider, plus the cost computed from the pricing table.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost"`
}

// UsageSummary is the aggregate token/cost view of one batch. It is owned by
// the cost ledger and only ever produced by its GetSummary projection.
type UsageSummary struct {
	TotalInputTokens        int     `json:"total_input_tokens"`
	TotalOutputTokens       int     `json:"total_output_tokens"`
	TotalTokens             int     `json:"total_tokens"`
	TotalCost               float64 `json:"total_cost"`
	RequestCount            int     `json:"request_count"`
	AverageTokensPerRequest int     `json:"average_tokens_per_request"`
}
