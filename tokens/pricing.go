package tokens

// ModelPricing is the per-1K-token unit price pair for one model, in USD.
type ModelPricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// defaultPricing is the static pricing table keyed by model identifier.
// Prices drift; entries here are checked against provider pricing pages
// when models are added, not continuously.
var defaultPricing = map[string]ModelPricing{
	"gpt-4o":             {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":        {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-4-turbo":        {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-3.5-turbo":      {InputPer1K: 0.0005, OutputPer1K: 0.0015},
	"deepseek-chat":      {InputPer1K: 0.00027, OutputPer1K: 0.0011},
	"claude-3-5-sonnet":  {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-5-haiku":   {InputPer1K: 0.0008, OutputPer1K: 0.004},
	"llama-3.1-70b":      {InputPer1K: 0.00059, OutputPer1K: 0.00079},
	"mistral-large":      {InputPer1K: 0.002, OutputPer1K: 0.006},
}
