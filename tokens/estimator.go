// Package tokens provides token counting and cost calculation for the
// generation providers.
//
// Counting uses a character-based heuristic (ceil(runes/4), the English
// average of ~4 chars per token) rather than an exact tokenizer, so every
// figure here is an approximation subject to provider-side correction. The
// exact post-hoc accounting comes from the provider's usage block; these
// estimates serve pre-flight logging and guardrails only.
package tokens

import (
	"log/slog"
	"unicode/utf8"

	"github.com/seatpick/copysmith/models"
)

// Message is one chat message for structured token counting.
type Message struct {
	Role    string
	Content string
	Name    string
}

// RequestEstimate is a pre-flight cost/size estimate for one generation call.
// Never used for billing.
type RequestEstimate struct {
	PromptTokens          int
	EstimatedOutputTokens int
	TotalEstimatedTokens  int
	EstimatedCost         float64
}

// Estimator computes token counts and derived cost against a static
// per-model pricing table.
type Estimator struct {
	pricing map[string]ModelPricing
}

// NewEstimator returns an Estimator over the default pricing table.
func NewEstimator() *Estimator {
	return &Estimator{pricing: defaultPricing}
}

// NewEstimatorWithPricing returns an Estimator over a custom table.
func NewEstimatorWithPricing(pricing map[string]ModelPricing) *Estimator {
	return &Estimator{pricing: pricing}
}

// CountTokens estimates the token count of text: ceil(runes/4).
// Deterministic for a given input.
func (e *Estimator) CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// CountMessageTokens estimates the token count of a chat message list using
// the provider's accounting convention: 4 tokens of framing per message,
// role and content counted, name counted in place of role when present
// (net -1), plus 2 tokens priming the assistant reply.
func (e *Estimator) CountMessageTokens(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += 4
		total += e.CountTokens(m.Content)
		if m.Name != "" {
			total += e.CountTokens(m.Name)
			total-- // name replaces role
		} else {
			total += e.CountTokens(m.Role)
		}
	}
	return total + 2
}

// CalculateCost derives the USD cost of a call from the pricing table.
// Unpriced models cost zero and log a warning; this never fails.
func (e *Estimator) CalculateCost(model string, inputTokens, outputTokens int) models.CostBreakdown {
	p, ok := e.pricing[model]
	if !ok {
		slog.Warn("no pricing for model, reporting zero cost", "model", model)
		return models.CostBreakdown{}
	}

	in := float64(inputTokens) / 1000 * p.InputPer1K
	out := float64(outputTokens) / 1000 * p.OutputPer1K
	return models.CostBreakdown{
		InputCost:  in,
		OutputCost: out,
		TotalCost:  in + out,
	}
}

// EstimateRequestTokens produces a pre-flight estimate for a prompt. The
// output estimate is min(maxCompletionTokens, 80% of the prompt size), a
// heuristic observed to track marketing-copy completions well enough for
// spend logging.
func (e *Estimator) EstimateRequestTokens(model, prompt string, maxCompletionTokens int) RequestEstimate {
	promptTokens := e.CountTokens(prompt)

	estimatedOutput := promptTokens * 4 / 5
	if maxCompletionTokens < estimatedOutput {
		estimatedOutput = maxCompletionTokens
	}

	cost := e.CalculateCost(model, promptTokens, estimatedOutput)
	return RequestEstimate{
		PromptTokens:          promptTokens,
		EstimatedOutputTokens: estimatedOutput,
		TotalEstimatedTokens:  promptTokens + estimatedOutput,
		EstimatedCost:         cost.TotalCost,
	}
}
