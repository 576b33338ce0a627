package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/prompt"
	"github.com/seatpick/copysmith/tokens"
	"github.com/seatpick/copysmith/usage"
)

// completionClient abstracts the chat provider so tests can drive the retry
// engine with deterministic stubs.
type completionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// GenerationContext is the per-page context gathered by the orchestrator
// before generation. SearchVolume and CompetitorInsights may both be absent.
type GenerationContext struct {
	PageName           string
	Language           string
	SearchVolume       *models.SearchVolumeRecord
	CompetitorInsights string
}

// Result is the outcome of a generation run for one page.
type Result struct {
	PageName      string
	Description   string
	WordCount     int
	IsValidLength bool
	Usage         models.TokenUsage
	Attempts      int
}

// Generator produces brand-length-constrained copy, retrying with corrective
// feedback when an attempt lands outside the word-count bounds.
type Generator struct {
	client    completionClient
	estimator *tokens.Estimator
	cfg       config.GenerationConfig
}

// NewGenerator wires a Generator over a chat client.
func NewGenerator(client *Client, estimator *tokens.Estimator, cfg config.GenerationConfig) *Generator {
	return &Generator{client: client, estimator: estimator, cfg: cfg}
}

// GenerateWithRetry runs up to MaxRetries attempts for one page.
//
// Each attempt's word count is recomputed from the returned text. An
// in-bounds attempt returns immediately; an out-of-bounds attempt prepends
// feedback naming the observed count and the violated bound to the next
// prompt's constraints channel. Exhausting the budget returns the last
// result unmodified with IsValidLength false — a soft warning, not an
// error. Provider errors are swallowed and retried on every attempt except
// the last, where they propagate.
//
// Every successful attempt is recorded in the ledger, including ones whose
// output fails the constraint: retries are not free.
func (g *Generator) GenerateWithRetry(ctx context.Context, ledger *usage.Ledger, model string, gc GenerationContext) (*Result, error) {
	maxRetries := g.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	in := prompt.GenerationInput{
		PageName:           gc.PageName,
		Language:           gc.Language,
		MinWords:           g.cfg.MinWords,
		MaxWords:           g.cfg.MaxWords,
		SearchVolume:       gc.SearchVolume,
		CompetitorInsights: gc.CompetitorInsights,
	}

	var last *Result
	for attempt := 1; attempt <= maxRetries; attempt++ {
		userPrompt := prompt.RenderGeneration(in)

		est := g.estimator.EstimateRequestTokens(model, userPrompt, g.cfg.MaxCompletionTokens)
		slog.Debug("generation attempt",
			"page", gc.PageName,
			"attempt", attempt,
			"estimated_tokens", est.TotalEstimatedTokens,
			"estimated_cost", est.EstimatedCost,
		)

		completion, err := g.client.Complete(ctx, CompletionRequest{
			Model:       model,
			System:      prompt.GenerationSystem,
			User:        userPrompt,
			MaxTokens:   g.cfg.MaxCompletionTokens,
			Temperature: 0.7,
		})
		if err != nil {
			if attempt < maxRetries {
				slog.Warn("generation attempt failed, retrying",
					"page", gc.PageName, "attempt", attempt, "error", err,
				)
				continue
			}
			return nil, err
		}

		g.record(ledger, completion, model, gc.PageName)

		text := strings.TrimSpace(completion.Text)
		wordCount := len(strings.Fields(text))
		last = &Result{
			PageName:      gc.PageName,
			Description:   text,
			WordCount:     wordCount,
			IsValidLength: wordCount >= g.cfg.MinWords && wordCount <= g.cfg.MaxWords,
			Usage:         g.usageOf(completion, model),
			Attempts:      attempt,
		}

		if last.IsValidLength {
			return last, nil
		}
		if attempt == maxRetries {
			break
		}

		feedback := prompt.TooShortFeedback(wordCount, g.cfg.MinWords)
		if wordCount > g.cfg.MaxWords {
			feedback = prompt.TooLongFeedback(wordCount, g.cfg.MaxWords)
		}
		in.Constraints = append([]string{feedback}, in.Constraints...)
		slog.Info("generated copy outside length bounds, retrying",
			"page", gc.PageName, "attempt", attempt, "words", wordCount,
		)
	}

	return last, nil
}

// SummarizeInsights condenses competitor content into a short insight text
// for the generation prompt. The call is recorded in the ledger like any
// other generation spend.
func (g *Generator) SummarizeInsights(ctx context.Context, ledger *usage.Ledger, model, keyword string, contents []models.CompetitorContent) (string, error) {
	completion, err := g.client.Complete(ctx, CompletionRequest{
		Model:       model,
		System:      prompt.InsightsSystem,
		User:        prompt.RenderInsights(keyword, contents),
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}

	g.record(ledger, completion, model, keyword)
	return strings.TrimSpace(completion.Text), nil
}

func (g *Generator) record(ledger *usage.Ledger, c *Completion, model, pageName string) {
	if ledger == nil {
		return
	}
	cost := g.estimator.CalculateCost(model, c.PromptTokens, c.CompletionTokens)
	ledger.AddRequest(c.PromptTokens, c.CompletionTokens, cost.TotalCost, model, pageName)
}

func (g *Generator) usageOf(c *Completion, model string) models.TokenUsage {
	cost := g.estimator.CalculateCost(model, c.PromptTokens, c.CompletionTokens)
	return models.TokenUsage{
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.TotalTokens,
		Cost:             cost.TotalCost,
	}
}
