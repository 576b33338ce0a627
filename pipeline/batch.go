// Package pipeline orchestrates a batch of page generations: bounded
// concurrency groups, parallel per-page enrichment fetches, generation with
// retry, per-page failure isolation and batch-level cost accounting.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/llm"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/usage"
)

// SearchDataClient is the slice of the search-data provider the
// orchestrator needs.
type SearchDataClient interface {
	GetSearchVolume(ctx context.Context, keywords []string, location int, language string) ([]models.SearchVolumeRecord, error)
	GetSERPResults(ctx context.Context, keyword string, location int, language string) (*models.SERPResult, error)
}

// ContentExtractor fetches competitor pages and filters their content.
type ContentExtractor interface {
	Extract(ctx context.Context, urls []string, limit int) []models.CompetitorContent
	FilterMeaningful(contents []models.CompetitorContent) []models.CompetitorContent
}

// CopyGenerator produces constrained copy and competitor insights.
type CopyGenerator interface {
	GenerateWithRetry(ctx context.Context, ledger *usage.Ledger, model string, gc llm.GenerationContext) (*llm.Result, error)
	SummarizeInsights(ctx context.Context, ledger *usage.Ledger, model, keyword string, contents []models.CompetitorContent) (string, error)
}

// BatchResult is the outcome of one batch: one PageResult per requested
// page, in request order, plus the ledger's final summary.
type BatchResult struct {
	Results []models.PageResult
	Summary models.UsageSummary
}

// Orchestrator drives batches. All collaborators are injected at
// construction; the orchestrator itself holds no per-batch state — each
// ProcessBatch call owns its own ledger.
type Orchestrator struct {
	searchData SearchDataClient
	extractor  ContentExtractor
	generator  CopyGenerator

	maxConcurrent   int
	competitorLimit int
	brandDomain     string
}

// NewOrchestrator wires an Orchestrator from config and collaborators.
func NewOrchestrator(searchData SearchDataClient, extractor ContentExtractor, generator CopyGenerator, cfg *config.Config) *Orchestrator {
	maxConcurrent := cfg.Batch.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &Orchestrator{
		searchData:      searchData,
		extractor:       extractor,
		generator:       generator,
		maxConcurrent:   maxConcurrent,
		competitorLimit: cfg.Competitor.Limit,
		brandDomain:     strings.ToLower(cfg.Brand.Domain),
	}
}

// ProcessBatch generates copy for every page in the request.
//
// Pages are processed in consecutive groups of maxConcurrent: group i+1
// does not start until every page of group i has settled. This bounds peak
// concurrent outbound calls — backpressure against runaway provider spend,
// not a throughput optimisation. A single page's failure never aborts its
// siblings; the returned list always has exactly one entry per requested
// page, in request order.
func (o *Orchestrator) ProcessBatch(ctx context.Context, req models.GenerateRequest) (*BatchResult, error) {
	if len(req.Pages) < 1 || len(req.Pages) > models.MaxBatchPages {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput,
			fmt.Sprintf("pages must contain between 1 and %d entries, got %d", models.MaxBatchPages, len(req.Pages)), nil)
	}

	ledger := usage.NewLedger()
	ledger.Reset()

	slog.Info("batch started",
		"pages", len(req.Pages),
		"search_volume", req.IncludeSearchVolume,
		"competitor_analysis", req.IncludeCompetitorAnalysis,
		"model", req.Model,
	)

	results := make([]models.PageResult, len(req.Pages))

	for start := 0; start < len(req.Pages); start += o.maxConcurrent {
		end := start + o.maxConcurrent
		if end > len(req.Pages) {
			end = len(req.Pages)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = o.processPage(ctx, ledger, req, req.Pages[idx])
			}(i)
		}
		wg.Wait()
	}

	summary := ledger.GetSummary()
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	slog.Info("batch finished",
		"pages", len(results),
		"succeeded", succeeded,
		"requests", summary.RequestCount,
		"total_cost", summary.TotalCost,
	)

	return &BatchResult{Results: results, Summary: summary}, nil
}

// pageContext is the named join of one page's concurrent sub-fetches. Each
// sub-task writes only its own fields and captures its own error, so a
// forgotten error path is structurally impossible.
type pageContext struct {
	volume    *models.SearchVolumeRecord
	volumeErr error

	insights     string
	domains      []string
	seatpickTop3 *bool
	insightsErr  error
}

// processPage runs one page through enrichment and generation. Every
// failure mode — including a panic — collapses into a failed PageResult so
// the batch keeps going.
func (o *Orchestrator) processPage(ctx context.Context, ledger *usage.Ledger, req models.GenerateRequest, pageName string) (result models.PageResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("page processing panicked", "page", pageName, "panic", r)
			result = models.PageResult{
				PageName: pageName,
				Error:    fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	pc := o.gatherPageContext(ctx, ledger, req, pageName)

	gen, err := o.generator.GenerateWithRetry(ctx, ledger, req.Model, llm.GenerationContext{
		PageName:           pageName,
		Language:           req.Language,
		SearchVolume:       pc.volume,
		CompetitorInsights: pc.insights,
	})
	if err != nil {
		slog.Error("page generation failed", "page", pageName, "error", err)
		return models.PageResult{PageName: pageName, Error: err.Error()}
	}

	result = models.PageResult{
		PageName:              pageName,
		Success:               true,
		Description:           gen.Description,
		WordCount:             gen.WordCount,
		IsValidLength:         gen.IsValidLength,
		Usage:                 &gen.Usage,
		HasCompetitorInsights: pc.insights != "",
		CompetitorDomains:     pc.domains,
		SeatpickTop3:          pc.seatpickTop3,
	}
	if pc.volume != nil {
		v := pc.volume.SearchVolume
		result.SearchVolume = &v
	}
	return result
}

// gatherPageContext runs the optional sub-fetches concurrently and joins
// them. Both are non-fatal: a failed fetch logs and leaves its fields nil.
func (o *Orchestrator) gatherPageContext(ctx context.Context, ledger *usage.Ledger, req models.GenerateRequest, pageName string) pageContext {
	var pc pageContext
	var wg sync.WaitGroup

	if req.IncludeSearchVolume {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := o.searchData.GetSearchVolume(ctx, []string{pageName}, req.Location, req.Language)
			if err != nil {
				pc.volumeErr = err
				slog.Warn("search-volume fetch failed, continuing without it",
					"page", pageName, "error", err,
				)
				return
			}
			if len(records) > 0 {
				pc.volume = &records[0]
			}
		}()
	}

	if req.IncludeCompetitorAnalysis {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.analyzeCompetitors(ctx, ledger, req, pageName, &pc)
		}()
	}

	wg.Wait()
	return pc
}

// analyzeCompetitors runs the competitor chain for one page: SERP lookup,
// content extraction, domain derivation, brand-ranking signal, insight
// summarisation. Any failure leaves insights empty and logs — the page
// still generates.
func (o *Orchestrator) analyzeCompetitors(ctx context.Context, ledger *usage.Ledger, req models.GenerateRequest, pageName string, pc *pageContext) {
	serp, err := o.searchData.GetSERPResults(ctx, pageName, req.Location, req.Language)
	if err != nil {
		pc.insightsErr = err
		slog.Warn("SERP lookup failed, continuing without competitor insights",
			"page", pageName, "error", err,
		)
		return
	}

	urls := make([]string, 0, o.competitorLimit)
	domains := make([]string, 0, o.competitorLimit)
	for _, entry := range serp.OrganicResults {
		if len(urls) == o.competitorLimit {
			break
		}
		urls = append(urls, entry.URL)
		domains = append(domains, normalizeDomain(entry.Domain))
	}
	pc.domains = domains

	top3 := o.brandRanks(domains)
	pc.seatpickTop3 = &top3

	if len(urls) == 0 {
		return
	}

	contents := o.extractor.Extract(ctx, urls, o.competitorLimit)
	meaningful := o.extractor.FilterMeaningful(contents)
	if len(meaningful) == 0 {
		slog.Warn("no meaningful competitor content extracted", "page", pageName)
		return
	}

	insights, err := o.generator.SummarizeInsights(ctx, ledger, req.Model, pageName, meaningful)
	if err != nil {
		pc.insightsErr = err
		slog.Warn("insight summarisation failed, continuing without it",
			"page", pageName, "error", err,
		)
		return
	}
	pc.insights = insights
}

// brandRanks reports whether the operator's own domain already appears
// among the competitor domains.
func (o *Orchestrator) brandRanks(domains []string) bool {
	for _, d := range domains {
		if strings.Contains(strings.ToLower(d), o.brandDomain) {
			return true
		}
	}
	return false
}

func normalizeDomain(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
