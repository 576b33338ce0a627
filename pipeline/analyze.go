package pipeline

import (
	"context"

	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/usage"
)

// AnalyzeKeyword runs the competitor chain for a single keyword outside a
// batch: SERP lookup, content extraction and insight summarisation. Unlike
// the per-page chain inside a batch, failures here propagate — the caller
// asked for exactly this analysis and nothing else.
func (o *Orchestrator) AnalyzeKeyword(ctx context.Context, req models.AnalyzeCompetitorsRequest) (*models.CompetitorAnalysis, error) {
	serp, err := o.searchData.GetSERPResults(ctx, req.Keyword, req.Location, req.Language)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, o.competitorLimit)
	for _, entry := range serp.OrganicResults {
		if len(urls) == o.competitorLimit {
			break
		}
		urls = append(urls, entry.URL)
	}

	if len(urls) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "no organic results to analyze", nil)
	}

	contents := o.extractor.Extract(ctx, urls, o.competitorLimit)
	meaningful := o.extractor.FilterMeaningful(contents)
	if len(meaningful) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "no meaningful competitor content extracted", nil)
	}

	insights, err := o.generator.SummarizeInsights(ctx, usage.NewLedger(), req.Model, req.Keyword, meaningful)
	if err != nil {
		return nil, err
	}

	return &models.CompetitorAnalysis{
		Keyword:             req.Keyword,
		TotalResults:        serp.TotalResults,
		CompetitorsAnalyzed: len(meaningful),
		Insights:            insights,
	}, nil
}
