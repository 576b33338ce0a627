// Package serpdata wraps the search-data provider (search volume and SERP
// lookups) behind a normalized error surface: every transport, auth or
// payload failure a caller can see is a models.PipelineError.
package serpdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seatpick/copysmith/cache"
	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
)

// serpDepth bounds how many SERP items are requested per keyword.
const serpDepth = 10

// Client is the search-data provider API client. Credentials are a
// login/secret pair sent as HTTP basic auth.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	login        string
	password     string
	pollAttempts int

	// volumeCache short-circuits repeat volume lookups; nil when disabled.
	volumeCache *cache.Cache
	cacheTTL    time.Duration

	// pollDelayFn is swapped out in tests to avoid real backoff sleeps.
	pollDelayFn func(attempt int) time.Duration
}

// NewClient creates a provider client from config. Pass nil to use a
// default http.Client with the configured timeout.
func NewClient(cfg config.SearchDataConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	c := &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		login:        cfg.Login,
		password:     cfg.Password,
		pollAttempts: cfg.PollAttempts,
		cacheTTL:     cfg.CacheTTL,
		pollDelayFn:  pollDelay,
	}
	if cfg.CacheTTL > 0 && cfg.CacheEntries > 0 {
		c.volumeCache = cache.New(cfg.CacheEntries)
	}
	return c
}

// apiEnvelope is the provider's outer response shape.
type apiEnvelope struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		ID            string          `json:"id"`
		StatusCode    int             `json:"status_code"`
		StatusMessage string          `json:"status_message"`
		Result        json.RawMessage `json:"result"`
	} `json:"tasks"`
}

// volumeItem is one keyword's metrics in a search-volume result payload.
type volumeItem struct {
	Keyword         string  `json:"keyword"`
	SearchVolume    int     `json:"search_volume"`
	Competition     string  `json:"competition"`
	CPC             float64 `json:"cpc"`
	MonthlySearches []struct {
		Year         int `json:"year"`
		Month        int `json:"month"`
		SearchVolume int `json:"search_volume"`
	} `json:"monthly_searches"`
}

// GetSearchVolume looks up search metrics for the given keywords via the
// provider's live endpoint. Keywords are normalized (trim + lowercase) for
// the query but results are keyed back to the caller's original spelling,
// and every requested keyword yields exactly one record: keywords the
// provider has no data for come back zero-filled, never missing.
func (c *Client) GetSearchVolume(ctx context.Context, keywords []string, location int, language string) ([]models.SearchVolumeRecord, error) {
	if len(keywords) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "at least one keyword is required", nil)
	}

	var cacheKey string
	if c.volumeCache != nil {
		cacheKey = cache.Key(keywords, location, language)
		if records, ok := c.volumeCache.Get(cacheKey, c.cacheTTL); ok {
			slog.Debug("search-volume cache hit", "keywords", len(keywords))
			return records, nil
		}
	}

	normalized := normalizeKeywords(keywords)
	payload := []map[string]any{{
		"keywords":      normalized,
		"location_code": location,
		"language_code": language,
	}}

	env, err := c.post(ctx, "/v3/keywords_data/google_ads/search_volume/live", payload)
	if err != nil {
		return nil, err
	}

	items, err := firstTaskItems[volumeItem](env)
	if err != nil {
		return nil, err
	}

	records := mapVolumeItems(items, keywords, normalized)
	if c.volumeCache != nil {
		c.volumeCache.Set(cacheKey, records)
	}
	return records, nil
}

// normalizeKeyword applies the provider's query normalization.
func normalizeKeyword(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

// mapVolumeItems maps provider volume items back onto the caller's keyword
// list, preserving original spelling and order. Keywords the provider did
// not echo back come out zero-filled.
func mapVolumeItems(items []volumeItem, originals, normalized []string) []models.SearchVolumeRecord {
	byKeyword := make(map[string]volumeItem, len(items))
	for _, item := range items {
		byKeyword[normalizeKeyword(item.Keyword)] = item
	}

	records := make([]models.SearchVolumeRecord, len(originals))
	for i, original := range originals {
		item, ok := byKeyword[normalized[i]]
		if !ok {
			records[i] = models.ZeroVolumeRecord(original)
			continue
		}

		rec := models.SearchVolumeRecord{
			Keyword:         original,
			SearchVolume:    item.SearchVolume,
			Competition:     item.Competition,
			CPC:             item.CPC,
			MonthlySearches: make([]models.MonthlySearch, 0, len(item.MonthlySearches)),
		}
		if rec.Competition == "" {
			rec.Competition = "Unknown"
		}
		for _, m := range item.MonthlySearches {
			rec.MonthlySearches = append(rec.MonthlySearches, models.MonthlySearch{
				Year:   m.Year,
				Month:  m.Month,
				Volume: m.SearchVolume,
			})
		}
		records[i] = rec
	}
	return records
}

// serpResultPayload is the first result object of a SERP task.
type serpResultPayload struct {
	Keyword        string `json:"keyword"`
	SEResultsCount int64  `json:"se_results_count"`
	Items          []struct {
		Type        string `json:"type"`
		RankGroup   int    `json:"rank_group"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Domain      string `json:"domain"`
		IsFeatured  bool   `json:"is_featured_snippet"`
	} `json:"items"`
}

// GetSERPResults performs a single live SERP lookup for one keyword and
// returns only the organic entries, ordered by position as the provider
// returned them. Ads and rich snippets are filtered out.
func (c *Client) GetSERPResults(ctx context.Context, keyword string, location int, language string) (*models.SERPResult, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "keyword is required", nil)
	}

	payload := []map[string]any{{
		"keyword":       strings.TrimSpace(keyword),
		"location_code": location,
		"language_code": language,
		"depth":         serpDepth,
	}}

	env, err := c.post(ctx, "/v3/serp/google/organic/live/advanced", payload)
	if err != nil {
		return nil, err
	}

	results, err := firstTaskItems[serpResultPayload](env)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "provider returned no SERP result payload", nil)
	}

	payload0 := results[0]
	serp := &models.SERPResult{
		Keyword:        keyword,
		TotalResults:   payload0.SEResultsCount,
		OrganicResults: make([]models.OrganicEntry, 0, len(payload0.Items)),
	}
	for _, item := range payload0.Items {
		if item.Type != "organic" {
			continue
		}
		domain := item.Domain
		if domain == "" {
			if u, err := url.Parse(item.URL); err == nil {
				domain = u.Hostname()
			}
		}
		serp.OrganicResults = append(serp.OrganicResults, models.OrganicEntry{
			Position:    item.RankGroup,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			Domain:      domain,
			IsFeatured:  item.IsFeatured,
		})
	}

	return serp, nil
}

// post sends a JSON payload with basic auth and decodes the provider
// envelope, normalizing every failure mode to a PipelineError.
func (c *Client) post(ctx context.Context, path string, payload any) (*apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "marshal provider request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeInternal, "build provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.login, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewPipelineError(models.ErrCodeTimeout, "search-data request deadline exceeded", err)
		}
		return nil, models.NewPipelineError(models.ErrCodeProvider, "search-data request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, models.NewPipelineError(models.ErrCodeProvider, "read search-data response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, models.NewPipelineError(models.ErrCodeUnauthorized, "search-data authentication failed", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewPipelineError(models.ErrCodeRateLimited, "search-data rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		return nil, models.NewPipelineError(models.ErrCodeProvider,
			fmt.Sprintf("search-data API returned %d", resp.StatusCode), nil)
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, models.NewPipelineError(models.ErrCodeProvider, "malformed search-data response", err)
	}

	// Provider-level status codes: 20000 is OK.
	if env.StatusCode != 0 && env.StatusCode/100 != 200 {
		return nil, models.NewPipelineError(models.ErrCodeProvider,
			fmt.Sprintf("search-data API error %d: %s", env.StatusCode, env.StatusMessage), nil)
	}

	return &env, nil
}

// firstTaskItems decodes the first task's result array into T. A missing
// task or null result is a NO_RESULTS condition.
func firstTaskItems[T any](env *apiEnvelope) ([]T, error) {
	if len(env.Tasks) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "provider returned no task", nil)
	}

	task := env.Tasks[0]
	if task.StatusCode != 0 && task.StatusCode/100 != 200 {
		return nil, models.NewPipelineError(models.ErrCodeProvider,
			fmt.Sprintf("provider task error %d: %s", task.StatusCode, task.StatusMessage), nil)
	}
	if len(task.Result) == 0 || string(task.Result) == "null" {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "provider task has no result payload", nil)
	}

	var items []T
	if err := json.Unmarshal(task.Result, &items); err != nil {
		slog.Warn("provider result payload did not decode", "error", err)
		return nil, models.NewPipelineError(models.ErrCodeProvider, "malformed provider result payload", err)
	}
	return items, nil
}
