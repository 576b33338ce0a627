// Package competitor fetches top-ranking competitor pages and distils them
// into prompt-sized content for insight summarisation.
package competitor

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
)

// placeholderContent marks a URL whose fetch or parse failed. The entry is
// kept so every attempted URL stays accounted for.
const placeholderContent = "Unable to fetch content from this source."

var reWhitespace = regexp.MustCompile(`\s+`)

// fetchFunc retrieves one URL's raw HTML. Swapped for a stub in tests.
type fetchFunc func(ctx context.Context, targetURL string) ([]byte, error)

// Extractor fetches a capped set of URLs with bounded concurrency and a
// staggered launch, and extracts normalized content from each.
type Extractor struct {
	cfg         config.CompetitorConfig
	fetch       fetchFunc
	strip       cascadia.Selector
	mdConverter *converter.Converter
}

// NewExtractor builds an Extractor from config. The strip-selector list is
// compiled once here; an invalid configured list falls back to the default
// set of boilerplate tags.
func NewExtractor(cfg config.CompetitorConfig) *Extractor {
	selectors := cfg.StripSelectors
	if len(selectors) == 0 {
		selectors = []string{"script", "style", "nav", "footer", "header", "aside", "noscript", "form", "iframe"}
	}
	strip, err := cascadia.Compile(strings.Join(selectors, ", "))
	if err != nil {
		slog.Warn("invalid strip selector list, using defaults", "error", err)
		strip = cascadia.MustCompile("script, style, nav, footer, header, aside, noscript, form, iframe")
	}

	f := &pageFetcher{}
	return &Extractor{
		cfg:         cfg,
		fetch:       f.fetch,
		strip:       strip,
		mdConverter: converter.NewConverter(),
	}
}

// Extract fetches up to limit URLs concurrently and returns one entry per
// attempted URL, in input order. Launches are staggered by index to avoid
// tripping remote rate limits; each fetch carries its own timeout. A failed
// fetch yields a placeholder entry — no per-URL error escapes this call,
// and the call returns only once every URL has settled.
func (e *Extractor) Extract(ctx context.Context, urls []string, limit int) []models.CompetitorContent {
	if limit <= 0 {
		limit = e.cfg.Limit
	}
	if len(urls) > limit {
		urls = urls[:limit]
	}

	results := make([]models.CompetitorContent, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(idx int, targetURL string) {
			defer wg.Done()

			delay := time.Duration(idx) * e.cfg.FetchStagger
			if delay > 0 {
				select {
				case <-ctx.Done():
					results[idx] = e.placeholder(targetURL)
					return
				case <-time.After(delay):
				}
			}

			fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()

			body, err := e.fetch(fetchCtx, targetURL)
			if err != nil {
				slog.Warn("competitor page fetch failed", "url", targetURL, "error", err)
				results[idx] = e.placeholder(targetURL)
				return
			}

			results[idx] = e.extractContent(string(body), targetURL)
		}(i, u)
	}

	wg.Wait()
	return results
}

// FilterMeaningful drops entries whose extracted content is too short to
// inform the generator, plus near-duplicates of an earlier kept entry
// (SimHash within dupThreshold). The full attempt list stays in the Extract
// return for accounting; this is only what the prompt sees.
func (e *Extractor) FilterMeaningful(contents []models.CompetitorContent) []models.CompetitorContent {
	out := make([]models.CompetitorContent, 0, len(contents))
	kept := make([]uint64, 0, len(contents))

	for _, c := range contents {
		if c.ContentLength < e.cfg.MinContentChars {
			slog.Debug("dropping near-empty competitor extraction",
				"url", c.URL, "length", c.ContentLength,
			)
			continue
		}

		fp := fingerprint(c.Content)
		dup := false
		for _, prev := range kept {
			if nearDuplicate(fp, prev) {
				dup = true
				break
			}
		}
		if dup {
			slog.Debug("dropping near-duplicate competitor extraction", "url", c.URL)
			continue
		}

		kept = append(kept, fp)
		out = append(out, c)
	}
	return out
}

// extractContent distils raw HTML into a CompetitorContent entry:
// readability isolates the main body (raw-HTML fallback when it chokes),
// the strip selectors remove leftover boilerplate, and the text is
// whitespace-collapsed and truncated to the character budget.
func (e *Extractor) extractContent(rawHTML, sourceURL string) models.CompetitorContent {
	article := e.readable(rawHTML, sourceURL)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		slog.Warn("competitor content did not parse", "url", sourceURL, "error", err)
		return e.placeholder(sourceURL)
	}
	doc.FindMatcher(e.strip).Remove()

	var content string
	if e.cfg.ContentFormat == "markdown" {
		if html, err := doc.Html(); err == nil {
			if md, err := e.mdConverter.ConvertString(html); err == nil {
				content = strings.TrimSpace(md)
			}
		}
	}
	if content == "" {
		content = reWhitespace.ReplaceAllString(strings.TrimSpace(doc.Text()), " ")
	}
	if len(content) > e.cfg.MaxContentChars {
		content = content[:e.cfg.MaxContentChars]
	}

	title := article.Title
	if title == "" {
		title = extractTitle([]byte(rawHTML))
	}

	return models.CompetitorContent{
		URL:             sourceURL,
		Domain:          NormalizeDomain(hostOf(sourceURL)),
		Title:           title,
		MetaDescription: metaDescription(rawHTML),
		Content:         content,
		ContentLength:   len(content),
	}
}

// readable runs the Mozilla Readability algorithm. Extraction must never
// fail the pipeline, so a choked or near-empty article degrades to the
// raw HTML.
func (e *Extractor) readable(rawHTML, sourceURL string) readability.Article {
	fallback := readability.Article{Content: rawHTML, TextContent: rawHTML}

	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return fallback
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability extraction failed, using raw HTML", "url", sourceURL, "error", err)
		return fallback
	}
	if len(strings.TrimSpace(article.TextContent)) < 50 {
		return fallback
	}
	return article
}

func (e *Extractor) placeholder(sourceURL string) models.CompetitorContent {
	return models.CompetitorContent{
		URL:           sourceURL,
		Domain:        NormalizeDomain(hostOf(sourceURL)),
		Content:       placeholderContent,
		ContentLength: 0,
	}
}

// metaDescription pulls <meta name="description"> from the full document.
func metaDescription(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return strings.TrimSpace(desc)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}

// NormalizeDomain lowercases a hostname and strips a leading "www." so
// competitor domains compare consistently.
func NormalizeDomain(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
