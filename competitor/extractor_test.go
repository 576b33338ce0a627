package competitor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seatpick/copysmith/config"
)

func testConfig() config.CompetitorConfig {
	return config.CompetitorConfig{
		Limit:           3,
		FetchTimeout:    2 * time.Second,
		FetchStagger:    0, // no stagger sleeps in tests
		MaxContentChars: 3000,
		MinContentChars: 100,
		ContentFormat:   "text",
	}
}

func pageHTML(body string) string {
	return `<html><head><title>Arsenal Tickets 2026</title>
<meta name="description" content="Compare Arsenal ticket prices.">
<script>window.track()</script><style>.x{}</style></head>
<body><nav>Home | Tickets</nav><main>` + body + `</main><footer>© tickets inc</footer></body></html>`
}

func TestExtract_OneEntryPerURLInOrder(t *testing.T) {
	e := NewExtractor(testConfig())
	e.fetch = func(_ context.Context, u string) ([]byte, error) {
		return []byte(pageHTML("<p>Content for " + u + " " + strings.Repeat("seats and prices ", 30) + "</p>")), nil
	}

	urls := []string{"https://www.stubhub.com/a", "https://ticketmaster.com/b"}
	got := e.Extract(context.Background(), urls, 3)

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for i, u := range urls {
		if got[i].URL != u {
			t.Errorf("entry %d URL = %q, want %q (input order)", i, got[i].URL, u)
		}
	}
	if got[0].Domain != "stubhub.com" {
		t.Errorf("Domain = %q, want www. stripped", got[0].Domain)
	}
}

func TestExtract_TruncatesToLimit(t *testing.T) {
	var calls atomic.Int32
	e := NewExtractor(testConfig())
	e.fetch = func(_ context.Context, u string) ([]byte, error) {
		calls.Add(1)
		return []byte(pageHTML("<p>x</p>")), nil
	}

	urls := []string{"https://a.com", "https://b.com", "https://c.com", "https://d.com", "https://e.com"}
	got := e.Extract(context.Background(), urls, 3)

	if len(got) != 3 {
		t.Fatalf("got %d entries, want the first 3 URLs only", len(got))
	}
	if calls.Load() != 3 {
		t.Errorf("fetched %d URLs, want 3", calls.Load())
	}
}

func TestExtract_PlaceholderOnFailure(t *testing.T) {
	e := NewExtractor(testConfig())
	e.fetch = func(_ context.Context, u string) ([]byte, error) {
		if strings.Contains(u, "down") {
			return nil, errors.New("connection refused")
		}
		return []byte(pageHTML("<p>" + strings.Repeat("lots of ticket info ", 30) + "</p>")), nil
	}

	got := e.Extract(context.Background(), []string{"https://ok.com", "https://down.com"}, 3)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want both URLs accounted for", len(got))
	}

	bad := got[1]
	if bad.Content != placeholderContent || bad.ContentLength != 0 {
		t.Errorf("failed fetch should yield placeholder, got %+v", bad)
	}
	if got[0].ContentLength == 0 {
		t.Error("sibling URL should be unaffected by the failure")
	}
}

func TestExtract_StripsBoilerplateAndCollapsesWhitespace(t *testing.T) {
	e := NewExtractor(testConfig())
	e.fetch = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(pageHTML("<p>Great   seats\n\n  at   great " + strings.Repeat("prices ", 40) + "</p>")), nil
	}

	got := e.Extract(context.Background(), []string{"https://x.com"}, 1)
	c := got[0]

	if strings.Contains(c.Content, "window.track") {
		t.Error("script content leaked into extraction")
	}
	if strings.Contains(c.Content, "\n") || strings.Contains(c.Content, "  ") {
		t.Errorf("whitespace not collapsed: %q", c.Content)
	}
	if c.Title != "Arsenal Tickets 2026" {
		t.Errorf("Title = %q", c.Title)
	}
	if c.MetaDescription != "Compare Arsenal ticket prices." {
		t.Errorf("MetaDescription = %q", c.MetaDescription)
	}
	if c.ContentLength != len(c.Content) {
		t.Errorf("ContentLength = %d, len(Content) = %d", c.ContentLength, len(c.Content))
	}
}

func TestExtract_TruncatesToCharBudget(t *testing.T) {
	cfg := testConfig()
	cfg.MaxContentChars = 120
	e := NewExtractor(cfg)
	e.fetch = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(pageHTML("<p>" + strings.Repeat("word ", 200) + "</p>")), nil
	}

	got := e.Extract(context.Background(), []string{"https://x.com"}, 1)
	if got[0].ContentLength > 120 {
		t.Errorf("ContentLength = %d, want <= 120", got[0].ContentLength)
	}
}

func TestFilterMeaningful(t *testing.T) {
	e := NewExtractor(testConfig())
	e.fetch = func(_ context.Context, u string) ([]byte, error) {
		if strings.Contains(u, "thin") {
			return []byte(pageHTML("<p>tiny</p>")), nil
		}
		return []byte(pageHTML("<p>" + strings.Repeat("substantial content ", 30) + "</p>")), nil
	}

	all := e.Extract(context.Background(), []string{"https://full.com", "https://thin.com"}, 3)
	kept := e.FilterMeaningful(all)

	if len(all) != 2 {
		t.Fatalf("all attempts must be returned, got %d", len(all))
	}
	if len(kept) != 1 || kept[0].URL != "https://full.com" {
		t.Errorf("filter should keep only meaningful content, got %+v", kept)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"www.SeatPick.com", "seatpick.com"},
		{"stubhub.com", "stubhub.com"},
		{"WWW.TICKETMASTER.COM", "ticketmaster.com"},
	}
	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
