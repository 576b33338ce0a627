package serpdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.SearchDataConfig{
		Login:        "login",
		Password:     "secret",
		BaseURL:      srv.URL,
		PollAttempts: 3,
		Timeout:      5 * time.Second,
	}, srv.Client())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func volumeEnvelope(items ...map[string]any) map[string]any {
	return map[string]any{
		"status_code": 20000,
		"tasks": []map[string]any{
			{"status_code": 20000, "result": items},
		},
	}
}

func TestGetSearchVolume_KeywordEchoAndNormalization(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "login" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var payload []struct {
			Keywords []string `json:"keywords"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// The query must carry normalized keywords.
		if payload[0].Keywords[0] != "arsenal tickets" {
			t.Errorf("query keyword = %q, want normalized", payload[0].Keywords[0])
		}

		writeJSON(w, volumeEnvelope(map[string]any{
			"keyword":       "arsenal tickets",
			"search_volume": 50000,
			"competition":   "HIGH",
			"cpc":           1.25,
		}))
	})

	records, err := c.GetSearchVolume(context.Background(), []string{"  Arsenal Tickets "}, 2840, "en")
	if err != nil {
		t.Fatalf("GetSearchVolume: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	// The record is keyed back to the caller's original spelling.
	if records[0].Keyword != "  Arsenal Tickets " {
		t.Errorf("Keyword = %q, want original spelling", records[0].Keyword)
	}
	if records[0].SearchVolume != 50000 || records[0].Competition != "HIGH" || records[0].CPC != 1.25 {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestGetSearchVolume_ZeroFillMissingKeywords(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, volumeEnvelope(map[string]any{
			"keyword":       "liverpool tickets",
			"search_volume": 30000,
			"competition":   "MEDIUM",
			"cpc":           0.9,
		}))
	})

	records, err := c.GetSearchVolume(context.Background(),
		[]string{"Liverpool tickets", "obscure nonexistent keyword"}, 2840, "en")
	if err != nil {
		t.Fatalf("GetSearchVolume: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want one per requested keyword", len(records))
	}

	missing := records[1]
	if missing.Keyword != "obscure nonexistent keyword" {
		t.Errorf("missing keyword not echoed: %q", missing.Keyword)
	}
	if missing.SearchVolume != 0 || missing.Competition != "Unknown" || missing.CPC != 0 {
		t.Errorf("missing keyword not zero-filled: %+v", missing)
	}
	if missing.MonthlySearches == nil || len(missing.MonthlySearches) != 0 {
		t.Errorf("MonthlySearches should be empty, not nil or populated: %#v", missing.MonthlySearches)
	}
}

func TestGetSearchVolume_EmptyKeywords(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for empty keyword list")
	})

	_, err := c.GetSearchVolume(context.Background(), nil, 2840, "en")
	var pe *models.PipelineError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeInvalidInput {
		t.Fatalf("want INVALID_INPUT, got %v", err)
	}
}

func TestGetSearchVolume_AuthFailureNormalized(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.GetSearchVolume(context.Background(), []string{"x"}, 2840, "en")
	var pe *models.PipelineError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeUnauthorized {
		t.Fatalf("want UNAUTHORIZED PipelineError, got %v", err)
	}
	if pe.Retryable() {
		t.Error("auth failure must not be retryable")
	}
}

func TestGetSERPResults_OrganicOnly(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status_code": 20000,
			"tasks": []map[string]any{{
				"status_code": 20000,
				"result": []map[string]any{{
					"keyword":          "arsenal tickets",
					"se_results_count": 1234567,
					"items": []map[string]any{
						{"type": "paid", "rank_group": 1, "url": "https://ads.example.com", "domain": "ads.example.com"},
						{"type": "organic", "rank_group": 1, "title": "Buy Arsenal Tickets", "url": "https://seatpick.com/arsenal", "domain": "seatpick.com"},
						{"type": "people_also_ask", "rank_group": 2},
						{"type": "organic", "rank_group": 2, "title": "Arsenal FC", "url": "https://stubhub.com/arsenal", "domain": "stubhub.com", "is_featured_snippet": true},
					},
				}},
			}},
		})
	})

	serp, err := c.GetSERPResults(context.Background(), "arsenal tickets", 2840, "en")
	if err != nil {
		t.Fatalf("GetSERPResults: %v", err)
	}
	if serp.TotalResults != 1234567 {
		t.Errorf("TotalResults = %d, want 1234567", serp.TotalResults)
	}
	if len(serp.OrganicResults) != 2 {
		t.Fatalf("got %d organic results, want ads and snippets filtered out", len(serp.OrganicResults))
	}
	if serp.OrganicResults[0].Domain != "seatpick.com" || serp.OrganicResults[1].Domain != "stubhub.com" {
		t.Errorf("unexpected organic ordering: %+v", serp.OrganicResults)
	}
	if !serp.OrganicResults[1].IsFeatured {
		t.Error("featured snippet flag lost")
	}
}

func TestGetSERPResults_NoResultPayload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"status_code": 20000,
			"tasks":       []map[string]any{{"status_code": 20000, "result": nil}},
		})
	})

	_, err := c.GetSERPResults(context.Background(), "whatever", 2840, "en")
	var pe *models.PipelineError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeNoResults {
		t.Fatalf("want NO_RESULTS, got %v", err)
	}
}

func TestPollDelay_Linear(t *testing.T) {
	for i, want := range []time.Duration{5 * time.Second, 8 * time.Second, 11 * time.Second} {
		if got := pollDelay(i); got != want {
			t.Errorf("pollDelay(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGetSearchVolumeViaTask_TimesOutAfterBudget(t *testing.T) {
	var polls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v3/keywords_data/google_ads/search_volume/task_post" {
			writeJSON(w, map[string]any{
				"status_code": 20000,
				"tasks":       []map[string]any{{"id": "task-1", "status_code": 20100}},
			})
			return
		}
		polls.Add(1)
		// Forever in progress.
		writeJSON(w, map[string]any{
			"status_code": 20000,
			"tasks":       []map[string]any{{"id": "task-1", "status_code": 40602}},
		})
	})

	c.pollDelayFn = func(int) time.Duration { return time.Millisecond }

	_, err := c.GetSearchVolumeViaTask(context.Background(), []string{"x"}, 2840, "en")
	var pe *models.PipelineError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeTaskTimeout {
		t.Fatalf("want TASK_TIMEOUT, got %v", err)
	}
	if got := polls.Load(); got != 3 {
		t.Errorf("polled %d times, want the configured 3", got)
	}
}
