package serpdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seatpick/copysmith/models"
)

// pollDelay returns the wait before poll attempt i (0-based).
//
// The schedule is linear: 5s base plus 3s per attempt. The upstream service
// documented this as "exponential backoff"; it never was, and switching to a
// true exponential curve would change observable timing, so linear it stays.
func pollDelay(attempt int) time.Duration {
	return 5*time.Second + time.Duration(attempt)*3*time.Second
}

// GetSearchVolumeViaTask is the asynchronous fallback to GetSearchVolume:
// submit a task, then poll for its completion with bounded linear backoff.
// Exhausting the attempt budget fails with a TASK_TIMEOUT error.
//
// The live path is primary; this exists for provider plans where live
// search-volume lookups are not available.
func (c *Client) GetSearchVolumeViaTask(ctx context.Context, keywords []string, location int, language string) ([]models.SearchVolumeRecord, error) {
	if len(keywords) == 0 {
		return nil, models.NewPipelineError(models.ErrCodeInvalidInput, "at least one keyword is required", nil)
	}

	normalized := normalizeKeywords(keywords)
	payload := []map[string]any{{
		"keywords":      normalized,
		"location_code": location,
		"language_code": language,
	}}

	env, err := c.post(ctx, "/v3/keywords_data/google_ads/search_volume/task_post", payload)
	if err != nil {
		return nil, err
	}
	if len(env.Tasks) == 0 || env.Tasks[0].ID == "" {
		return nil, models.NewPipelineError(models.ErrCodeNoResults, "task_post returned no task id", nil)
	}
	taskID := env.Tasks[0].ID

	attempts := c.pollAttempts
	if attempts <= 0 {
		attempts = 6
	}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return nil, models.NewPipelineError(models.ErrCodeTimeout, "search-volume polling cancelled", ctx.Err())
		case <-time.After(c.pollDelayFn(i)):
		}

		records, done, err := c.fetchTaskResult(ctx, taskID, keywords, normalized)
		if err != nil {
			pe, ok := err.(*models.PipelineError)
			if ok && !pe.Retryable() {
				return nil, err
			}
			slog.Warn("search-volume poll attempt failed",
				"task_id", taskID, "attempt", i+1, "error", err,
			)
			continue
		}
		if done {
			return records, nil
		}
	}

	return nil, models.NewPipelineError(models.ErrCodeTaskTimeout,
		fmt.Sprintf("search-volume task %s not ready after %d poll attempts", taskID, attempts), nil)
}

// fetchTaskResult polls one task. done is false while the provider still
// reports the task as in progress.
func (c *Client) fetchTaskResult(ctx context.Context, taskID string, originals, normalized []string) ([]models.SearchVolumeRecord, bool, error) {
	env, err := c.post(ctx, "/v3/keywords_data/google_ads/search_volume/task_get/"+taskID, nil)
	if err != nil {
		return nil, false, err
	}

	if len(env.Tasks) == 0 {
		return nil, false, models.NewPipelineError(models.ErrCodeNoResults, "task_get returned no task", nil)
	}
	// 40601/40602: task queued / in progress.
	if code := env.Tasks[0].StatusCode; code == 40601 || code == 40602 {
		return nil, false, nil
	}

	items, err := firstTaskItems[volumeItem](env)
	if err != nil {
		return nil, false, err
	}

	return mapVolumeItems(items, originals, normalized), true, nil
}

// normalizeKeywords applies the provider's query normalization (trim+lower).
func normalizeKeywords(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = normalizeKeyword(k)
	}
	return out
}
