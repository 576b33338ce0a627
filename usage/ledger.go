// Package usage implements the per-batch cost/usage ledger.
//
// One Ledger serves exactly one in-flight batch: the orchestrator resets it
// at batch start and reads the summary once all pages have settled. Ledgers
// are never shared across concurrent batches.
package usage

import (
	"math"
	"sync"
	"time"

	"github.com/seatpick/copysmith/models"
)

// Record is one generation call's accounting entry.
type Record struct {
	Timestamp    time.Time
	InputTokens  int
	OutputTokens int
	Cost         float64
	Model        string
	PageName     string
}

// Ledger accumulates token counts and monetary cost across the generation
// calls of one batch. Go goroutines are preemptive, so mutation is guarded
// by a mutex; totals are monotonically non-decreasing between resets.
type Ledger struct {
	mu sync.Mutex

	inputTokens  int
	outputTokens int
	totalCost    float64
	requests     []Record
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Reset zeroes all counters and clears the request history. Called exactly
// once at the start of each batch, before any generation call.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inputTokens = 0
	l.outputTokens = 0
	l.totalCost = 0
	l.requests = nil
}

// AddRequest appends a timestamped record and updates the running totals.
// Every successful generation attempt is recorded, including ones whose
// output later fails the length constraint: retries are not free.
func (l *Ledger) AddRequest(inputTokens, outputTokens int, cost float64, model, pageName string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inputTokens += inputTokens
	l.outputTokens += outputTokens
	l.totalCost += cost
	l.requests = append(l.requests, Record{
		Timestamp:    time.Now(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Model:        model,
		PageName:     pageName,
	})
}

// RequestCount returns how many calls have been recorded since the last reset.
func (l *Ledger) RequestCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// GetSummary projects the current state into a UsageSummary. Pure read;
// the average is 0 when no requests were recorded.
func (l *Ledger) GetSummary() models.UsageSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.requests)
	avg := 0
	if n > 0 {
		avg = int(math.Round(float64(l.inputTokens+l.outputTokens) / float64(n)))
	}

	return models.UsageSummary{
		TotalInputTokens:        l.inputTokens,
		TotalOutputTokens:       l.outputTokens,
		TotalTokens:             l.inputTokens + l.outputTokens,
		TotalCost:               l.totalCost,
		RequestCount:            n,
		AverageTokensPerRequest: avg,
	}
}
