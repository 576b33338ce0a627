package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/seatpick/copysmith/config"
	"github.com/seatpick/copysmith/models"
	"github.com/seatpick/copysmith/tokens"
	"github.com/seatpick/copysmith/usage"
)

// stubClient replays canned completions (or errors) in order.
type stubClient struct {
	responses []stubResponse
	calls     int
	prompts   []CompletionRequest
}

type stubResponse struct {
	text string
	err  error
}

func (s *stubClient) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	s.prompts = append(s.prompts, req)
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++

	r := s.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &Completion{
		Text:             r.text,
		PromptTokens:     100,
		CompletionTokens: 200,
		TotalTokens:      300,
	}, nil
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func testGenerator(client completionClient) *Generator {
	return &Generator{
		client:    client,
		estimator: tokens.NewEstimator(),
		cfg: config.GenerationConfig{
			Model:               "gpt-4o-mini",
			MaxRetries:          3,
			MinWords:            350,
			MaxWords:            500,
			MaxCompletionTokens: 1200,
		},
	}
}

func TestGenerateWithRetry_FirstAttemptSatisfies(t *testing.T) {
	stub := &stubClient{responses: []stubResponse{{text: words(400)}}}
	g := testGenerator(stub)
	ledger := usage.NewLedger()

	res, err := g.GenerateWithRetry(context.Background(), ledger, "gpt-4o-mini", GenerationContext{PageName: "Arsenal tickets", Language: "en"})
	if err != nil {
		t.Fatalf("GenerateWithRetry: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("calls = %d, want 1", stub.calls)
	}
	if !res.IsValidLength || res.WordCount != 400 {
		t.Errorf("result = %+v", res)
	}
	if ledger.RequestCount() != 1 {
		t.Errorf("ledger recorded %d requests, want 1", ledger.RequestCount())
	}
}

func TestGenerateWithRetry_AlwaysViolating_TerminatesWithBest(t *testing.T) {
	// A generator that always comes back short must run exactly maxRetries
	// attempts and return the final violating result, not loop or error.
	stub := &stubClient{responses: []stubResponse{{text: words(200)}}}
	g := testGenerator(stub)
	ledger := usage.NewLedger()

	res, err := g.GenerateWithRetry(context.Background(), ledger, "gpt-4o-mini", GenerationContext{PageName: "p", Language: "en"})
	if err != nil {
		t.Fatalf("soft failure must not be an error: %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want exactly maxRetries (3)", stub.calls)
	}
	if res.IsValidLength {
		t.Error("IsValidLength should be false after exhausted retries")
	}
	if res.WordCount != 200 {
		t.Errorf("WordCount = %d, want 200", res.WordCount)
	}
	// All attempts cost money.
	if ledger.RequestCount() != 3 {
		t.Errorf("ledger recorded %d requests, want every attempt", ledger.RequestCount())
	}
}

func TestGenerateWithRetry_FeedbackNamesCountAndBound(t *testing.T) {
	stub := &stubClient{responses: []stubResponse{
		{text: words(211)}, // too short
		{text: words(640)}, // too long
		{text: words(420)}, // satisfied
	}}
	g := testGenerator(stub)

	res, err := g.GenerateWithRetry(context.Background(), usage.NewLedger(), "gpt-4o-mini", GenerationContext{PageName: "p", Language: "en"})
	if err != nil {
		t.Fatalf("GenerateWithRetry: %v", err)
	}
	if !res.IsValidLength || res.Attempts != 3 {
		t.Errorf("result = %+v", res)
	}

	second := stub.prompts[1].User
	if !strings.Contains(second, "211 words") || !strings.Contains(second, "at least 350") {
		t.Errorf("second prompt missing too-short feedback:\n%s", second)
	}

	third := stub.prompts[2].User
	if !strings.Contains(third, "640 words") || !strings.Contains(third, "under 500") {
		t.Errorf("third prompt missing too-long feedback:\n%s", third)
	}
	// The newest correction is prepended ahead of the older one.
	if strings.Index(third, "640 words") > strings.Index(third, "211 words") {
		t.Error("latest feedback should be prepended before earlier feedback")
	}
}

func TestGenerateWithRetry_ErrorBeforeLastAttemptIsSwallowed(t *testing.T) {
	stub := &stubClient{responses: []stubResponse{
		{err: models.NewPipelineError(models.ErrCodeLLMFailure, "boom", nil)},
		{text: words(400)},
	}}
	g := testGenerator(stub)
	ledger := usage.NewLedger()

	res, err := g.GenerateWithRetry(context.Background(), ledger, "gpt-4o-mini", GenerationContext{PageName: "p", Language: "en"})
	if err != nil {
		t.Fatalf("transient provider error should be retried: %v", err)
	}
	if stub.calls != 2 || !res.IsValidLength {
		t.Errorf("calls = %d, result = %+v", stub.calls, res)
	}
	// The failed attempt produced no completion, so only one record.
	if ledger.RequestCount() != 1 {
		t.Errorf("ledger recorded %d requests, want 1", ledger.RequestCount())
	}
}

func TestGenerateWithRetry_ErrorOnFinalAttemptPropagates(t *testing.T) {
	stub := &stubClient{responses: []stubResponse{
		{err: errors.New("always down")},
	}}
	g := testGenerator(stub)

	_, err := g.GenerateWithRetry(context.Background(), usage.NewLedger(), "gpt-4o-mini", GenerationContext{PageName: "p", Language: "en"})
	if err == nil {
		t.Fatal("final attempt error must propagate")
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d, want 3", stub.calls)
	}
}

func TestSummarizeInsights_RecordsUsage(t *testing.T) {
	stub := &stubClient{responses: []stubResponse{{text: "Competitors lean on seat maps."}}}
	g := testGenerator(stub)
	ledger := usage.NewLedger()

	insights, err := g.SummarizeInsights(context.Background(), ledger, "gpt-4o-mini", "arsenal tickets", []models.CompetitorContent{
		{Domain: "stubhub.com", Content: "seat maps galore"},
	})
	if err != nil {
		t.Fatalf("SummarizeInsights: %v", err)
	}
	if insights != "Competitors lean on seat maps." {
		t.Errorf("insights = %q", insights)
	}
	if ledger.RequestCount() != 1 {
		t.Error("insight call must be recorded in the ledger")
	}
}
