package tokens

import (
	"math"
	"strings"
	"testing"
)

func TestCountTokens(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one char", "a", 1},
		{"four chars", "abcd", 1},
		{"five chars", "abcde", 2},
		{"eight chars", "abcdefgh", 2},
		{"unicode runes not bytes", "日本語テ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.CountTokens(tt.text); got != tt.want {
				t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCountTokens_Deterministic(t *testing.T) {
	e := NewEstimator()
	text := strings.Repeat("lorem ipsum dolor ", 40)
	if e.CountTokens(text) != e.CountTokens(text) {
		t.Error("CountTokens is not deterministic")
	}
}

func TestCountMessageTokens(t *testing.T) {
	e := NewEstimator()

	// Each message: +4 framing, +role tokens, +content tokens; +2 priming.
	msgs := []Message{
		{Role: "system", Content: "abcd"},     // 4 + 2 + 1 = 7
		{Role: "user", Content: "abcdefgh"},   // 4 + 1 + 2 = 7
	}
	want := 7 + 7 + 2
	if got := e.CountMessageTokens(msgs); got != want {
		t.Errorf("CountMessageTokens = %d, want %d", got, want)
	}
}

func TestCountMessageTokens_NameReplacesRole(t *testing.T) {
	e := NewEstimator()

	withName := e.CountMessageTokens([]Message{{Role: "user", Content: "abcd", Name: "user"}})
	withoutName := e.CountMessageTokens([]Message{{Role: "user", Content: "abcd"}})

	// Same token count for name as for role, minus the 1-token adjustment.
	if withName != withoutName-1 {
		t.Errorf("with name = %d, without = %d; want name variant exactly 1 lower", withName, withoutName)
	}
}

func TestCalculateCost(t *testing.T) {
	e := NewEstimator()

	c := e.CalculateCost("gpt-4o-mini", 1000, 2000)
	wantIn := 0.00015
	wantOut := 2 * 0.0006
	if math.Abs(c.InputCost-wantIn) > 1e-12 {
		t.Errorf("InputCost = %f, want %f", c.InputCost, wantIn)
	}
	if math.Abs(c.OutputCost-wantOut) > 1e-12 {
		t.Errorf("OutputCost = %f, want %f", c.OutputCost, wantOut)
	}
	if math.Abs(c.TotalCost-(wantIn+wantOut)) > 1e-12 {
		t.Errorf("TotalCost = %f, want %f", c.TotalCost, wantIn+wantOut)
	}
}

func TestCalculateCost_UnpricedModel(t *testing.T) {
	e := NewEstimator()
	c := e.CalculateCost("some-unknown-model", 5000, 5000)
	if c.InputCost != 0 || c.OutputCost != 0 || c.TotalCost != 0 {
		t.Errorf("unpriced model should cost zero, got %+v", c)
	}
}

func TestEstimateRequestTokens(t *testing.T) {
	e := NewEstimator()

	// 400 runes -> 100 prompt tokens -> 80 estimated output (below cap).
	prompt := strings.Repeat("a", 400)
	est := e.EstimateRequestTokens("gpt-4o-mini", prompt, 1200)
	if est.PromptTokens != 100 {
		t.Errorf("PromptTokens = %d, want 100", est.PromptTokens)
	}
	if est.EstimatedOutputTokens != 80 {
		t.Errorf("EstimatedOutputTokens = %d, want 80", est.EstimatedOutputTokens)
	}
	if est.TotalEstimatedTokens != 180 {
		t.Errorf("TotalEstimatedTokens = %d, want 180", est.TotalEstimatedTokens)
	}

	// Cap applies when lower than 80% of the prompt.
	est = e.EstimateRequestTokens("gpt-4o-mini", prompt, 50)
	if est.EstimatedOutputTokens != 50 {
		t.Errorf("EstimatedOutputTokens = %d, want capped 50", est.EstimatedOutputTokens)
	}
}
