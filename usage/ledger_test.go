package usage

import (
	"math"
	"testing"
)

func TestLedger_Additivity(t *testing.T) {
	l := NewLedger()
	l.Reset()

	calls := []struct {
		in, out int
		cost    float64
	}{
		{100, 400, 0.0025},
		{250, 310, 0.0018},
		{90, 500, 0.0031},
	}

	wantIn, wantOut := 0, 0
	wantCost := 0.0
	for _, c := range calls {
		l.AddRequest(c.in, c.out, c.cost, "gpt-4o-mini", "Arsenal tickets")
		wantIn += c.in
		wantOut += c.out
		wantCost += c.cost
	}

	s := l.GetSummary()
	if s.TotalInputTokens != wantIn {
		t.Errorf("TotalInputTokens = %d, want %d", s.TotalInputTokens, wantIn)
	}
	if s.TotalOutputTokens != wantOut {
		t.Errorf("TotalOutputTokens = %d, want %d", s.TotalOutputTokens, wantOut)
	}
	if s.TotalTokens != wantIn+wantOut {
		t.Errorf("TotalTokens = %d, want %d", s.TotalTokens, wantIn+wantOut)
	}
	if math.Abs(s.TotalCost-wantCost) > 1e-9 {
		t.Errorf("TotalCost = %f, want %f", s.TotalCost, wantCost)
	}
	if s.RequestCount != len(calls) {
		t.Errorf("RequestCount = %d, want %d", s.RequestCount, len(calls))
	}
}

func TestLedger_AverageRounding(t *testing.T) {
	l := NewLedger()
	l.AddRequest(100, 0, 0, "m", "p")
	l.AddRequest(101, 0, 0, "m", "p")

	// (100+101)/2 = 100.5 rounds to 101.
	if got := l.GetSummary().AverageTokensPerRequest; got != 101 {
		t.Errorf("AverageTokensPerRequest = %d, want 101", got)
	}
}

func TestLedger_EmptySummary(t *testing.T) {
	l := NewLedger()
	s := l.GetSummary()
	if s.RequestCount != 0 || s.TotalTokens != 0 || s.TotalCost != 0 {
		t.Errorf("empty ledger summary not zeroed: %+v", s)
	}
	if s.AverageTokensPerRequest != 0 {
		t.Errorf("average should be 0 with no requests, got %d", s.AverageTokensPerRequest)
	}
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger()
	l.AddRequest(500, 600, 0.01, "m", "p")
	l.AddRequest(700, 800, 0.02, "m", "p")

	l.Reset()

	s := l.GetSummary()
	if s.TotalInputTokens != 0 || s.TotalOutputTokens != 0 || s.TotalCost != 0 || s.RequestCount != 0 {
		t.Errorf("reset did not zero the ledger: %+v", s)
	}
}

func TestLedger_ConcurrentAddRequest(t *testing.T) {
	l := NewLedger()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				l.AddRequest(1, 2, 0.001, "m", "p")
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	s := l.GetSummary()
	if s.RequestCount != 1000 {
		t.Errorf("RequestCount = %d, want 1000", s.RequestCount)
	}
	if s.TotalInputTokens != 1000 || s.TotalOutputTokens != 2000 {
		t.Errorf("totals = %d/%d, want 1000/2000", s.TotalInputTokens, s.TotalOutputTokens)
	}
}
