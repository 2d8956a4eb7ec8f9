package stats

import (
	"math"
	"testing"

	"golift/domain/core"
)

func TestAnalyzeResults_EqualRates(t *testing.T) {
	result, err := AnalyzeResults(100, 1000, 100, 1000, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsSignificant {
		t.Error("identical arms must not be significant")
	}
	if result.Winner != WinnerNone {
		t.Errorf("winner = %s, want none", result.Winner)
	}
	if result.ZScore != 0 {
		t.Errorf("z-score = %v, want 0", result.ZScore)
	}
	// the error-function approximation leaves ~1e-9 residue at z = 0
	if math.Abs(result.PValue-1) > 1e-8 {
		t.Errorf("p-value = %v, want 1", result.PValue)
	}
}

func TestAnalyzeResults_TreatmentWins(t *testing.T) {
	// 5% control vs 15% treatment on 1000 each is overwhelmingly significant
	result, err := AnalyzeResults(50, 1000, 150, 1000, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSignificant {
		t.Fatalf("expected significance, p-value = %v", result.PValue)
	}
	if result.Winner != WinnerTreatment {
		t.Errorf("winner = %s, want treatment", result.Winner)
	}
	if math.Abs(result.Improvement-2.0) > 1e-9 {
		t.Errorf("improvement = %v, want 2.0 (tripled rate)", result.Improvement)
	}
	if result.ZScore <= 0 {
		t.Errorf("z-score = %v, want positive", result.ZScore)
	}
	if result.ConfidenceInterval[0] <= 0 {
		t.Errorf("CI lower bound = %v, want above zero for a clear lift", result.ConfidenceInterval[0])
	}
}

func TestAnalyzeResults_ControlWins(t *testing.T) {
	result, err := AnalyzeResults(150, 1000, 50, 1000, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSignificant {
		t.Fatalf("expected significance, p-value = %v", result.PValue)
	}
	if result.Winner != WinnerControl {
		t.Errorf("winner = %s, want control", result.Winner)
	}
	if result.Improvement >= 0 {
		t.Errorf("improvement = %v, want negative", result.Improvement)
	}
}

// Small samples with a modest lift should not reach significance
func TestAnalyzeResults_Underpowered(t *testing.T) {
	result, err := AnalyzeResults(10, 100, 13, 100, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsSignificant {
		t.Errorf("30 conversions over 200 samples should not decide anything, p = %v", result.PValue)
	}
	if result.Winner != WinnerNone {
		t.Errorf("winner = %s, want none", result.Winner)
	}
}

// Zero conversions on both arms gives zero pooled variance; the z-score
// degrades to zero instead of dividing by zero.
func TestAnalyzeResults_ZeroVariance(t *testing.T) {
	result, err := AnalyzeResults(0, 500, 0, 500, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ZScore != 0 {
		t.Errorf("z-score = %v, want 0", result.ZScore)
	}
	if result.IsSignificant {
		t.Error("degenerate data must not be significant")
	}
}

func TestAnalyzeResults_DefaultSignificanceLevel(t *testing.T) {
	explicit, err := AnalyzeResults(50, 1000, 70, 1000, DefaultSignificanceLevel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defaulted, err := AnalyzeResults(50, 1000, 70, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explicit != defaulted {
		t.Errorf("zero significance level should select the default: got %+v, want %+v", defaulted, explicit)
	}
}

func TestAnalyzeResults_RejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name           string
		cc, cn, tc, tn int
		sig            float64
	}{
		{"zero control n", 10, 0, 10, 100, 0.05},
		{"zero treatment n", 10, 100, 10, 0, 0.05},
		{"negative conversions", -1, 100, 10, 100, 0.05},
		{"conversions exceed n", 150, 100, 10, 100, 0.05},
		{"significance at one", 10, 100, 10, 100, 1},
		{"negative significance", 10, 100, 10, 100, -0.05},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AnalyzeResults(tc.cc, tc.cn, tc.tc, tc.tn, tc.sig)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !core.IsValidationError(err) {
				t.Errorf("expected invalid-argument error, got %v", err)
			}
		})
	}
}
