package risk

import (
	"testing"
	"time"

	"golift/domain/core"
	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// fixture builds a two-arm experiment with a 50/50 split and attaches the
// given results directly.
func fixture(t *testing.T, required int, startedDaysAgo float64, results []experiment.VariantResult) *experiment.Experiment {
	t.Helper()

	exp := experiment.MustNew("checkout-cta", "bolder CTA lifts conversion",
		[]experiment.Variant{
			{ID: "control", Name: "Control", TrafficPercent: 50, IsControl: true},
			{ID: "treatment", Name: "Treatment", TrafficPercent: 50},
		},
		[]experiment.Metric{{Key: "conversion", Name: "Conversion", IsPrimary: true}},
		experiment.StatisticalConfig{
			BaselineRate:            0.10,
			MinimumDetectableEffect: 0.10,
			Power:                   0.8,
			SignificanceLevel:       0.05,
		})
	exp.RequiredSampleSize = required
	if startedDaysAgo >= 0 {
		exp.StartDate = core.NewTimestamp(time.Now().Add(-time.Duration(startedDaysAgo * 24 * float64(time.Hour))))
	}
	exp.Results = results
	return exp
}

func result(variant core.VariantID, samples, conversions int, significant bool) experiment.VariantResult {
	rate := 0.0
	if samples > 0 {
		rate = float64(conversions) / float64(samples)
	}
	return experiment.VariantResult{
		VariantID:          variant,
		SampleSize:         samples,
		Conversions:        conversions,
		ConversionRate:     rate,
		ConfidenceInterval: [2]float64{rate - 0.01, rate + 0.01},
		IsSignificant:      significant,
	}
}

// ============================================================================
// SAMPLE RATIO MISMATCH
// ============================================================================

func TestSampleRatioDetector_GrossImbalance(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 900, 90, false),
		result("treatment", 100, 10, false),
	})

	risk := NewSampleRatioDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("900/100 on a 50/50 split must raise SRM")
	}
	if risk.Type != intelligence.RiskSampleRatioMismatch {
		t.Errorf("type = %s, want sample_ratio_mismatch", risk.Type)
	}
	// 80% relative deviation is far past the critical escalation threshold
	if risk.Level != intelligence.RiskCritical {
		t.Errorf("level = %s, want critical", risk.Level)
	}
}

func TestSampleRatioDetector_BalancedSplit(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 1010, 101, false),
		result("treatment", 990, 99, false),
	})
	if risk := NewSampleRatioDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("a near-even split must not raise SRM, got %+v", risk)
	}
}

func TestSampleRatioDetector_SkipsTinySamples(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 40, 4, false),
		result("treatment", 10, 1, false),
	})
	if risk := NewSampleRatioDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("under 100 total samples the test has no power, got %+v", risk)
	}
}

func TestSampleRatioDetector_SkipsSingleResult(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 500, 50, false),
	})
	if risk := NewSampleRatioDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("one result row cannot establish a mismatch, got %+v", risk)
	}
}

// ============================================================================
// NOVELTY EFFECT
// ============================================================================

func TestNoveltyDetector_AcuteWindow(t *testing.T) {
	exp := fixture(t, 4000, 2, []experiment.VariantResult{
		result("control", 500, 50, false),
		result("treatment", 500, 75, true),
	})
	risk := NewNoveltyDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("significance two days in must raise a novelty risk")
	}
	if risk.Level != intelligence.RiskHigh {
		t.Errorf("level = %s, want high inside the first three days", risk.Level)
	}
}

func TestNoveltyDetector_LaterInWindow(t *testing.T) {
	exp := fixture(t, 4000, 5, []experiment.VariantResult{
		result("control", 500, 50, false),
		result("treatment", 500, 75, true),
	})
	risk := NewNoveltyDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("significance five days in must raise a novelty risk")
	}
	if risk.Level != intelligence.RiskMedium {
		t.Errorf("level = %s, want medium between day three and day seven", risk.Level)
	}
}

func TestNoveltyDetector_PastWindow(t *testing.T) {
	exp := fixture(t, 4000, 10, []experiment.VariantResult{
		result("control", 500, 50, false),
		result("treatment", 500, 75, true),
	})
	if risk := NewNoveltyDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("ten days in is past the novelty window, got %+v", risk)
	}
}

func TestNoveltyDetector_NoSignificance(t *testing.T) {
	exp := fixture(t, 4000, 2, []experiment.VariantResult{
		result("control", 500, 50, false),
		result("treatment", 500, 52, false),
	})
	if risk := NewNoveltyDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("no significant result means no novelty risk, got %+v", risk)
	}
}

func TestNoveltyDetector_NotStarted(t *testing.T) {
	exp := fixture(t, 4000, -1, []experiment.VariantResult{
		result("control", 500, 50, false),
		result("treatment", 500, 75, true),
	})
	if risk := NewNoveltyDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("an unstarted experiment has no novelty window, got %+v", risk)
	}
}

// ============================================================================
// PEEKING
// ============================================================================

func TestPeekingDetector_EarlySignificance(t *testing.T) {
	exp := fixture(t, 20000, 10, []experiment.VariantResult{
		result("control", 2000, 200, false),
		result("treatment", 2000, 280, true),
	})
	risk := NewPeekingDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("significance at 20% progress must raise a peeking risk")
	}
	if risk.Level != intelligence.RiskHigh {
		t.Errorf("level = %s, want high under 25%% progress", risk.Level)
	}
}

func TestPeekingDetector_MidRun(t *testing.T) {
	exp := fixture(t, 10000, 10, []experiment.VariantResult{
		result("control", 2000, 200, false),
		result("treatment", 2000, 280, true),
	})
	risk := NewPeekingDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("significance at 40% progress must raise a peeking risk")
	}
	if risk.Level != intelligence.RiskMedium {
		t.Errorf("level = %s, want medium between 25%% and 50%% progress", risk.Level)
	}
}

func TestPeekingDetector_PastHalfway(t *testing.T) {
	exp := fixture(t, 6000, 10, []experiment.VariantResult{
		result("control", 2000, 200, false),
		result("treatment", 2000, 280, true),
	})
	if risk := NewPeekingDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("significance past 50%% progress is not peeking, got %+v", risk)
	}
}

func TestPeekingDetector_NoSignificance(t *testing.T) {
	exp := fixture(t, 20000, 10, []experiment.VariantResult{
		result("control", 2000, 200, false),
		result("treatment", 2000, 210, false),
	})
	if risk := NewPeekingDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("no significance means no peeking risk, got %+v", risk)
	}
}

// ============================================================================
// UNDERPOWERED
// ============================================================================

func TestUnderpoweredDetector_FlatNearEnd(t *testing.T) {
	exp := fixture(t, 4000, 20, []experiment.VariantResult{
		result("control", 1800, 180, false),
		result("treatment", 1800, 185, false),
	})
	risk := NewUnderpoweredDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("90% progress with nothing significant must raise an underpowered risk")
	}
	if risk.Level != intelligence.RiskMedium {
		t.Errorf("level = %s, want medium", risk.Level)
	}
}

func TestUnderpoweredDetector_SignificantResult(t *testing.T) {
	exp := fixture(t, 4000, 20, []experiment.VariantResult{
		result("control", 1800, 180, false),
		result("treatment", 1800, 250, true),
	})
	if risk := NewUnderpoweredDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("a significant arm rules out the underpowered risk, got %+v", risk)
	}
}

func TestUnderpoweredDetector_EarlyRun(t *testing.T) {
	exp := fixture(t, 4000, 5, []experiment.VariantResult{
		result("control", 1000, 100, false),
		result("treatment", 1000, 105, false),
	})
	if risk := NewUnderpoweredDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("50%% progress is too early to call underpowered, got %+v", risk)
	}
}

// ============================================================================
// METRIC QUALITY
// ============================================================================

func TestMetricQualityDetector_ImplausiblyHighRate(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 1000, 100, false),
		result("treatment", 1000, 950, false),
	})
	risk := NewMetricQualityDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("a 95% conversion rate must raise a metric quality risk")
	}
	if risk.Level != intelligence.RiskMedium {
		t.Errorf("level = %s, want medium", risk.Level)
	}
}

func TestMetricQualityDetector_ImplausiblyLowRate(t *testing.T) {
	exp := fixture(t, 200000, 14, []experiment.VariantResult{
		result("control", 100000, 10000, false),
		result("treatment", 100000, 10, false),
	})
	risk := NewMetricQualityDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("a 0.01% conversion rate must raise a metric quality risk")
	}
}

func TestMetricQualityDetector_NoisyControl(t *testing.T) {
	control := result("control", 1000, 100, false)
	control.ConfidenceInterval = [2]float64{0.05, 0.15} // width equals the rate
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		control,
		result("treatment", 1000, 110, false),
	})
	risk := NewMetricQualityDetector().Detect(exp, time.Now())
	if risk == nil {
		t.Fatal("a control interval as wide as its own rate must raise a risk")
	}
	if risk.Level != intelligence.RiskLow {
		t.Errorf("level = %s, want low", risk.Level)
	}
}

func TestMetricQualityDetector_CleanData(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 1000, 100, false),
		result("treatment", 1000, 110, false),
	})
	if risk := NewMetricQualityDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("plausible rates and tight intervals are clean, got %+v", risk)
	}
}

func TestMetricQualityDetector_SkipsEmptyRows(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 0, 0, false),
		result("treatment", 1000, 110, false),
	})
	if risk := NewMetricQualityDetector().Detect(exp, time.Now()); risk != nil {
		t.Errorf("zero-sample rows carry no rate information, got %+v", risk)
	}
}

// ============================================================================
// BATTERY
// ============================================================================

func TestScan_CollectsAllFindings(t *testing.T) {
	// gross SRM plus early significance at low progress
	exp := fixture(t, 20000, 2, []experiment.VariantResult{
		result("control", 1800, 180, false),
		result("treatment", 200, 40, true),
	})

	risks := Scan(DefaultDetectors(), exp, time.Now())
	found := map[intelligence.RiskType]bool{}
	for _, r := range risks {
		found[r.Type] = true
	}
	for _, want := range []intelligence.RiskType{
		intelligence.RiskSampleRatioMismatch,
		intelligence.RiskNoveltyEffect,
		intelligence.RiskPeeking,
	} {
		if !found[want] {
			t.Errorf("expected %s in scan findings %v", want, risks)
		}
	}
}

func TestScan_CleanExperiment(t *testing.T) {
	exp := fixture(t, 4000, 14, []experiment.VariantResult{
		result("control", 1200, 120, false),
		result("treatment", 1200, 132, false),
	})
	if risks := Scan(DefaultDetectors(), exp, time.Now()); len(risks) != 0 {
		t.Errorf("expected no risks, got %+v", risks)
	}
}
