package risk

import (
	"fmt"
	"math"
	"time"

	"golift/adapters/stats"
	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// SampleRatioDetector flags traffic splits that deviate from the configured
// allocation, the classic signal of an assignment or instrumentation bug.
type SampleRatioDetector struct {
	dist *stats.Distributions
}

// NewSampleRatioDetector creates an SRM detector
func NewSampleRatioDetector() *SampleRatioDetector {
	return &SampleRatioDetector{dist: stats.NewDistributions()}
}

// Name returns the detector tag
func (d *SampleRatioDetector) Name() intelligence.RiskType {
	return intelligence.RiskSampleRatioMismatch
}

// Detect compares each variant's observed samples against the expectation
// from its traffic percentage. Any per-variant chi-square statistic above
// 3.84 (p < 0.05 at 1 df) raises the risk; relative deviation beyond 10%
// escalates severity to critical.
func (d *SampleRatioDetector) Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk {
	if len(exp.Results) < srmMinResults {
		return nil
	}
	total := exp.TotalSamples()
	if total < srmMinTotalSamples {
		return nil
	}

	worstChi := 0.0
	worstDeviation := 0.0
	var worstVariant experiment.Variant
	for _, v := range exp.Variants {
		result, ok := exp.ResultFor(v.ID)
		if !ok {
			continue
		}
		expected := float64(total) * v.TrafficPercent / 100
		if expected <= 0 {
			continue
		}
		observed := float64(result.SampleSize)
		chi := (observed - expected) * (observed - expected) / expected
		if chi > worstChi {
			worstChi = chi
			worstDeviation = math.Abs(observed-expected) / expected
			worstVariant = v
		}
	}

	if worstChi <= srmChiSquareCritical {
		return nil
	}

	level := intelligence.RiskHigh
	if worstDeviation > srmCriticalDeviation {
		level = intelligence.RiskCritical
	}

	return &intelligence.Risk{
		Type:  d.Name(),
		Level: level,
		Message: fmt.Sprintf("Sample ratio mismatch: %q deviates %.1f%% from its configured allocation",
			worstVariant.Name, worstDeviation*100),
		Details: fmt.Sprintf("chi-square %.2f (p = %.4f) against %.0f%% allocation",
			worstChi, d.dist.ChiSquarePValue(worstChi, 1), worstVariant.TrafficPercent),
		Recommendation: "Check assignment and event instrumentation before trusting any result",
	}
}
