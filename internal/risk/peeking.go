package risk

import (
	"fmt"
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// PeekingDetector flags significance calls made well before the planned
// sample size, where repeated looks inflate the false-positive rate.
type PeekingDetector struct{}

// NewPeekingDetector creates a peeking detector
func NewPeekingDetector() *PeekingDetector {
	return &PeekingDetector{}
}

// Name returns the detector tag
func (d *PeekingDetector) Name() intelligence.RiskType {
	return intelligence.RiskPeeking
}

// Detect fires when a variant already reads significant at under 50% of
// the required sample; under 25% the severity is high.
func (d *PeekingDetector) Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk {
	progress := exp.Progress()
	if progress <= 0 || progress >= peekingProgressCeiling {
		return nil
	}

	significant := false
	for _, r := range exp.Results {
		if r.IsSignificant {
			significant = true
			break
		}
	}
	if !significant {
		return nil
	}

	level := intelligence.RiskMedium
	if progress < peekingAcuteProgress {
		level = intelligence.RiskHigh
	}

	return &intelligence.Risk{
		Type:    d.Name(),
		Level:   level,
		Message: fmt.Sprintf("Significance observed at %.0f%% of the planned sample", progress*100),
		Details: fmt.Sprintf("%d of %d required samples collected; early significance is often spurious",
			exp.TotalSamples(), exp.RequiredSampleSize),
		Recommendation: "Wait for the planned sample size before declaring a winner",
	}
}
