package risk

import (
	"fmt"
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// UnderpoweredDetector flags experiments approaching their planned sample
// with no significant arm, suggesting the true effect is below the MDE.
type UnderpoweredDetector struct{}

// NewUnderpoweredDetector creates an underpowered-test detector
func NewUnderpoweredDetector() *UnderpoweredDetector {
	return &UnderpoweredDetector{}
}

// Name returns the detector tag
func (d *UnderpoweredDetector) Name() intelligence.RiskType {
	return intelligence.RiskUnderpowered
}

// Detect fires past 80% progress when no variant reads significant
func (d *UnderpoweredDetector) Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk {
	progress := exp.Progress()
	if progress <= underpoweredProgressFloor || len(exp.Results) == 0 {
		return nil
	}

	for _, r := range exp.Results {
		if r.IsSignificant {
			return nil
		}
	}

	return &intelligence.Risk{
		Type:    d.Name(),
		Level:   intelligence.RiskMedium,
		Message: fmt.Sprintf("No significant difference at %.0f%% of the planned sample", progress*100),
		Details: fmt.Sprintf("the detectable effect may be smaller than the configured %.1f%% MDE",
			exp.Stats.MinimumDetectableEffect*100),
		Recommendation: "Consider a larger sample, a bigger change, or stopping for no effect",
	}
}
