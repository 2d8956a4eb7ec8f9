package risk

import (
	"fmt"
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// NoveltyDetector flags significance that appears within the first week of
// a run, when user curiosity about a change can inflate early effects.
type NoveltyDetector struct{}

// NewNoveltyDetector creates a novelty-effect detector
func NewNoveltyDetector() *NoveltyDetector {
	return &NoveltyDetector{}
}

// Name returns the detector tag
func (d *NoveltyDetector) Name() intelligence.RiskType {
	return intelligence.RiskNoveltyEffect
}

// Detect fires when any result reads significant inside the 7-day novelty
// window. Inside the first 3 days the severity is high, otherwise medium.
func (d *NoveltyDetector) Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk {
	days := exp.RunningDays(now)
	if days < 0 || days >= noveltyWindowDays {
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
	if days < noveltyAcuteDays {
		level = intelligence.RiskHigh
	}

	return &intelligence.Risk{
		Type:    d.Name(),
		Level:   level,
		Message: fmt.Sprintf("Significant result after only %.1f days may be a novelty effect", days),
		Details: fmt.Sprintf("experiment started %s; effects often decay after the first week",
			exp.StartDate.Time().Format("2006-01-02")),
		Recommendation: "Let the experiment run past the first week before acting on this result",
	}
}
