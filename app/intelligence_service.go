package app

import (
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
	"golift/internal/insight"
	"golift/internal/risk"
)

// IntelligenceService runs the full per-experiment analysis: risk scan,
// insights, recommendation, health score and data-quality flags. Pure over
// the snapshot; the clock is injectable for deterministic tests.
type IntelligenceService struct {
	detectors []risk.Detector
	now       func() time.Time
}

// NewIntelligenceService creates a service with the default detector battery
func NewIntelligenceService() *IntelligenceService {
	return &IntelligenceService{
		detectors: risk.DefaultDetectors(),
		now:       time.Now,
	}
}

// WithClock overrides the time source
func (s *IntelligenceService) WithClock(now func() time.Time) *IntelligenceService {
	s.now = now
	return s
}

// Analyze produces the intelligence bundle for one experiment snapshot
func (s *IntelligenceService) Analyze(exp *experiment.Experiment) intelligence.Intelligence {
	now := s.now()

	risks := risk.Scan(s.detectors, exp, now)
	insights := insight.Generate(exp)
	recommendation := insight.Recommend(exp, risks)

	return intelligence.Intelligence{
		ExperimentID:   exp.ID,
		Risks:          risks,
		Insights:       insights,
		Recommendation: recommendation,
		HealthScore:    healthScore(risks),
		DataQuality: intelligence.DataQuality{
			SampleRatioOK:    !hasRiskType(risks, intelligence.RiskSampleRatioMismatch),
			SufficientSample: exp.Progress() >= 1,
			ResultsPresent:   len(exp.Results) > 0,
		},
	}
}

// healthScore starts at 100 and subtracts a per-severity penalty for each
// risk, floored at zero.
func healthScore(risks []intelligence.Risk) int {
	score := 100
	for _, r := range risks {
		score -= r.Level.Penalty()
	}
	if score < 0 {
		score = 0
	}
	return score
}

func hasRiskType(risks []intelligence.Risk, t intelligence.RiskType) bool {
	for _, r := range risks {
		if r.Type == t {
			return true
		}
	}
	return false
}
