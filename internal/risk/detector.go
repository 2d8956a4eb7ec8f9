package risk

import (
	"time"

	"golift/domain/experiment"
	"golift/domain/intelligence"
)

// Detector is the contract every risk rule satisfies. A detector examines
// one experiment snapshot and returns at most one risk. Detectors are
// independent, order-insensitive and side-effect-free.
type Detector interface {
	Name() intelligence.RiskType
	Detect(exp *experiment.Experiment, now time.Time) *intelligence.Risk
}

// Thresholds shared across detectors
const (
	// SRM
	srmMinResults        = 2
	srmMinTotalSamples   = 100
	srmChiSquareCritical = 3.84 // p < 0.05 at 1 df
	srmCriticalDeviation = 0.10 // relative deviation escalating to critical

	// Novelty
	noveltyWindowDays = 7
	noveltyAcuteDays  = 3

	// Peeking
	peekingProgressCeiling = 0.5
	peekingAcuteProgress   = 0.25

	// Underpowered
	underpoweredProgressFloor = 0.8

	// Metric quality
	implausiblyHighRate = 0.9
	implausiblyLowRate  = 0.001
	highVarianceCIRatio = 0.5
)

// DefaultDetectors returns the full detector battery
func DefaultDetectors() []Detector {
	return []Detector{
		NewSampleRatioDetector(),
		NewNoveltyDetector(),
		NewPeekingDetector(),
		NewUnderpoweredDetector(),
		NewMetricQualityDetector(),
	}
}

// Scan runs every detector against the snapshot and collects non-nil risks
func Scan(detectors []Detector, exp *experiment.Experiment, now time.Time) []intelligence.Risk {
	risks := make([]intelligence.Risk, 0, len(detectors))
	for _, d := range detectors {
		if r := d.Detect(exp, now); r != nil {
			risks = append(risks, *r)
		}
	}
	return risks
}
