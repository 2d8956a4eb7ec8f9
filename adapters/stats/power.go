package stats

import (
	"math"

	"golift/domain/core"
)

// Default statistical parameters used when callers pass zero values
const (
	DefaultPower             = 0.8
	DefaultSignificanceLevel = 0.05
)

// SampleSize is the output of the two-proportion power calculation
type SampleSize struct {
	PerVariant int `json:"per_variant"`
	Total      int `json:"total"`
}

// CalculateSampleSize computes the per-variant sample requirement for a
// two-proportion test. The minimum detectable effect is relative to the
// baseline rate. Zero power or significance select the defaults.
//
// Monotonic properties: smaller MDE, higher power or stricter significance
// all increase the requirement.
func CalculateSampleSize(baselineRate, relativeMDE, power, significanceLevel float64) (SampleSize, error) {
	if power == 0 {
		power = DefaultPower
	}
	if significanceLevel == 0 {
		significanceLevel = DefaultSignificanceLevel
	}

	if baselineRate <= 0 || baselineRate >= 1 {
		return SampleSize{}, core.NewInvalidArgumentError("baseline_rate", baselineRate, "must be in (0, 1)")
	}
	if relativeMDE <= 0 {
		return SampleSize{}, core.NewInvalidArgumentError("relative_mde", relativeMDE, "must be > 0")
	}
	if power <= 0 || power >= 1 {
		return SampleSize{}, core.NewInvalidArgumentError("power", power, "must be in (0, 1)")
	}
	if significanceLevel <= 0 || significanceLevel >= 1 {
		return SampleSize{}, core.NewInvalidArgumentError("significance_level", significanceLevel, "must be in (0, 1)")
	}

	zAlpha := InverseNormalCDF(1 - significanceLevel/2)
	zBeta := InverseNormalCDF(power)

	treatmentRate := baselineRate * (1 + relativeMDE)
	pooled := (baselineRate + treatmentRate) / 2
	pooledStdErr := math.Sqrt(2 * pooled * (1 - pooled))
	effectSize := math.Abs(treatmentRate - baselineRate)

	perVariant := int(math.Ceil(2 * math.Pow((zAlpha+zBeta)*pooledStdErr/effectSize, 2)))
	return SampleSize{PerVariant: perVariant, Total: perVariant * 2}, nil
}

// EstimateDuration returns the whole days needed to collect the required
// sample at the given daily traffic and allocation percentage.
func EstimateDuration(requiredSampleSize int, dailyTraffic int, trafficAllocationPercent float64) (int, error) {
	if trafficAllocationPercent == 0 {
		trafficAllocationPercent = 100
	}
	if requiredSampleSize <= 0 {
		return 0, core.NewInvalidArgumentError("required_sample_size", requiredSampleSize, "must be > 0")
	}
	if dailyTraffic <= 0 {
		return 0, core.NewInvalidArgumentError("daily_traffic", dailyTraffic, "must be > 0")
	}
	if trafficAllocationPercent < 0 || trafficAllocationPercent > 100 {
		return 0, core.NewInvalidArgumentError("traffic_allocation_percent", trafficAllocationPercent, "must be in (0, 100]")
	}

	perDay := float64(dailyTraffic) * trafficAllocationPercent / 100
	return int(math.Ceil(float64(requiredSampleSize) / perDay)), nil
}
