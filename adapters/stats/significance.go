package stats

import (
	"math"

	"golift/domain/core"
)

// Winner identifies which arm a significance test favored
type Winner string

const (
	WinnerNone      Winner = "none"
	WinnerControl   Winner = "control"
	WinnerTreatment Winner = "treatment"
)

// SignificanceResult is the output of the two-proportion pooled z-test
type SignificanceResult struct {
	ControlRate        float64    `json:"control_rate"`
	TreatmentRate      float64    `json:"treatment_rate"`
	Improvement        float64    `json:"improvement"` // relative lift vs control
	ZScore             float64    `json:"z_score"`
	PValue             float64    `json:"p_value"`
	IsSignificant      bool       `json:"is_significant"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"` // CI for the rate difference
	Winner             Winner     `json:"winner"`
}

// AnalyzeResults runs a two-tailed, two-proportion pooled z-test. A zero
// significance level selects the default. The confidence interval covers
// the difference in rates, not either rate alone.
func AnalyzeResults(controlConversions, controlN, treatmentConversions, treatmentN int, significanceLevel float64) (SignificanceResult, error) {
	if significanceLevel == 0 {
		significanceLevel = DefaultSignificanceLevel
	}
	if err := validateArm("control", controlConversions, controlN); err != nil {
		return SignificanceResult{}, err
	}
	if err := validateArm("treatment", treatmentConversions, treatmentN); err != nil {
		return SignificanceResult{}, err
	}
	if significanceLevel <= 0 || significanceLevel >= 1 {
		return SignificanceResult{}, core.NewInvalidArgumentError("significance_level", significanceLevel, "must be in (0, 1)")
	}

	controlRate := float64(controlConversions) / float64(controlN)
	treatmentRate := float64(treatmentConversions) / float64(treatmentN)

	improvement := 0.0
	if controlRate > 0 {
		improvement = (treatmentRate - controlRate) / controlRate
	}

	pooled := float64(controlConversions+treatmentConversions) / float64(controlN+treatmentN)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(controlN) + 1/float64(treatmentN)))

	diff := treatmentRate - controlRate
	z := 0.0
	if se > 0 {
		z = diff / se
	}

	pValue := 2 * (1 - NormalCDF(math.Abs(z)))
	criticalZ := InverseNormalCDF(1 - significanceLevel/2)
	marginOfError := criticalZ * se

	isSignificant := pValue < significanceLevel
	winner := WinnerNone
	if isSignificant {
		if treatmentRate > controlRate {
			winner = WinnerTreatment
		} else {
			winner = WinnerControl
		}
	}

	return SignificanceResult{
		ControlRate:        controlRate,
		TreatmentRate:      treatmentRate,
		Improvement:        improvement,
		ZScore:             z,
		PValue:             pValue,
		IsSignificant:      isSignificant,
		ConfidenceInterval: [2]float64{diff - marginOfError, diff + marginOfError},
		Winner:             winner,
	}, nil
}

func validateArm(arm string, conversions, n int) error {
	if n <= 0 {
		return core.NewInvalidArgumentError(arm+"_n", n, "must be > 0")
	}
	if conversions < 0 {
		return core.NewInvalidArgumentError(arm+"_conversions", conversions, "must be >= 0")
	}
	if conversions > n {
		return core.NewInvalidArgumentError(arm+"_conversions", conversions, "cannot exceed sample size")
	}
	return nil
}
