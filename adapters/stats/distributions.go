package stats

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides exact distribution lookups for reporting contexts
// where the fast approximations in this package are not required.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// ChiSquarePValue computes the upper-tail p-value for a chi-square statistic
func (d *Distributions) ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || chiSquare < 0 {
		return 1.0
	}
	dist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return 1 - dist.CDF(chiSquare)
}

// ExactNormalCDF is the gonum standard normal CDF, used as the gold
// standard the fast approximation is tested against.
func (d *Distributions) ExactNormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// ExactNormalQuantile is the gonum standard normal quantile
func (d *Distributions) ExactNormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}
