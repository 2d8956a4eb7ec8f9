package stats

import (
	"math"
	"math/rand"
)

// Acklam rational approximation coefficients for the inverse normal CDF.
// Relative error below 1.15e-9 over the full open interval.
var (
	acklamA = [6]float64{
		-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00,
	}
	acklamB = [5]float64{
		-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01,
	}
	acklamC = [6]float64{
		-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00,
	}
	acklamD = [4]float64{
		7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00,
	}
)

// InverseNormalCDF computes the standard normal quantile (z-score) for a
// probability p in (0, 1). Out-of-range inputs return 0; callers needing
// strict validation must check bounds themselves.
func InverseNormalCDF(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}

	const pLow = 0.02425
	const pHigh = 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((acklamC[0]*q+acklamC[1])*q+acklamC[2])*q+acklamC[3])*q+acklamC[4])*q + acklamC[5]) /
			((((acklamD[0]*q+acklamD[1])*q+acklamD[2])*q+acklamD[3])*q + 1)
	case p > pHigh:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((acklamC[0]*q+acklamC[1])*q+acklamC[2])*q+acklamC[3])*q+acklamC[4])*q + acklamC[5]) /
			((((acklamD[0]*q+acklamD[1])*q+acklamD[2])*q+acklamD[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((acklamA[0]*r+acklamA[1])*r+acklamA[2])*r+acklamA[3])*r+acklamA[4])*r + acklamA[5]) * q /
			(((((acklamB[0]*r+acklamB[1])*r+acklamB[2])*r+acklamB[3])*r+acklamB[4])*r + 1)
	}
}

// NormalCDF computes the standard normal cumulative distribution using the
// Abramowitz and Stegun error-function approximation (formula 7.1.26),
// symmetric around zero.
func NormalCDF(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt2

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}

// Sampler draws from standard distributions using an injected generator,
// keeping every Monte-Carlo path reproducible under a fixed seed.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler over the given generator
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Normal draws a standard normal via Box-Muller from two uniform draws
func (s *Sampler) Normal() float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Gamma draws from Gamma(shape, 1) using Marsaglia-Tsang for shape >= 1.
// For shape < 1 the draw is boosted by one and rescaled by U^(1/shape).
// The rejection loop runs until acceptance; expected iterations are O(1).
func (s *Sampler) Gamma(shape float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		for u == 0 {
			u = s.rng.Float64()
		}
		return s.Gamma(shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		x := s.Normal()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if u > 0 && math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Beta draws from Beta(alpha, beta) as the ratio of two gamma draws
func (s *Sampler) Beta(alpha, beta float64) float64 {
	ga := s.Gamma(alpha)
	gb := s.Gamma(beta)
	return ga / (ga + gb)
}
