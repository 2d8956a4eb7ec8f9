package stats

import (
	"golift/domain/core"
	"golift/ports"
)

// DefaultSimulations is the Monte-Carlo draw count when callers pass zero
const DefaultSimulations = 10000

// WinProbability holds per-arm Bayesian win probabilities.
// The two values sum to 1 up to Monte-Carlo noise.
type WinProbability struct {
	Control   float64 `json:"control"`
	Treatment float64 `json:"treatment"`
}

// BayesianEngine estimates win probabilities by simulating from
// Beta(conversions+1, n-conversions+1) posteriors for each arm.
type BayesianEngine struct {
	rng ports.RNG
}

// NewBayesianEngine creates an engine over a deterministic RNG source
func NewBayesianEngine(rng ports.RNG) *BayesianEngine {
	return &BayesianEngine{rng: rng}
}

// WinProbability draws the given number of independent samples from each
// posterior and counts which arm wins each draw. Zero simulations selects
// the default. The stream name ties draws to the experiment so repeated
// analyses reproduce identical results for the same seed.
func (e *BayesianEngine) WinProbability(stream string, seed int64,
	controlConversions, controlN, treatmentConversions, treatmentN, simulations int) (WinProbability, error) {

	if simulations == 0 {
		simulations = DefaultSimulations
	}
	if simulations < 0 {
		return WinProbability{}, core.NewInvalidArgumentError("simulations", simulations, "must be > 0")
	}
	if err := validateArm("control", controlConversions, controlN); err != nil {
		return WinProbability{}, err
	}
	if err := validateArm("treatment", treatmentConversions, treatmentN); err != nil {
		return WinProbability{}, err
	}

	sampler := NewSampler(e.rng.Stream(stream, seed))

	// Laplace prior: Beta(1, 1)
	controlAlpha := float64(controlConversions) + 1
	controlBeta := float64(controlN-controlConversions) + 1
	treatmentAlpha := float64(treatmentConversions) + 1
	treatmentBeta := float64(treatmentN-treatmentConversions) + 1

	treatmentWins := 0
	for i := 0; i < simulations; i++ {
		c := sampler.Beta(controlAlpha, controlBeta)
		t := sampler.Beta(treatmentAlpha, treatmentBeta)
		if t > c {
			treatmentWins++
		}
	}

	treatmentProb := float64(treatmentWins) / float64(simulations)
	return WinProbability{
		Control:   1 - treatmentProb,
		Treatment: treatmentProb,
	}, nil
}
