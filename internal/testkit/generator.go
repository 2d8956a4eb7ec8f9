package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"golift/app"
	"golift/domain/core"
	"golift/domain/experiment"
	"golift/ports"
)

// Generator builds seeded synthetic experiments for tests and demos.
// The same seed always produces the same experiment, including results.
type Generator struct {
	rng  *rand.Rand
	seed int64
}

// NewGenerator creates a generator with a fixed seed
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), seed: seed}
}

// Scenario names supported by Build
const (
	ScenarioClearWinner = "clear_winner"
	ScenarioNullEffect  = "null_effect"
	ScenarioSRM         = "srm"
	ScenarioEarlyPeek   = "early_peek"
)

// Build creates a synthetic experiment for the named scenario
func (g *Generator) Build(scenario string, now time.Time) (*experiment.Experiment, error) {
	switch scenario {
	case ScenarioClearWinner:
		return g.clearWinner(now)
	case ScenarioNullEffect:
		return g.nullEffect(now)
	case ScenarioSRM:
		return g.sampleRatioMismatch(now)
	case ScenarioEarlyPeek:
		return g.earlyPeek(now)
	default:
		return nil, fmt.Errorf("unknown scenario %q", scenario)
	}
}

// Scenarios lists the supported scenario names
func Scenarios() []string {
	return []string{ScenarioClearWinner, ScenarioNullEffect, ScenarioSRM, ScenarioEarlyPeek}
}

// clearWinner: treatment converts well above control, full sample collected
func (g *Generator) clearWinner(now time.Time) (*experiment.Experiment, error) {
	exp, err := g.base("Onboarding rework", "Shorter onboarding increases day-1 conversion")
	if err != nil {
		return nil, err
	}
	exp.RequiredSampleSize = 10000
	if err := exp.Start(core.NewTimestamp(now.AddDate(0, 0, -21))); err != nil {
		return nil, err
	}
	return exp, g.attachBinomial(exp, now, 5200, 0.10, 5100, 0.13)
}

// nullEffect: both arms convert at the same rate, full sample collected
func (g *Generator) nullEffect(now time.Time) (*experiment.Experiment, error) {
	exp, err := g.base("Store badge color", "A brighter badge nudges more store visits")
	if err != nil {
		return nil, err
	}
	exp.RequiredSampleSize = 10000
	if err := exp.Start(core.NewTimestamp(now.AddDate(0, 0, -30))); err != nil {
		return nil, err
	}
	return exp, g.attachBinomial(exp, now, 5100, 0.10, 5050, 0.10)
}

// sampleRatioMismatch: configured 50/50 but traffic lands 90/10
func (g *Generator) sampleRatioMismatch(now time.Time) (*experiment.Experiment, error) {
	exp, err := g.base("Price anchor test", "Showing the bundle first lifts purchases")
	if err != nil {
		return nil, err
	}
	exp.RequiredSampleSize = 4000
	if err := exp.Start(core.NewTimestamp(now.AddDate(0, 0, -14))); err != nil {
		return nil, err
	}
	return exp, g.attachBinomial(exp, now, 1800, 0.10, 200, 0.11)
}

// earlyPeek: significant-looking lift at under a quarter of the sample
func (g *Generator) earlyPeek(now time.Time) (*experiment.Experiment, error) {
	exp, err := g.base("Reward doubling", "Doubling daily rewards lifts retention")
	if err != nil {
		return nil, err
	}
	exp.RequiredSampleSize = 20000
	if err := exp.Start(core.NewTimestamp(now.AddDate(0, 0, -10))); err != nil {
		return nil, err
	}
	return exp, g.attachBinomial(exp, now, 2000, 0.10, 2000, 0.14)
}

func (g *Generator) base(name, hypothesis string) (*experiment.Experiment, error) {
	variants := []experiment.Variant{
		{ID: "control", Name: "Control", TrafficPercent: 50, IsControl: true},
		{ID: "treatment", Name: "Treatment", TrafficPercent: 50},
	}
	metrics := []experiment.Metric{
		{Key: "conversion", Name: "Conversion", IsPrimary: true},
		{Key: "revenue", Name: "Revenue per user"},
	}
	cfg := experiment.StatisticalConfig{
		BaselineRate:            0.10,
		MinimumDetectableEffect: 0.10,
		Power:                   0.8,
		SignificanceLevel:       0.05,
	}
	return experiment.New(name, hypothesis, variants, metrics, cfg)
}

// attachBinomial draws conversions from seeded binomials and builds full
// result snapshots through the same path production imports use.
func (g *Generator) attachBinomial(exp *experiment.Experiment, now time.Time,
	controlN int, controlRate float64, treatmentN int, treatmentRate float64) error {

	rows := []ports.ResultRow{
		{
			VariantID:   "control",
			SampleSize:  controlN,
			Conversions: g.binomial(controlN, controlRate),
			Revenue:     g.revenue(controlN, controlRate),
		},
		{
			VariantID:   "treatment",
			SampleSize:  treatmentN,
			Conversions: g.binomial(treatmentN, treatmentRate),
			Revenue:     g.revenue(treatmentN, treatmentRate),
		},
	}

	results, err := app.BuildResults(exp, rows)
	if err != nil {
		return err
	}
	return exp.AttachResults(results, core.NewTimestamp(now))
}

func (g *Generator) binomial(n int, p float64) int {
	count := 0
	for i := 0; i < n; i++ {
		if g.rng.Float64() < p {
			count++
		}
	}
	return count
}

// revenue simulates per-converter spend around $4 with mild noise
func (g *Generator) revenue(n int, rate float64) float64 {
	total := 0.0
	converters := int(float64(n) * rate)
	for i := 0; i < converters; i++ {
		total += 3.0 + 2.0*g.rng.Float64()
	}
	return total
}
