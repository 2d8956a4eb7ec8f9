package experiment

import (
	"fmt"
	"math"
	"time"

	"golift/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Status represents the experiment lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// IsActive reports whether the experiment is collecting traffic
func (s Status) IsActive() bool {
	return s == StatusRunning || s == StatusPaused
}

// IsTerminal reports whether the experiment can no longer transition
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}

// Variant is one arm of an experiment.
// Immutable by convention once the experiment is running.
type Variant struct {
	ID             core.VariantID `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	TrafficPercent float64        `json:"traffic_percent"` // 0-100
	IsControl      bool           `json:"is_control"`
}

// Metric identifies a tracked experiment metric
type Metric struct {
	Key       core.MetricKey `json:"key"`
	Name      string         `json:"name"`
	IsPrimary bool           `json:"is_primary"`
}

// StatisticalConfig holds the parameters the sample size was derived from
// INVARIANTS:
// - BaselineRate in (0, 1)
// - MinimumDetectableEffect > 0 (relative lift)
// - Power and SignificanceLevel in (0, 1)
type StatisticalConfig struct {
	BaselineRate            float64 `json:"baseline_rate"`
	MinimumDetectableEffect float64 `json:"minimum_detectable_effect"`
	Power                   float64 `json:"power"`
	SignificanceLevel       float64 `json:"significance_level"`
}

// VariantResult is a per-variant measurement snapshot. Results are attached
// by an external import/simulation step; the engine only reads them.
type VariantResult struct {
	VariantID          core.VariantID `json:"variant_id"`
	SampleSize         int            `json:"sample_size"`
	Conversions        int            `json:"conversions"`
	ConversionRate     float64        `json:"conversion_rate"`
	Revenue            float64        `json:"revenue"`
	AvgRevenue         float64        `json:"avg_revenue"`
	ConfidenceInterval [2]float64     `json:"confidence_interval"`
	Improvement        float64        `json:"improvement"` // relative vs control; 0 for control
	PValue             float64        `json:"p_value"`
	IsSignificant      bool           `json:"is_significant"`
}

// CIWidth returns the width of the result's confidence interval
func (r VariantResult) CIWidth() float64 {
	return r.ConfidenceInterval[1] - r.ConfidenceInterval[0]
}

// Experiment is the aggregate the engine analyzes. Borrowed by value by all
// engines; none of them mutate it.
type Experiment struct {
	ID                 core.ExperimentID `json:"id"`
	Name               string            `json:"name"`
	Hypothesis         string            `json:"hypothesis"`
	Status             Status            `json:"status"`
	Variants           []Variant         `json:"variants"`
	Metrics            []Metric          `json:"metrics"`
	TargetingPercent   float64           `json:"targeting_percent"` // share of eligible traffic enrolled
	StartDate          core.Timestamp    `json:"start_date,omitempty"`
	EndDate            core.Timestamp    `json:"end_date,omitempty"`
	Stats              StatisticalConfig `json:"stats"`
	RequiredSampleSize int               `json:"required_sample_size"` // total across variants
	Results            []VariantResult   `json:"results,omitempty"`
	Winner             core.VariantID    `json:"winner,omitempty"`
	Conclusion         string            `json:"conclusion,omitempty"`
	CreatedAt          core.Timestamp    `json:"created_at"`
	UpdatedAt          core.Timestamp    `json:"updated_at"`
}

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// New creates a draft experiment, validating structural invariants:
// exactly one control variant and traffic percentages summing to 100.
func New(name, hypothesis string, variants []Variant, metrics []Metric, cfg StatisticalConfig) (*Experiment, error) {
	if name == "" {
		return nil, core.NewValidationError("name", "cannot be empty")
	}
	if err := validateVariants(variants); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	now := core.Now()
	return &Experiment{
		ID:               core.ExperimentID(core.NewID()),
		Name:             name,
		Hypothesis:       hypothesis,
		Status:           StatusDraft,
		Variants:         variants,
		Metrics:          metrics,
		TargetingPercent: 100,
		Stats:            cfg,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// MustNew creates an experiment (panics on invalid input).
// Use only in tests and fixtures.
func MustNew(name, hypothesis string, variants []Variant, metrics []Metric, cfg StatisticalConfig) *Experiment {
	exp, err := New(name, hypothesis, variants, metrics, cfg)
	if err != nil {
		panic(err)
	}
	return exp
}

// Validate checks the statistical configuration ranges
func (c StatisticalConfig) Validate() error {
	if c.BaselineRate <= 0 || c.BaselineRate >= 1 {
		return core.NewInvalidArgumentError("baseline_rate", c.BaselineRate, "must be in (0, 1)")
	}
	if c.MinimumDetectableEffect <= 0 {
		return core.NewInvalidArgumentError("minimum_detectable_effect", c.MinimumDetectableEffect, "must be > 0")
	}
	if c.Power <= 0 || c.Power >= 1 {
		return core.NewInvalidArgumentError("power", c.Power, "must be in (0, 1)")
	}
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return core.NewInvalidArgumentError("significance_level", c.SignificanceLevel, "must be in (0, 1)")
	}
	return nil
}

func validateVariants(variants []Variant) error {
	if len(variants) < 2 {
		return core.NewValidationError("variants", "at least two variants required")
	}
	controls := 0
	trafficSum := 0.0
	seen := make(map[core.VariantID]bool, len(variants))
	for _, v := range variants {
		if v.ID.IsEmpty() {
			return core.NewValidationError("variants", "variant ID cannot be empty")
		}
		if seen[v.ID] {
			return core.NewValidationError("variants", fmt.Sprintf("duplicate variant id %s", v.ID))
		}
		seen[v.ID] = true
		if v.TrafficPercent < 0 || v.TrafficPercent > 100 {
			return core.NewInvalidArgumentError("traffic_percent", v.TrafficPercent, "must be in [0, 100]")
		}
		if v.IsControl {
			controls++
		}
		trafficSum += v.TrafficPercent
	}
	if controls != 1 {
		return core.ErrNoControl
	}
	if math.Abs(trafficSum-100) > 0.01 {
		return fmt.Errorf("%w: got %.2f", core.ErrTrafficSplit, trafficSum)
	}
	return nil
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Control returns the control variant
func (e *Experiment) Control() (Variant, bool) {
	for _, v := range e.Variants {
		if v.IsControl {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantByID looks up a variant by id
func (e *Experiment) VariantByID(id core.VariantID) (Variant, bool) {
	for _, v := range e.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// ResultFor returns the result snapshot for a variant, if present
func (e *Experiment) ResultFor(id core.VariantID) (VariantResult, bool) {
	for _, r := range e.Results {
		if r.VariantID == id {
			return r, true
		}
	}
	return VariantResult{}, false
}

// ControlResult returns the control variant's result, if present
func (e *Experiment) ControlResult() (VariantResult, bool) {
	control, ok := e.Control()
	if !ok {
		return VariantResult{}, false
	}
	return e.ResultFor(control.ID)
}

// TotalSamples sums sample sizes across all attached results
func (e *Experiment) TotalSamples() int {
	total := 0
	for _, r := range e.Results {
		total += r.SampleSize
	}
	return total
}

// Progress is total collected samples over the required total.
// Returns 0 when no sample size requirement has been derived yet.
func (e *Experiment) Progress() float64 {
	if e.RequiredSampleSize <= 0 {
		return 0
	}
	return float64(e.TotalSamples()) / float64(e.RequiredSampleSize)
}

// RunningDays returns fractional days since the experiment started.
// Returns -1 when the experiment has not started.
func (e *Experiment) RunningDays(now time.Time) float64 {
	if e.StartDate.IsZero() {
		return -1
	}
	return e.StartDate.DaysSince(now)
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Start transitions draft -> running and stamps the start date.
// RequiredSampleSize must be derived before starting.
func (e *Experiment) Start(at core.Timestamp) error {
	if e.Status != StatusDraft && e.Status != StatusPaused {
		return core.NewTransitionError(string(e.Status), string(StatusRunning))
	}
	if e.Status == StatusDraft {
		e.StartDate = at
	}
	e.Status = StatusRunning
	e.UpdatedAt = at
	return nil
}

// Pause transitions running -> paused
func (e *Experiment) Pause(at core.Timestamp) error {
	if e.Status != StatusRunning {
		return core.NewTransitionError(string(e.Status), string(StatusPaused))
	}
	e.Status = StatusPaused
	e.UpdatedAt = at
	return nil
}

// Complete ends the experiment, optionally declaring a winner.
// A declared winner must reference a known variant.
func (e *Experiment) Complete(winner core.VariantID, conclusion string, at core.Timestamp) error {
	if e.Status != StatusRunning && e.Status != StatusPaused {
		return core.NewTransitionError(string(e.Status), string(StatusCompleted))
	}
	if !winner.IsEmpty() {
		if _, ok := e.VariantByID(winner); !ok {
			return fmt.Errorf("%w: %s", core.ErrVariantNotFound, winner)
		}
	}
	e.Status = StatusCompleted
	e.Winner = winner
	e.Conclusion = conclusion
	e.EndDate = at
	e.UpdatedAt = at
	return nil
}

// Archive transitions any non-archived state to archived
func (e *Experiment) Archive(at core.Timestamp) error {
	if e.Status == StatusArchived {
		return core.NewTransitionError(string(e.Status), string(StatusArchived))
	}
	if e.EndDate.IsZero() {
		e.EndDate = at
	}
	e.Status = StatusArchived
	e.UpdatedAt = at
	return nil
}

// AttachResults replaces the experiment's result snapshots.
// Every row must reference a known variant; one row per variant at most.
func (e *Experiment) AttachResults(results []VariantResult, at core.Timestamp) error {
	seen := make(map[core.VariantID]bool, len(results))
	for _, r := range results {
		if _, ok := e.VariantByID(r.VariantID); !ok {
			return fmt.Errorf("%w: %s", core.ErrVariantNotFound, r.VariantID)
		}
		if seen[r.VariantID] {
			return core.NewValidationError("results", fmt.Sprintf("duplicate result for variant %s", r.VariantID))
		}
		seen[r.VariantID] = true
		if r.SampleSize < 0 || r.Conversions < 0 || r.Conversions > r.SampleSize {
			return core.NewInvalidArgumentError("results", r.VariantID,
				fmt.Sprintf("inconsistent counts: %d conversions of %d samples", r.Conversions, r.SampleSize))
		}
	}
	e.Results = results
	e.UpdatedAt = at
	return nil
}
