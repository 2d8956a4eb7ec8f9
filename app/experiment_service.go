package app

import (
	"context"
	"fmt"
	"math"

	"golift/adapters/stats"
	"golift/domain/core"
	"golift/domain/experiment"
	"golift/internal/errors"
	"golift/ports"
)

// ExperimentService owns the experiment lifecycle and the import step that
// attaches measured results. The statistical engines stay pure; everything
// stateful funnels through here.
type ExperimentService struct {
	repo     ports.ExperimentRepository
	importer ports.ResultImporter
	now      func() core.Timestamp
}

// NewExperimentService creates a lifecycle service
func NewExperimentService(repo ports.ExperimentRepository, importer ports.ResultImporter) *ExperimentService {
	return &ExperimentService{repo: repo, importer: importer, now: core.Now}
}

// Create validates and persists a draft experiment
func (s *ExperimentService) Create(ctx context.Context, name, hypothesis string,
	variants []experiment.Variant, metrics []experiment.Metric, cfg experiment.StatisticalConfig) (*experiment.Experiment, error) {

	exp, err := experiment.New(name, hypothesis, variants, metrics, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, errors.Wrap(err, "failed to persist experiment")
	}
	return exp, nil
}

// Start derives the required sample size from the statistical config and
// transitions the experiment to running.
func (s *ExperimentService) Start(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	size, err := stats.CalculateSampleSize(
		exp.Stats.BaselineRate,
		exp.Stats.MinimumDetectableEffect,
		exp.Stats.Power,
		exp.Stats.SignificanceLevel,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive sample size")
	}
	exp.RequiredSampleSize = size.Total

	if err := exp.Start(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, errors.Wrap(err, "failed to persist started experiment")
	}
	return exp, nil
}

// Pause suspends a running experiment
func (s *ExperimentService) Pause(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	return s.transition(ctx, id, func(exp *experiment.Experiment) error {
		return exp.Pause(s.now())
	})
}

// Complete ends an experiment with an optional winner and conclusion
func (s *ExperimentService) Complete(ctx context.Context, id core.ExperimentID, winner core.VariantID, conclusion string) (*experiment.Experiment, error) {
	return s.transition(ctx, id, func(exp *experiment.Experiment) error {
		return exp.Complete(winner, conclusion, s.now())
	})
}

// Archive retires an experiment in any state
func (s *ExperimentService) Archive(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	return s.transition(ctx, id, func(exp *experiment.Experiment) error {
		return exp.Archive(s.now())
	})
}

func (s *ExperimentService) transition(ctx context.Context, id core.ExperimentID, apply func(*experiment.Experiment) error) (*experiment.Experiment, error) {
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(exp); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, errors.Wrap(err, "failed to persist experiment")
	}
	return exp, nil
}

// ImportResults reads raw per-variant measurements from an export file,
// derives full result snapshots against the control and attaches them.
func (s *ExperimentService) ImportResults(ctx context.Context, id core.ExperimentID, path string) (*experiment.Experiment, error) {
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.importer.Import(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to import results")
	}

	results, err := BuildResults(exp, rows)
	if err != nil {
		return nil, err
	}
	if err := exp.AttachResults(results, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, exp); err != nil {
		return nil, errors.Wrap(err, "failed to persist results")
	}
	return exp, nil
}

// Relative detectable effect assumed for ad-hoc imports, where nobody ran
// a power calculation up front.
const defaultImportedMDE = 0.10

// ExperimentFromRows builds an ad-hoc experiment around a results export:
// one variant per row with an even traffic split. The control is the row
// named "control", falling back to the first row, and the baseline rate is
// the control's observed rate. Results are derived and attached, so the
// returned experiment is ready for analysis.
func ExperimentFromRows(name string, rows []ports.ResultRow) (*experiment.Experiment, error) {
	if len(rows) == 0 {
		return nil, core.NewValidationError("results", "export contains no rows")
	}

	controlIdx := 0
	for i, row := range rows {
		if row.VariantID == "control" {
			controlIdx = i
			break
		}
	}
	controlRow := rows[controlIdx]
	if controlRow.SampleSize <= 0 {
		return nil, core.NewInvalidArgumentError("control", controlRow.VariantID, "control row needs samples")
	}
	baseline := float64(controlRow.Conversions) / float64(controlRow.SampleSize)
	if baseline <= 0 || baseline >= 1 {
		return nil, core.NewInvalidArgumentError("baseline_rate", baseline,
			"control rate must be in (0, 1) to parameterize the experiment")
	}

	share := 100.0 / float64(len(rows))
	variants := make([]experiment.Variant, 0, len(rows))
	for i, row := range rows {
		variants = append(variants, experiment.Variant{
			ID:             row.VariantID,
			Name:           row.VariantID.String(),
			TrafficPercent: share,
			IsControl:      i == controlIdx,
		})
	}

	cfg := experiment.StatisticalConfig{
		BaselineRate:            baseline,
		MinimumDetectableEffect: defaultImportedMDE,
		Power:                   stats.DefaultPower,
		SignificanceLevel:       stats.DefaultSignificanceLevel,
	}
	exp, err := experiment.New(name, "", variants, nil, cfg)
	if err != nil {
		return nil, err
	}

	size, err := stats.CalculateSampleSize(baseline, defaultImportedMDE, cfg.Power, cfg.SignificanceLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive sample size")
	}
	exp.RequiredSampleSize = size.Total

	results, err := BuildResults(exp, rows)
	if err != nil {
		return nil, err
	}
	if err := exp.AttachResults(results, core.Now()); err != nil {
		return nil, err
	}
	return exp, nil
}

// BuildResults derives VariantResult snapshots from raw counts: conversion
// rates, per-variant confidence intervals, and improvement plus pooled
// z-test significance for every non-control arm against the control.
func BuildResults(exp *experiment.Experiment, rows []ports.ResultRow) ([]experiment.VariantResult, error) {
	control, ok := exp.Control()
	if !ok {
		return nil, core.ErrNoControl
	}

	var controlRow *ports.ResultRow
	for i := range rows {
		if rows[i].VariantID == control.ID {
			controlRow = &rows[i]
			break
		}
	}
	if controlRow == nil {
		return nil, fmt.Errorf("%w: no result row for control %s", core.ErrResultNotFound, control.ID)
	}

	sig := exp.Stats.SignificanceLevel
	if sig == 0 {
		sig = stats.DefaultSignificanceLevel
	}

	results := make([]experiment.VariantResult, 0, len(rows))
	for _, row := range rows {
		result := experiment.VariantResult{
			VariantID:   row.VariantID,
			SampleSize:  row.SampleSize,
			Conversions: row.Conversions,
			Revenue:     row.Revenue,
		}
		if row.SampleSize > 0 {
			result.ConversionRate = float64(row.Conversions) / float64(row.SampleSize)
			result.AvgRevenue = row.Revenue / float64(row.SampleSize)
			result.ConfidenceInterval = waldInterval(result.ConversionRate, row.SampleSize, sig)
		}

		if row.VariantID != control.ID && row.SampleSize > 0 && controlRow.SampleSize > 0 {
			outcome, err := stats.AnalyzeResults(
				controlRow.Conversions, controlRow.SampleSize,
				row.Conversions, row.SampleSize, sig)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to analyze variant %s", row.VariantID)
			}
			result.Improvement = outcome.Improvement
			result.PValue = outcome.PValue
			result.IsSignificant = outcome.IsSignificant
		} else if row.VariantID == control.ID {
			result.PValue = 1
		}

		results = append(results, result)
	}
	return results, nil
}

// waldInterval is the normal-approximation interval around a single rate
func waldInterval(rate float64, n int, significanceLevel float64) [2]float64 {
	z := stats.InverseNormalCDF(1 - significanceLevel/2)
	margin := z * math.Sqrt(rate*(1-rate)/float64(n))
	return [2]float64{rate - margin, rate + margin}
}
