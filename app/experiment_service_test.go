package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golift/domain/core"
	"golift/domain/experiment"
	"golift/ports"
)

// memoryRepo is an in-memory ports.ExperimentRepository for service tests
type memoryRepo struct {
	items map[core.ExperimentID]*experiment.Experiment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[core.ExperimentID]*experiment.Experiment)}
}

func (r *memoryRepo) Save(ctx context.Context, exp *experiment.Experiment) error {
	r.items[exp.ID] = exp
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	exp, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrExperimentNotFound, id)
	}
	return exp, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]*experiment.Experiment, error) {
	out := make([]*experiment.Experiment, 0, len(r.items))
	for _, exp := range r.items {
		out = append(out, exp)
	}
	return out, nil
}

func (r *memoryRepo) ListByStatus(ctx context.Context, status experiment.Status) ([]*experiment.Experiment, error) {
	var out []*experiment.Experiment
	for _, exp := range r.items {
		if exp.Status == status {
			out = append(out, exp)
		}
	}
	return out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id core.ExperimentID) error {
	delete(r.items, id)
	return nil
}

var _ ports.ExperimentRepository = (*memoryRepo)(nil)

// stubImporter returns canned rows regardless of path
type stubImporter struct {
	rows []ports.ResultRow
	err  error
}

func (s *stubImporter) Import(path string) ([]ports.ResultRow, error) {
	return s.rows, s.err
}

func defaultVariants() []experiment.Variant {
	return []experiment.Variant{
		{ID: "control", Name: "Control", TrafficPercent: 50, IsControl: true},
		{ID: "treatment", Name: "Treatment", TrafficPercent: 50},
	}
}

func defaultConfig() experiment.StatisticalConfig {
	return experiment.StatisticalConfig{
		BaselineRate:            0.10,
		MinimumDetectableEffect: 0.20,
		Power:                   0.8,
		SignificanceLevel:       0.05,
	}
}

func TestExperimentService_CreateAndStart(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewExperimentService(repo, &stubImporter{})
	ctx := context.Background()

	exp, err := svc.Create(ctx, "cta-test", "bigger button converts",
		defaultVariants(), []experiment.Metric{{Key: "click", Name: "Click", IsPrimary: true}}, defaultConfig())
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusDraft, exp.Status)
	assert.Zero(t, exp.RequiredSampleSize)

	started, err := svc.Start(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusRunning, started.Status)
	assert.False(t, started.StartDate.IsZero())
	assert.Positive(t, started.RequiredSampleSize, "starting must derive the required sample size")

	persisted, err := repo.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusRunning, persisted.Status)
}

func TestExperimentService_CreateRejectsBadVariants(t *testing.T) {
	svc := NewExperimentService(newMemoryRepo(), &stubImporter{})

	noControl := []experiment.Variant{
		{ID: "a", Name: "A", TrafficPercent: 50},
		{ID: "b", Name: "B", TrafficPercent: 50},
	}
	_, err := svc.Create(context.Background(), "bad", "", noControl, nil, defaultConfig())
	assert.ErrorIs(t, err, core.ErrNoControl)
}

func TestExperimentService_Lifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewExperimentService(repo, &stubImporter{})
	ctx := context.Background()

	exp, err := svc.Create(ctx, "lifecycle", "", defaultVariants(), nil, defaultConfig())
	require.NoError(t, err)

	_, err = svc.Start(ctx, exp.ID)
	require.NoError(t, err)

	paused, err := svc.Pause(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusPaused, paused.Status)

	// pausing a paused experiment is an invalid transition
	_, err = svc.Pause(ctx, exp.ID)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	completed, err := svc.Complete(ctx, exp.ID, "treatment", "shipped the treatment")
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusCompleted, completed.Status)
	assert.Equal(t, core.VariantID("treatment"), completed.Winner)
	assert.False(t, completed.EndDate.IsZero())

	archived, err := svc.Archive(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, experiment.StatusArchived, archived.Status)
}

func TestExperimentService_CompleteRejectsUnknownWinner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewExperimentService(repo, &stubImporter{})
	ctx := context.Background()

	exp, err := svc.Create(ctx, "unknown-winner", "", defaultVariants(), nil, defaultConfig())
	require.NoError(t, err)
	_, err = svc.Start(ctx, exp.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, exp.ID, "nonexistent", "")
	assert.ErrorIs(t, err, core.ErrVariantNotFound)
}

func TestExperimentService_ImportResults(t *testing.T) {
	repo := newMemoryRepo()
	importer := &stubImporter{rows: []ports.ResultRow{
		{VariantID: "control", SampleSize: 1000, Conversions: 100, Revenue: 4000},
		{VariantID: "treatment", SampleSize: 1000, Conversions: 150, Revenue: 6300},
	}}
	svc := NewExperimentService(repo, importer)
	ctx := context.Background()

	exp, err := svc.Create(ctx, "import-test", "", defaultVariants(), nil, defaultConfig())
	require.NoError(t, err)
	_, err = svc.Start(ctx, exp.ID)
	require.NoError(t, err)

	updated, err := svc.ImportResults(ctx, exp.ID, "results.csv")
	require.NoError(t, err)
	require.Len(t, updated.Results, 2)

	control, ok := updated.ControlResult()
	require.True(t, ok)
	assert.InDelta(t, 0.10, control.ConversionRate, 1e-9)
	assert.InDelta(t, 4.0, control.AvgRevenue, 1e-9)
	assert.Equal(t, 1.0, control.PValue)
	assert.Zero(t, control.Improvement)

	treatment, ok := updated.ResultFor("treatment")
	require.True(t, ok)
	assert.InDelta(t, 0.15, treatment.ConversionRate, 1e-9)
	assert.InDelta(t, 0.5, treatment.Improvement, 1e-9)
	assert.True(t, treatment.IsSignificant, "a fifty percent lift on 1000 per arm is significant")
	assert.Less(t, treatment.ConfidenceInterval[0], treatment.ConversionRate)
	assert.Greater(t, treatment.ConfidenceInterval[1], treatment.ConversionRate)
}

func TestExperimentService_ImportUnknownVariant(t *testing.T) {
	repo := newMemoryRepo()
	importer := &stubImporter{rows: []ports.ResultRow{
		{VariantID: "control", SampleSize: 1000, Conversions: 100},
		{VariantID: "mystery", SampleSize: 1000, Conversions: 100},
	}}
	svc := NewExperimentService(repo, importer)
	ctx := context.Background()

	exp, err := svc.Create(ctx, "unknown-variant", "", defaultVariants(), nil, defaultConfig())
	require.NoError(t, err)

	_, err = svc.ImportResults(ctx, exp.ID, "results.csv")
	assert.ErrorIs(t, err, core.ErrVariantNotFound)
}

func TestExperimentFromRows(t *testing.T) {
	rows := []ports.ResultRow{
		{VariantID: "treatment", SampleSize: 1000, Conversions: 150, Revenue: 6300},
		{VariantID: "control", SampleSize: 1000, Conversions: 100, Revenue: 4000},
	}

	exp, err := ExperimentFromRows("pricing-export", rows)
	require.NoError(t, err)
	assert.Equal(t, "pricing-export", exp.Name)
	assert.Positive(t, exp.RequiredSampleSize)

	// the row named "control" is the control even when it is not first
	control, ok := exp.Control()
	require.True(t, ok)
	assert.Equal(t, core.VariantID("control"), control.ID)
	assert.InDelta(t, 0.10, exp.Stats.BaselineRate, 1e-9)

	require.Len(t, exp.Results, 2)
	treatment, ok := exp.ResultFor("treatment")
	require.True(t, ok)
	assert.InDelta(t, 0.5, treatment.Improvement, 1e-9)
	assert.True(t, treatment.IsSignificant)
}

func TestExperimentFromRows_FirstRowFallback(t *testing.T) {
	rows := []ports.ResultRow{
		{VariantID: "original", SampleSize: 500, Conversions: 50},
		{VariantID: "redesign", SampleSize: 500, Conversions: 60},
	}

	exp, err := ExperimentFromRows("no-control-name", rows)
	require.NoError(t, err)

	control, ok := exp.Control()
	require.True(t, ok)
	assert.Equal(t, core.VariantID("original"), control.ID)
}

func TestExperimentFromRows_RejectsBadExports(t *testing.T) {
	cases := []struct {
		name string
		rows []ports.ResultRow
	}{
		{"empty export", nil},
		{"control without samples", []ports.ResultRow{
			{VariantID: "control", SampleSize: 0, Conversions: 0},
			{VariantID: "treatment", SampleSize: 100, Conversions: 10},
		}},
		{"control never converts", []ports.ResultRow{
			{VariantID: "control", SampleSize: 100, Conversions: 0},
			{VariantID: "treatment", SampleSize: 100, Conversions: 10},
		}},
		{"control always converts", []ports.ResultRow{
			{VariantID: "control", SampleSize: 100, Conversions: 100},
			{VariantID: "treatment", SampleSize: 100, Conversions: 10},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExperimentFromRows("bad", tc.rows)
			assert.Error(t, err)
		})
	}
}

func TestBuildResults_RequiresControlRow(t *testing.T) {
	exp := experiment.MustNew("no-control-row", "", defaultVariants(), nil, defaultConfig())
	rows := []ports.ResultRow{
		{VariantID: "treatment", SampleSize: 1000, Conversions: 100},
	}
	_, err := BuildResults(exp, rows)
	assert.ErrorIs(t, err, core.ErrResultNotFound)
}
