package ports

import (
	"context"

	"golift/domain/core"
	"golift/domain/experiment"
)

// ExperimentRepository persists experiment aggregates. The statistical
// engines never call it; only the application services do.
type ExperimentRepository interface {
	Save(ctx context.Context, exp *experiment.Experiment) error
	Get(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error)
	List(ctx context.Context) ([]*experiment.Experiment, error)
	ListByStatus(ctx context.Context, status experiment.Status) ([]*experiment.Experiment, error)
	Delete(ctx context.Context, id core.ExperimentID) error
}
