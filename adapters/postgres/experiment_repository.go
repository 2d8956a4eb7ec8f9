package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"golift/domain/core"
	"golift/domain/experiment"
	"golift/ports"
)

// ExperimentRepositoryImpl implements ExperimentRepository for PostgreSQL.
// Variant, metric and result collections are stored as JSONB.
type ExperimentRepositoryImpl struct {
	db *sqlx.DB
}

// NewExperimentRepository creates a new PostgreSQL experiment repository
func NewExperimentRepository(db *sqlx.DB) ports.ExperimentRepository {
	return &ExperimentRepositoryImpl{db: db}
}

// EnsureSchema creates the experiments table when it does not exist
func (r *ExperimentRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS experiments (
			id                   UUID PRIMARY KEY,
			name                 TEXT NOT NULL,
			hypothesis           TEXT NOT NULL DEFAULT '',
			status               TEXT NOT NULL,
			variants             JSONB NOT NULL,
			metrics              JSONB NOT NULL DEFAULT '[]',
			targeting_percent    DOUBLE PRECISION NOT NULL DEFAULT 100,
			start_date           TIMESTAMPTZ,
			end_date             TIMESTAMPTZ,
			baseline_rate        DOUBLE PRECISION NOT NULL,
			mde                  DOUBLE PRECISION NOT NULL,
			power                DOUBLE PRECISION NOT NULL,
			significance_level   DOUBLE PRECISION NOT NULL,
			required_sample_size INTEGER NOT NULL DEFAULT 0,
			results              JSONB,
			winner               TEXT NOT NULL DEFAULT '',
			conclusion           TEXT NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL,
			updated_at           TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_experiments_status ON experiments (status)`)
	return err
}

// Save upserts an experiment aggregate
func (r *ExperimentRepositoryImpl) Save(ctx context.Context, exp *experiment.Experiment) error {
	variantsJSON, err := json.Marshal(exp.Variants)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}
	metricsJSON, err := json.Marshal(exp.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	var resultsJSON []byte
	if exp.Results != nil {
		if resultsJSON, err = json.Marshal(exp.Results); err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO experiments (
			id, name, hypothesis, status, variants, metrics, targeting_percent,
			start_date, end_date, baseline_rate, mde, power, significance_level,
			required_sample_size, results, winner, conclusion, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			hypothesis = EXCLUDED.hypothesis,
			status = EXCLUDED.status,
			variants = EXCLUDED.variants,
			metrics = EXCLUDED.metrics,
			targeting_percent = EXCLUDED.targeting_percent,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			baseline_rate = EXCLUDED.baseline_rate,
			mde = EXCLUDED.mde,
			power = EXCLUDED.power,
			significance_level = EXCLUDED.significance_level,
			required_sample_size = EXCLUDED.required_sample_size,
			results = EXCLUDED.results,
			winner = EXCLUDED.winner,
			conclusion = EXCLUDED.conclusion,
			updated_at = EXCLUDED.updated_at`,
		exp.ID.String(), exp.Name, exp.Hypothesis, string(exp.Status),
		variantsJSON, metricsJSON, exp.TargetingPercent,
		nullableTime(exp.StartDate), nullableTime(exp.EndDate),
		exp.Stats.BaselineRate, exp.Stats.MinimumDetectableEffect,
		exp.Stats.Power, exp.Stats.SignificanceLevel,
		exp.RequiredSampleSize, resultsJSON, exp.Winner.String(), exp.Conclusion,
		exp.CreatedAt.Time(), exp.UpdatedAt.Time())
	return err
}

// Get loads one experiment by id
func (r *ExperimentRepositoryImpl) Get(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	row := r.db.QueryRowxContext(ctx, `
		SELECT id, name, hypothesis, status, variants, metrics, targeting_percent,
			start_date, end_date, baseline_rate, mde, power, significance_level,
			required_sample_size, results, winner, conclusion, created_at, updated_at
		FROM experiments WHERE id = $1`, id.String())

	exp, err := scanExperiment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("experiment", id.String())
	}
	return exp, err
}

// List loads all experiments ordered by creation time
func (r *ExperimentRepositoryImpl) List(ctx context.Context) ([]*experiment.Experiment, error) {
	return r.list(ctx, `
		SELECT id, name, hypothesis, status, variants, metrics, targeting_percent,
			start_date, end_date, baseline_rate, mde, power, significance_level,
			required_sample_size, results, winner, conclusion, created_at, updated_at
		FROM experiments ORDER BY created_at DESC`)
}

// ListByStatus loads experiments in one lifecycle state
func (r *ExperimentRepositoryImpl) ListByStatus(ctx context.Context, status experiment.Status) ([]*experiment.Experiment, error) {
	return r.list(ctx, `
		SELECT id, name, hypothesis, status, variants, metrics, targeting_percent,
			start_date, end_date, baseline_rate, mde, power, significance_level,
			required_sample_size, results, winner, conclusion, created_at, updated_at
		FROM experiments WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

// Delete removes an experiment
func (r *ExperimentRepositoryImpl) Delete(ctx context.Context, id core.ExperimentID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewNotFoundError("experiment", id.String())
	}
	return nil
}

func (r *ExperimentRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]*experiment.Experiment, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exps []*experiment.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExperiment(row rowScanner) (*experiment.Experiment, error) {
	var (
		exp          experiment.Experiment
		id           string
		status       string
		winner       string
		variantsJSON []byte
		metricsJSON  []byte
		resultsJSON  []byte
		startDate    sql.NullTime
		endDate      sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &exp.Name, &exp.Hypothesis, &status,
		&variantsJSON, &metricsJSON, &exp.TargetingPercent,
		&startDate, &endDate,
		&exp.Stats.BaselineRate, &exp.Stats.MinimumDetectableEffect,
		&exp.Stats.Power, &exp.Stats.SignificanceLevel,
		&exp.RequiredSampleSize, &resultsJSON, &winner, &exp.Conclusion,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	exp.ID = core.ExperimentID(id)
	exp.Status = experiment.Status(status)
	exp.Winner = core.VariantID(winner)
	exp.CreatedAt = core.NewTimestamp(createdAt)
	exp.UpdatedAt = core.NewTimestamp(updatedAt)
	if startDate.Valid {
		exp.StartDate = core.NewTimestamp(startDate.Time)
	}
	if endDate.Valid {
		exp.EndDate = core.NewTimestamp(endDate.Time)
	}

	if err := json.Unmarshal(variantsJSON, &exp.Variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	if err := json.Unmarshal(metricsJSON, &exp.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &exp.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return &exp, nil
}

func nullableTime(t core.Timestamp) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Time()
}
