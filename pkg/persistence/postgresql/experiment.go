package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
)

// ExperimentRepository handles experiment and run database operations.
type ExperimentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExperimentRepository creates a new experiment repository.
func NewExperimentRepository(db *sql.DB, logger *slog.Logger) *ExperimentRepository {
	return &ExperimentRepository{db: db, logger: logger}
}

// SaveExperiment upserts one experiment row.
func (r *ExperimentRepository) SaveExperiment(ctx context.Context, experiment *models.Experiment) error {
	tagsJSON, err := json.Marshal(experiment.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment tags: %w", err)
	}

	runIDsJSON, err := json.Marshal(experiment.RunIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment run ids: %w", err)
	}

	query := `
		INSERT INTO experiments (id, name, description, tags, pipeline_id, run_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , tags = EXCLUDED.tags
		  , pipeline_id = EXCLUDED.pipeline_id
		  , run_ids = EXCLUDED.run_ids
	`

	_, err = r.db.ExecContext(ctx, query,
		experiment.ID,
		experiment.Name,
		experiment.Description,
		tagsJSON,
		experiment.PipelineID,
		runIDsJSON,
		experiment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save experiment %s: %w", experiment.ID, err)
	}

	return nil
}

// GetExperiment returns one experiment by id.
func (r *ExperimentRepository) GetExperiment(ctx context.Context, id string) (*models.Experiment, error) {
	query := `
		SELECT id, name, description, tags, pipeline_id, run_ids, created_at
		FROM experiments
		WHERE id = $1
	`

	var (
		experiment models.Experiment
		tagsJSON   []byte
		runIDsJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&experiment.ID,
		&experiment.Name,
		&experiment.Description,
		&tagsJSON,
		&experiment.PipelineID,
		&runIDsJSON,
		&experiment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("experiment %s: %w", id, persistence.ErrExperimentNotFound)
		}

		return nil, fmt.Errorf("failed to query experiment %s: %w", id, err)
	}

	if err := json.Unmarshal(tagsJSON, &experiment.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experiment tags: %w", err)
	}

	if err := json.Unmarshal(runIDsJSON, &experiment.RunIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experiment run ids: %w", err)
	}

	return &experiment, nil
}

// SaveRun upserts one run row.
func (r *ExperimentRepository) SaveRun(ctx context.Context, run *models.ExperimentRun) error {
	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal run params: %w", err)
	}

	metricsJSON, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal run metrics: %w", err)
	}

	artifactsJSON, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal run artifacts: %w", err)
	}

	logsJSON, err := json.Marshal(run.Logs)
	if err != nil {
		return fmt.Errorf("failed to marshal run logs: %w", err)
	}

	query := `
		INSERT INTO experiment_runs (id, experiment_id, status, params, metrics, artifacts, logs, error, started_at, finished_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status
		  , params = EXCLUDED.params
		  , metrics = EXCLUDED.metrics
		  , artifacts = EXCLUDED.artifacts
		  , logs = EXCLUDED.logs
		  , error = EXCLUDED.error
		  , finished_at = EXCLUDED.finished_at
		  , duration_ms = EXCLUDED.duration_ms
	`

	_, err = r.db.ExecContext(ctx, query,
		run.ID,
		run.ExperimentID,
		run.Status,
		paramsJSON,
		metricsJSON,
		artifactsJSON,
		logsJSON,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

// GetRun returns one run by id.
func (r *ExperimentRepository) GetRun(ctx context.Context, id string) (*models.ExperimentRun, error) {
	query := `
		SELECT id, experiment_id, status, params, metrics, artifacts, logs, error, started_at, finished_at, duration_ms
		FROM experiment_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, persistence.ErrRunNotFound)
		}

		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	return run, nil
}

// RunsByExperiment returns all runs of one experiment, oldest first.
func (r *ExperimentRepository) RunsByExperiment(ctx context.Context, experimentID string) ([]*models.ExperimentRun, error) {
	query := `
		SELECT id, experiment_id, status, params, metrics, artifacts, logs, error, started_at, finished_at, duration_ms
		FROM experiment_runs
		WHERE experiment_id = $1
		ORDER BY started_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for experiment %s: %w", experimentID, err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	runs := make([]*models.ExperimentRun, 0)

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		runs = append(runs, run)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

func scanRun(row rowScanner) (*models.ExperimentRun, error) {
	var (
		run           models.ExperimentRun
		paramsJSON    []byte
		metricsJSON   []byte
		artifactsJSON []byte
		logsJSON      []byte
		finishedAt    sql.NullTime
		durationMs    int64
	)

	err := row.Scan(
		&run.ID,
		&run.ExperimentID,
		&run.Status,
		&paramsJSON,
		&metricsJSON,
		&artifactsJSON,
		&logsJSON,
		&run.Error,
		&run.StartedAt,
		&finishedAt,
		&durationMs,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(paramsJSON, &run.Params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run params: %w", err)
	}

	if err := json.Unmarshal(metricsJSON, &run.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run metrics: %w", err)
	}

	if err := json.Unmarshal(artifactsJSON, &run.Artifacts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run artifacts: %w", err)
	}

	if err := json.Unmarshal(logsJSON, &run.Logs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run logs: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond

	return &run, nil
}
