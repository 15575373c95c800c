package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
)

// PipelineRepository handles pipeline database operations. Nested aggregate
// parts (config, stages, progress, results) are stored as JSONB documents so
// the row always carries a consistent snapshot of the whole aggregate.
type PipelineRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPipelineRepository creates a new pipeline repository.
func NewPipelineRepository(db *sql.DB, logger *slog.Logger) *PipelineRepository {
	return &PipelineRepository{db: db, logger: logger}
}

const pipelineColumns = `
	id
  , name
  , status
  , config
  , stages
  , progress
  , results
  , experiment_ids
  , created_at
  , updated_at
`

// List returns all pipelines, newest first.
func (r *PipelineRepository) List(ctx context.Context) ([]*models.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipelines: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	pipelines := make([]*models.Pipeline, 0)

	for rows.Next() {
		pipeline, err := scanPipeline(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}

		pipelines = append(pipelines, pipeline)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating pipelines: %w", err)
	}

	return pipelines, nil
}

// GetByID returns one pipeline aggregate.
func (r *PipelineRepository) GetByID(ctx context.Context, id string) (*models.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE id = $1`

	pipeline, err := scanPipeline(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewPipelineError("GetByID", id, persistence.ErrPipelineNotFound)
		}

		return nil, persistence.NewPipelineError("GetByID", id, err)
	}

	return pipeline, nil
}

// Save upserts the pipeline aggregate.
func (r *PipelineRepository) Save(ctx context.Context, pipeline *models.Pipeline) error {
	configJSON, err := json.Marshal(pipeline.Config)
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	stagesJSON, err := json.Marshal(pipeline.Stages)
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	progressJSON, err := json.Marshal(pipeline.Progress)
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	var resultsJSON []byte
	if pipeline.Results != nil {
		resultsJSON, err = json.Marshal(pipeline.Results)
		if err != nil {
			return persistence.NewPipelineError("Save", pipeline.ID, err)
		}
	}

	experimentIDsJSON, err := json.Marshal(pipeline.ExperimentIDs)
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	query := `
		INSERT INTO pipelines (id, name, status, config, stages, progress, results, experiment_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , status = EXCLUDED.status
		  , config = EXCLUDED.config
		  , stages = EXCLUDED.stages
		  , progress = EXCLUDED.progress
		  , results = EXCLUDED.results
		  , experiment_ids = EXCLUDED.experiment_ids
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		pipeline.ID,
		pipeline.Name,
		pipeline.Status,
		configJSON,
		stagesJSON,
		progressJSON,
		nullableJSON(resultsJSON),
		experimentIDsJSON,
		pipeline.CreatedAt,
		pipeline.UpdatedAt,
	)
	if err != nil {
		return persistence.NewPipelineError("Save", pipeline.ID, err)
	}

	return nil
}

// Delete removes the pipeline row.
func (r *PipelineRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	if err != nil {
		return persistence.NewPipelineError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewPipelineError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewPipelineError("Delete", id, persistence.ErrPipelineNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPipeline(row rowScanner) (*models.Pipeline, error) {
	var (
		pipeline          models.Pipeline
		configJSON        []byte
		stagesJSON        []byte
		progressJSON      []byte
		resultsJSON       sql.Null[[]byte]
		experimentIDsJSON []byte
	)

	err := row.Scan(
		&pipeline.ID,
		&pipeline.Name,
		&pipeline.Status,
		&configJSON,
		&stagesJSON,
		&progressJSON,
		&resultsJSON,
		&experimentIDsJSON,
		&pipeline.CreatedAt,
		&pipeline.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(configJSON, &pipeline.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := json.Unmarshal(stagesJSON, &pipeline.Stages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stages: %w", err)
	}

	if err := json.Unmarshal(progressJSON, &pipeline.Progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}

	if resultsJSON.Valid && len(resultsJSON.V) > 0 {
		if err := json.Unmarshal(resultsJSON.V, &pipeline.Results); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	if len(experimentIDsJSON) > 0 {
		if err := json.Unmarshal(experimentIDsJSON, &pipeline.ExperimentIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experiment ids: %w", err)
		}
	}

	return &pipeline, nil
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}

	return data
}
