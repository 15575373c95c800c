// Package persistence provides the storage abstraction for pipelines,
// experiments, and experiment runs.
package persistence

import (
	"context"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// PipelineRepository stores pipeline aggregates. Save is an upsert; the
// stage list and nested results travel with the aggregate.
type PipelineRepository interface {
	List(ctx context.Context) ([]*models.Pipeline, error)
	GetByID(ctx context.Context, id string) (*models.Pipeline, error)
	Save(ctx context.Context, pipeline *models.Pipeline) error
	Delete(ctx context.Context, id string) error
}

// ExperimentRepository stores experiments and their runs.
type ExperimentRepository interface {
	SaveExperiment(ctx context.Context, experiment *models.Experiment) error
	GetExperiment(ctx context.Context, id string) (*models.Experiment, error)
	SaveRun(ctx context.Context, run *models.ExperimentRun) error
	GetRun(ctx context.Context, id string) (*models.ExperimentRun, error)
	RunsByExperiment(ctx context.Context, experimentID string) ([]*models.ExperimentRun, error)
}

// Persistence bundles the repositories behind one lifecycle.
type Persistence interface {
	Pipelines() PipelineRepository
	Experiments() ExperimentRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
