package protocol

import (
	"context"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// ExperimentTracker records runs, parameters, metrics, and artifacts for
// pipeline executions. Every stage transition flows through it, so the
// recorded run is the primary post-mortem artifact after a failure.
type ExperimentTracker interface {
	CreateExperiment(ctx context.Context, name, description string, tags []string) (*models.Experiment, error)
	StartRun(ctx context.Context, experimentID string) (*models.ExperimentRun, error)

	// EndRun transitions a run to a terminal status exactly once. runErr is
	// recorded when the status is failed or killed.
	EndRun(ctx context.Context, runID string, status models.RunStatus, runErr error) error

	LogMetrics(ctx context.Context, runID string, metrics map[string]float64) error
	LogParams(ctx context.Context, runID string, params map[string]string) error
	LogArtifact(ctx context.Context, runID string, artifact models.Artifact) error
}
