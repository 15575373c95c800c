// Package tracking implements the experiment tracker on top of the
// persistence layer. Metrics and params are merged into the active run
// document on every call, so the stored run is always a complete audit trail
// up to the moment of a failure.
package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
)

// Tracker implements protocol.ExperimentTracker.
type Tracker struct {
	experiments persistence.ExperimentRepository
	logger      *slog.Logger

	// mu serializes read-modify-write cycles on run documents; stage
	// fan-out logs to the same run from multiple goroutines.
	mu sync.Mutex
}

// NewTracker creates a tracker backed by the given repository.
func NewTracker(experiments persistence.ExperimentRepository, logger *slog.Logger) *Tracker {
	return &Tracker{
		experiments: experiments,
		logger:      logger.With("module", "experiment_tracker"),
	}
}

// CreateExperiment persists a new experiment.
func (t *Tracker) CreateExperiment(ctx context.Context, name, description string, tags []string) (*models.Experiment, error) {
	experiment := &models.Experiment{
		ID:          "exp-" + uuid.New().String(),
		Name:        name,
		Description: description,
		Tags:        tags,
		CreatedAt:   time.Now().UTC(),
	}

	err := t.experiments.SaveExperiment(ctx, experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment %q: %w", name, err)
	}

	t.logger.InfoContext(ctx, "Created experiment", "experiment_id", experiment.ID, "name", name)

	return experiment, nil
}

// StartRun creates a running run attached to the experiment.
func (t *Tracker) StartRun(ctx context.Context, experimentID string) (*models.ExperimentRun, error) {
	experiment, err := t.experiments.GetExperiment(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	run := &models.ExperimentRun{
		ID:           "run-" + uuid.New().String(),
		ExperimentID: experimentID,
		Status:       models.RunStatusRunning,
		Params:       make(map[string]string),
		Metrics:      make(map[string]float64),
		StartedAt:    time.Now().UTC(),
	}

	err = t.experiments.SaveRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to start run for experiment %s: %w", experimentID, err)
	}

	experiment.RunIDs = append(experiment.RunIDs, run.ID)

	err = t.experiments.SaveExperiment(ctx, experiment)
	if err != nil {
		return nil, fmt.Errorf("failed to attach run %s to experiment %s: %w", run.ID, experimentID, err)
	}

	t.logger.InfoContext(ctx, "Started run", "run_id", run.ID, "experiment_id", experimentID)

	return run, nil
}

// EndRun transitions a run to a terminal status. Ending an already terminal
// run is an error: terminal statuses are absorbing.
func (t *Tracker) EndRun(ctx context.Context, runID string, status models.RunStatus, runErr error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, err := t.experiments.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	if run.Terminal() {
		return fmt.Errorf("run %s is already terminal (%s)", runID, run.Status)
	}

	now := time.Now().UTC()
	run.Status = status
	run.FinishedAt = &now
	run.Duration = now.Sub(run.StartedAt)

	if runErr != nil {
		run.Error = runErr.Error()
	}

	t.logger.InfoContext(ctx, "Ended run", "run_id", runID, "status", status, "duration", run.Duration)

	return t.experiments.SaveRun(ctx, run)
}

// LogMetrics merges metrics into the run document.
func (t *Tracker) LogMetrics(ctx context.Context, runID string, metrics map[string]float64) error {
	return t.updateRun(ctx, runID, fmt.Sprintf("logged %d metrics", len(metrics)), func(run *models.ExperimentRun) {
		if run.Metrics == nil {
			run.Metrics = make(map[string]float64, len(metrics))
		}

		for name, value := range metrics {
			run.Metrics[name] = value
		}
	})
}

// LogParams merges parameters into the run document.
func (t *Tracker) LogParams(ctx context.Context, runID string, params map[string]string) error {
	return t.updateRun(ctx, runID, fmt.Sprintf("logged %d params", len(params)), func(run *models.ExperimentRun) {
		if run.Params == nil {
			run.Params = make(map[string]string, len(params))
		}

		for name, value := range params {
			run.Params[name] = value
		}
	})
}

// LogArtifact appends an artifact to the run document.
func (t *Tracker) LogArtifact(ctx context.Context, runID string, artifact models.Artifact) error {
	return t.updateRun(ctx, runID, "logged artifact "+artifact.Name, func(run *models.ExperimentRun) {
		run.Artifacts = append(run.Artifacts, artifact)
	})
}

func (t *Tracker) updateRun(ctx context.Context, runID string, message string, apply func(*models.ExperimentRun)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, err := t.experiments.GetRun(ctx, runID)
	if err != nil {
		return err
	}

	if run.Terminal() {
		return fmt.Errorf("cannot log to terminal run %s (%s)", runID, run.Status)
	}

	apply(run)
	run.Logs = append(run.Logs, models.RunLogEntry{
		Timestamp: time.Now().UTC(),
		Message:   message,
	})

	return t.experiments.SaveRun(ctx, run)
}
