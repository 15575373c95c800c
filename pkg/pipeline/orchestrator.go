package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gchahal1982/G3DAI-sub009/pkg/eventbus"
	"github.com/gchahal1982/G3DAI-sub009/pkg/events"
	"github.com/gchahal1982/G3DAI-sub009/pkg/locking"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/otelhelper"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

// Collaborators bundles the stage collaborator ports. All are required
// except Deployer, which is only consulted when a best model exists and a
// deployment target is configured.
type Collaborators struct {
	Data        protocol.DataProcessor
	Features    protocol.FeatureEngineer
	Selector    protocol.ModelSelector
	Tuner       protocol.HyperparameterTuner
	Evaluator   protocol.ModelEvaluator
	Validator   protocol.ModelValidator
	Interpreter protocol.InterpretabilityEngine
	Deployer    protocol.DeploymentManager
}

func (c Collaborators) validate() error {
	switch {
	case c.Data == nil:
		return errors.New("data processor collaborator is required")
	case c.Features == nil:
		return errors.New("feature engineer collaborator is required")
	case c.Selector == nil:
		return errors.New("model selector collaborator is required")
	case c.Tuner == nil:
		return errors.New("hyperparameter tuner collaborator is required")
	case c.Evaluator == nil:
		return errors.New("model evaluator collaborator is required")
	case c.Validator == nil:
		return errors.New("model validator collaborator is required")
	case c.Interpreter == nil:
		return errors.New("interpretability engine collaborator is required")
	default:
		return nil
	}
}

// Config tunes orchestrator behavior.
type Config struct {
	// MaxParallelModels caps the per-stage fan-out over models. Defaults to 4.
	MaxParallelModels int

	// PipelineTimeout bounds one whole execution. Zero means no deadline.
	PipelineTimeout time.Duration
}

const defaultMaxParallelModels = 4

// Orchestrator owns pipeline creation and execution. All collaborators are
// injected; the orchestrator itself carries no ML logic.
type Orchestrator struct {
	persistence   persistence.Persistence
	tracker       protocol.ExperimentTracker
	collaborators Collaborators
	locks         locking.ExecutionLock
	eventBus      eventbus.EventBus
	tracer        trace.Tracer
	logger        *slog.Logger
	validate      *validator.Validate
	config        Config
}

// NewOrchestrator wires an orchestrator. eventBus and tracer may be nil, in
// which case event publishing and tracing are disabled. A nil lock falls
// back to a process-local one.
func NewOrchestrator(
	store persistence.Persistence,
	tracker protocol.ExperimentTracker,
	collaborators Collaborators,
	locks locking.ExecutionLock,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
	config Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("persistence is required")
	}

	if tracker == nil {
		return nil, errors.New("experiment tracker is required")
	}

	if err := collaborators.validate(); err != nil {
		return nil, err
	}

	if locks == nil {
		locks = locking.NewMemoryLock()
	}

	if logger == nil {
		logger = slog.Default()
	}

	if config.MaxParallelModels <= 0 {
		config.MaxParallelModels = defaultMaxParallelModels
	}

	return &Orchestrator{
		persistence:   store,
		tracker:       tracker,
		collaborators: collaborators,
		locks:         locks,
		eventBus:      eventBus,
		tracer:        tracer,
		logger:        logger.With("module", "automl_orchestrator"),
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		config:        config,
	}, nil
}

// CreateMLPipeline builds and persists a pipeline with ten pending stages
// and an associated experiment. No stage work happens here.
func (o *Orchestrator) CreateMLPipeline(ctx context.Context, dataset *models.Dataset, config models.ProblemConfig) (*models.Pipeline, error) {
	if err := o.validate.Struct(dataset); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	if err := config.Validate(o.validate); err != nil {
		return nil, err
	}

	pipeline := models.NewPipeline(fmt.Sprintf("%s-automl", dataset.Name), config)

	experimentName := fmt.Sprintf("%s-%s", dataset.Name, time.Now().UTC().Format("20060102-150405"))
	description := fmt.Sprintf("AutoML %s on dataset %s", config.ProblemType, dataset.Name)

	experiment, err := o.tracker.CreateExperiment(ctx, experimentName, description, []string{"automl", "pipeline:" + pipeline.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment for pipeline %s: %w", pipeline.ID, err)
	}

	pipeline.ExperimentIDs = append(pipeline.ExperimentIDs, experiment.ID)

	err = o.persistence.Pipelines().Save(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "Created pipeline",
		"pipeline_id", pipeline.ID,
		"experiment_id", experiment.ID,
		"problem_type", config.ProblemType,
	)

	o.publish(ctx, pipeline.ID, events.PipelineCreated{
		BaseEvent:    o.baseEvent(events.PipelineCreatedEvent, pipeline.ID),
		Name:         pipeline.Name,
		ExperimentID: experiment.ID,
	})

	return pipeline, nil
}

// Pipeline returns one pipeline aggregate for polling and inspection.
func (o *Orchestrator) Pipeline(ctx context.Context, pipelineID string) (*models.Pipeline, error) {
	return o.persistence.Pipelines().GetByID(ctx, pipelineID)
}

// ExecutePipeline runs the ten stages strictly in sequence. The first stage
// failure aborts the execution: the failing stage and the pipeline are
// marked failed, the experiment run ends failed, and the stage error is
// returned. On success the assembled results are attached to the pipeline
// and returned.
func (o *Orchestrator) ExecutePipeline(ctx context.Context, pipelineID string, dataset *models.Dataset) (*models.PipelineResults, error) {
	release, err := o.locks.Acquire(ctx, pipelineID)
	if err != nil {
		if errors.Is(err, locking.ErrAlreadyLocked) {
			return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrPipelineBusy)
		}

		return nil, err
	}
	defer release()

	pipeline, err := o.persistence.Pipelines().GetByID(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	if pipeline.IsTerminal() {
		return nil, fmt.Errorf("pipeline %s is %s: %w", pipelineID, pipeline.Status, ErrPipelineFinished)
	}

	if pipeline.Status == models.PipelineStatusRunning {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrPipelineBusy)
	}

	if o.config.PipelineTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.config.PipelineTimeout)
		defer cancel()
	}

	if len(pipeline.ExperimentIDs) == 0 {
		return nil, fmt.Errorf("pipeline %s has no experiment", pipelineID)
	}

	experimentID := pipeline.ExperimentIDs[len(pipeline.ExperimentIDs)-1]

	run, err := o.tracker.StartRun(ctx, experimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to start experiment run: %w", err)
	}

	if err := pipeline.MarkRunning(); err != nil {
		return nil, err
	}

	if err := o.persistence.Pipelines().Save(ctx, pipeline); err != nil {
		return nil, err
	}

	logger := o.logger.With("pipeline_id", pipeline.ID, "run_id", run.ID)
	logger.InfoContext(ctx, "Starting pipeline execution", "dataset", dataset.Name)

	ctx, span := o.startSpan(ctx, "pipeline.execute",
		attribute.String(otelhelper.PipelineIDKey, pipeline.ID),
		attribute.String(otelhelper.RunIDKey, run.ID),
	)
	defer span.End()

	o.publish(ctx, pipeline.ID, events.ExecutionStarted{
		BaseEvent: o.baseEvent(events.ExecutionStartedEvent, pipeline.ID),
		RunID:     run.ID,
	})

	startedAt := time.Now().UTC()
	ex := &execution{
		pipeline: pipeline,
		dataset:  dataset,
		runID:    run.ID,
		logger:   logger,
	}

	for _, stage := range pipeline.Stages {
		if ctx.Err() != nil {
			return nil, o.cancelExecution(pipeline, ex, startedAt, ctx.Err())
		}

		err := o.runStage(ctx, ex, stage)
		if err != nil {
			// A cancellation surfacing through a collaborator is still a
			// cancellation, not a stage failure.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, o.cancelExecution(pipeline, ex, startedAt, err)
			}

			return nil, o.failExecution(ctx, pipeline, ex, stage, startedAt, err)
		}
	}

	results := ex.results

	if err := pipeline.MarkCompleted(results); err != nil {
		return nil, err
	}

	if err := o.persistence.Pipelines().Save(ctx, pipeline); err != nil {
		return nil, err
	}

	if err := o.tracker.EndRun(ctx, run.ID, models.RunStatusCompleted, nil); err != nil {
		return nil, fmt.Errorf("failed to end experiment run %s: %w", run.ID, err)
	}

	bestModel := ""
	if results.BestModel != nil {
		bestModel = results.BestModel.Algorithm
	}

	logger.InfoContext(ctx, "Pipeline execution completed",
		"duration", time.Since(startedAt),
		"best_model", bestModel,
		"leaderboard_size", len(results.Leaderboard),
	)

	o.publish(ctx, pipeline.ID, events.ExecutionCompleted{
		BaseEvent: o.baseEvent(events.ExecutionCompletedEvent, pipeline.ID),
		RunID:     ex.runID,
		Duration:  time.Since(startedAt),
		BestModel: bestModel,
	})

	return results, nil
}

// runStage drives one stage through its transitions. Skips decided by
// configuration never invoke the collaborator.
func (o *Orchestrator) runStage(ctx context.Context, ex *execution, stage *models.Stage) error {
	logger := ex.logger.With("stage", stage.Type)

	if err := stage.Start(); err != nil {
		return err
	}

	ex.pipeline.RefreshProgress()

	if err := o.persistence.Pipelines().Save(ctx, ex.pipeline); err != nil {
		return err
	}

	o.publish(ctx, ex.pipeline.ID, events.StageStarted{
		BaseEvent: o.baseEvent(events.StageStartedEvent, ex.pipeline.ID),
		RunID:     ex.runID,
		Stage:     stage.Type,
	})

	ctx, span := o.startSpan(ctx, "pipeline.stage."+string(stage.Type),
		attribute.String(otelhelper.PipelineIDKey, ex.pipeline.ID),
		attribute.String(otelhelper.StageKey, string(stage.Type)),
	)
	defer span.End()

	logger.InfoContext(ctx, "Executing stage")

	output, skipped, err := o.dispatchStage(ctx, ex, stage.Type)
	if err != nil {
		otelhelper.SetError(span, err)

		return newStageError(stage.Type, err)
	}

	if skipped {
		if err := stage.Skip(output); err != nil {
			return err
		}

		logger.InfoContext(ctx, "Stage skipped by configuration")
	} else {
		if err := stage.Complete(output); err != nil {
			return err
		}

		logger.InfoContext(ctx, "Stage completed", "duration", stage.Duration)
	}

	ex.pipeline.RefreshProgress()

	if err := o.persistence.Pipelines().Save(ctx, ex.pipeline); err != nil {
		return err
	}

	o.publish(ctx, ex.pipeline.ID, events.StageFinished{
		BaseEvent: o.baseEvent(events.StageFinishedEvent, ex.pipeline.ID),
		RunID:     ex.runID,
		Stage:     stage.Type,
		Status:    stage.Status,
		Duration:  stage.Duration,
	})

	return nil
}

// failExecution records a stage failure on the stage, the pipeline, and the
// experiment run, then returns the stage error for the caller.
func (o *Orchestrator) failExecution(ctx context.Context, pipeline *models.Pipeline, ex *execution, stage *models.Stage, startedAt time.Time, err error) error {
	// Only collaborator failures arrive as StageError; anything else is an
	// orchestrator-side failure and must not carry ML-domain suggestions.
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		stageErr = newInternalError(stage.Type, err)
	}

	if stage.Status == models.StageStatusRunning {
		stage.Fail(stageErr.Record())
	}

	if markErr := pipeline.MarkFailed(); markErr != nil {
		ex.logger.ErrorContext(ctx, "Failed to mark pipeline failed", "error", markErr)
	}

	if saveErr := o.persistence.Pipelines().Save(ctx, pipeline); saveErr != nil {
		ex.logger.ErrorContext(ctx, "Failed to persist failed pipeline", "error", saveErr)
	}

	if endErr := o.tracker.EndRun(ctx, ex.runID, models.RunStatusFailed, stageErr); endErr != nil {
		ex.logger.ErrorContext(ctx, "Failed to end experiment run", "error", endErr)
	}

	ex.logger.ErrorContext(ctx, "Pipeline execution failed",
		"stage", stage.Type,
		"error", stageErr.Message,
	)

	o.publish(ctx, pipeline.ID, events.StageFinished{
		BaseEvent: o.baseEvent(events.StageFinishedEvent, pipeline.ID),
		RunID:     ex.runID,
		Stage:     stage.Type,
		Status:    stage.Status,
		Duration:  stage.Duration,
		Error:     stageErr.Message,
	})
	o.publish(ctx, pipeline.ID, events.ExecutionFailed{
		BaseEvent: o.baseEvent(events.ExecutionFailedEvent, pipeline.ID),
		RunID:     ex.runID,
		Stage:     stage.Type,
		Error:     stageErr.Message,
		Duration:  time.Since(startedAt),
	})

	return stageErr
}

// cancelExecution handles a context cancellation between stages.
func (o *Orchestrator) cancelExecution(pipeline *models.Pipeline, ex *execution, startedAt time.Time, cause error) error {
	// The execution context is gone; bookkeeping uses a short fresh one.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pipeline.MarkCancelled(); err != nil {
		ex.logger.ErrorContext(ctx, "Failed to mark pipeline cancelled", "error", err)
	}

	if err := o.persistence.Pipelines().Save(ctx, pipeline); err != nil {
		ex.logger.ErrorContext(ctx, "Failed to persist cancelled pipeline", "error", err)
	}

	if err := o.tracker.EndRun(ctx, ex.runID, models.RunStatusKilled, cause); err != nil {
		ex.logger.ErrorContext(ctx, "Failed to end experiment run", "error", err)
	}

	ex.logger.InfoContext(ctx, "Pipeline execution cancelled", "duration", time.Since(startedAt))

	return fmt.Errorf("pipeline %s cancelled: %w", pipeline.ID, cause)
}

func (o *Orchestrator) publish(ctx context.Context, key string, event events.Event) {
	if o.eventBus == nil {
		return
	}

	err := o.eventBus.Publish(ctx, key, event)
	if err != nil {
		o.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}

func (o *Orchestrator) baseEvent(eventType events.EventType, pipelineID string) events.BaseEvent {
	id := ""
	if o.eventBus != nil {
		id = o.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		PipelineID: pipelineID,
	}
}

func (o *Orchestrator) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return otelhelper.StartSpan(ctx, o.tracer, name, attrs...)
}
