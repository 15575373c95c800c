package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PipelineStatus represents the lifecycle state of a pipeline.
type PipelineStatus string

const (
	PipelineStatusCreated   PipelineStatus = "created"
	PipelineStatusRunning   PipelineStatus = "running"
	PipelineStatusCompleted PipelineStatus = "completed"
	PipelineStatusFailed    PipelineStatus = "failed"
	PipelineStatusCancelled PipelineStatus = "cancelled"
)

// StageStatus represents the lifecycle state of a single stage.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusRunning   StageStatus = "running"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
	StageStatusSkipped   StageStatus = "skipped"
)

// StageType identifies one of the ten fixed pipeline stages.
type StageType string

const (
	StageDataValidation       StageType = "data_validation"
	StageDataPreprocessing    StageType = "data_preprocessing"
	StageFeatureEngineering   StageType = "feature_engineering"
	StageFeatureSelection     StageType = "feature_selection"
	StageModelSelection       StageType = "model_selection"
	StageHyperparameterTuning StageType = "hyperparameter_tuning"
	StageModelEvaluation      StageType = "model_evaluation"
	StageModelValidation      StageType = "model_validation"
	StageInterpretability     StageType = "interpretability"
	StageResultsGeneration    StageType = "results_generation"
)

// StageOrder is the canonical execution order. The stage list of every
// pipeline is built from it and never reordered.
func StageOrder() []StageType {
	return []StageType{
		StageDataValidation,
		StageDataPreprocessing,
		StageFeatureEngineering,
		StageFeatureSelection,
		StageModelSelection,
		StageHyperparameterTuning,
		StageModelEvaluation,
		StageModelValidation,
		StageInterpretability,
		StageResultsGeneration,
	}
}

var stageNames = map[StageType]string{
	StageDataValidation:       "Data Validation",
	StageDataPreprocessing:    "Data Preprocessing",
	StageFeatureEngineering:   "Feature Engineering",
	StageFeatureSelection:     "Feature Selection",
	StageModelSelection:       "Model Selection",
	StageHyperparameterTuning: "Hyperparameter Tuning",
	StageModelEvaluation:      "Model Evaluation",
	StageModelValidation:      "Model Validation",
	StageInterpretability:     "Interpretability Analysis",
	StageResultsGeneration:    "Results Generation",
}

// StageError is the structured failure record attached to a failed stage.
type StageError struct {
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Stage tracks one pipeline step: its status transitions, timing, outputs,
// and failure details. A Stage is owned exclusively by its Pipeline.
type Stage struct {
	Name       string        `json:"name"`
	Type       StageType     `json:"type"`
	Status     StageStatus   `json:"status"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Outputs    *StageOutput  `json:"outputs,omitempty"`
	Error      *StageError   `json:"error,omitempty"`
}

// Start transitions the stage to running and records the start time.
func (s *Stage) Start() error {
	if s.Status != StageStatusPending {
		return fmt.Errorf("stage %s cannot start from status %s", s.Type, s.Status)
	}

	now := time.Now().UTC()
	s.Status = StageStatusRunning
	s.StartedAt = &now

	return nil
}

// Complete transitions the stage to completed, recording outputs and timing.
func (s *Stage) Complete(outputs *StageOutput) error {
	if s.Status != StageStatusRunning {
		return fmt.Errorf("stage %s cannot complete from status %s", s.Type, s.Status)
	}

	s.finish(StageStatusCompleted)
	s.Outputs = outputs

	return nil
}

// Skip marks a stage disabled by configuration. Skipped stages count as done
// for progress purposes.
func (s *Stage) Skip(outputs *StageOutput) error {
	if s.Status != StageStatusPending && s.Status != StageStatusRunning {
		return fmt.Errorf("stage %s cannot be skipped from status %s", s.Type, s.Status)
	}

	if s.StartedAt == nil {
		now := time.Now().UTC()
		s.StartedAt = &now
	}

	s.finish(StageStatusSkipped)
	s.Outputs = outputs

	return nil
}

// Fail transitions the stage to failed with a structured error.
func (s *Stage) Fail(stageErr *StageError) {
	s.finish(StageStatusFailed)
	s.Error = stageErr
}

// Done reports whether the stage counts towards pipeline progress.
func (s *Stage) Done() bool {
	return s.Status == StageStatusCompleted || s.Status == StageStatusSkipped
}

func (s *Stage) finish(status StageStatus) {
	now := time.Now().UTC()
	s.Status = status
	s.FinishedAt = &now

	if s.StartedAt != nil {
		s.Duration = now.Sub(*s.StartedAt)
	}
}

// Progress tracks how far a pipeline execution has advanced.
type Progress struct {
	CurrentStage int     `json:"current_stage"`
	TotalStages  int     `json:"total_stages"`
	Percentage   float64 `json:"percentage"`
}

// Pipeline is the root aggregate: a fixed ten-stage plan plus execution
// state. Stages are created pending at construction and only mutated by the
// orchestrator executing the pipeline.
type Pipeline struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"           validate:"required,min=1"`
	Config        ProblemConfig    `json:"config"`
	Stages        []*Stage         `json:"stages"`
	Status        PipelineStatus   `json:"status"`
	Progress      Progress         `json:"progress"`
	Results       *PipelineResults `json:"results,omitempty"`
	ExperimentIDs []string         `json:"experiment_ids,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewPipeline builds a pipeline with all ten stages pending.
func NewPipeline(name string, config ProblemConfig) *Pipeline {
	order := StageOrder()
	stages := make([]*Stage, 0, len(order))

	for _, stageType := range order {
		stages = append(stages, &Stage{
			Name:   stageNames[stageType],
			Type:   stageType,
			Status: StageStatusPending,
		})
	}

	now := time.Now().UTC()

	return &Pipeline{
		ID:     "pl-" + uuid.New().String(),
		Name:   name,
		Config: config,
		Stages: stages,
		Status: PipelineStatusCreated,
		Progress: Progress{
			CurrentStage: 0,
			TotalStages:  len(order),
			Percentage:   0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StageByType returns the stage record for the given type.
func (p *Pipeline) StageByType(stageType StageType) (*Stage, bool) {
	for _, stage := range p.Stages {
		if stage.Type == stageType {
			return stage, true
		}
	}

	return nil, false
}

// IsTerminal reports whether the pipeline reached an absorbing state.
func (p *Pipeline) IsTerminal() bool {
	switch p.Status {
	case PipelineStatusCompleted, PipelineStatusFailed, PipelineStatusCancelled:
		return true
	default:
		return false
	}
}

// MarkRunning transitions created → running. Any other source status is a
// violation of the monotonic lifecycle.
func (p *Pipeline) MarkRunning() error {
	if p.Status != PipelineStatusCreated {
		return fmt.Errorf("pipeline %s cannot start from status %s", p.ID, p.Status)
	}

	p.Status = PipelineStatusRunning
	p.touch()

	return nil
}

// MarkCompleted transitions running → completed and attaches results.
func (p *Pipeline) MarkCompleted(results *PipelineResults) error {
	if p.Status != PipelineStatusRunning {
		return fmt.Errorf("pipeline %s cannot complete from status %s", p.ID, p.Status)
	}

	p.Status = PipelineStatusCompleted
	p.Results = results
	p.touch()

	return nil
}

// MarkFailed transitions a non-terminal pipeline to failed.
func (p *Pipeline) MarkFailed() error {
	if p.IsTerminal() {
		return fmt.Errorf("pipeline %s is already terminal (%s)", p.ID, p.Status)
	}

	p.Status = PipelineStatusFailed
	p.touch()

	return nil
}

// MarkCancelled transitions a non-terminal pipeline to cancelled.
func (p *Pipeline) MarkCancelled() error {
	if p.IsTerminal() {
		return fmt.Errorf("pipeline %s is already terminal (%s)", p.ID, p.Status)
	}

	p.Status = PipelineStatusCancelled
	p.touch()

	return nil
}

// RefreshProgress recomputes progress from stage statuses. CurrentStage is
// the index of the first stage that is not yet done.
func (p *Pipeline) RefreshProgress() {
	done := 0
	current := len(p.Stages)

	for i, stage := range p.Stages {
		if stage.Done() {
			done++

			continue
		}

		if i < current {
			current = i
		}
	}

	p.Progress.CurrentStage = current
	p.Progress.Percentage = float64(done) / float64(p.Progress.TotalStages) * 100
	p.touch()
}

func (p *Pipeline) touch() {
	p.UpdatedAt = time.Now().UTC()
}
