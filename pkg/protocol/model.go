package protocol

import (
	"context"
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// ModelSelectionSpec tells the selector what to pick candidates for.
type ModelSelectionSpec struct {
	ProblemType     models.ProblemType
	FeatureCount    int
	SampleCount     int
	MaxCandidates   int
	MaxTrainingTime time.Duration
	Preferences     models.Preferences
	Objective       models.Objective
}

// ModelSelector chooses and trains candidate algorithms for the problem.
type ModelSelector interface {
	SelectModels(ctx context.Context, spec ModelSelectionSpec) ([]models.CandidateModel, error)
}

// TuneOptions parameterizes hyperparameter search for one candidate.
type TuneOptions struct {
	Objective models.Objective
	TimeLimit time.Duration
	MaxTrials int
}

// HyperparameterTuner searches the hyperparameter space of one candidate.
type HyperparameterTuner interface {
	Tune(ctx context.Context, model models.CandidateModel, opts TuneOptions) (*models.TunedModel, error)
}

// EvaluateOptions parameterizes cross-validation and test evaluation.
type EvaluateOptions struct {
	Folds      int
	Strategy   string
	Objective  models.Objective
	HasTestSet bool
}

// ModelEvaluator cross-validates a tuned model and scores it on the
// held-out test set.
type ModelEvaluator interface {
	Evaluate(ctx context.Context, model models.TunedModel, opts EvaluateOptions) (*models.EvaluatedModel, error)
}

// ValidateOptions parameterizes the stage-8 checks.
type ValidateOptions struct {
	CheckFairness bool
}

// ModelValidator runs stability, robustness, and fairness checks. A failed
// verdict is reported through ValidationResult.Passed, not through an error.
type ModelValidator interface {
	Validate(ctx context.Context, model models.EvaluatedModel, opts ValidateOptions) (*models.ValidatedModel, error)
}

// AnalyzeOptions parameterizes interpretability analysis.
type AnalyzeOptions struct {
	Level         models.InterpretabilityLevel
	LocalExamples int
}

// InterpretabilityEngine explains a validated model.
type InterpretabilityEngine interface {
	Analyze(ctx context.Context, model models.ValidatedModel, opts AnalyzeOptions) (*models.InterpretableModel, error)
}

// DeploymentManager prepares a deployment configuration skeleton for the
// winning model.
type DeploymentManager interface {
	Prepare(ctx context.Context, model models.InterpretableModel, target string) (*models.DeploymentConfig, error)
}
