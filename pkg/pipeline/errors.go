// Package pipeline implements the AutoML orchestrator: pipeline creation,
// strictly sequential stage execution with bounded intra-stage fan-out over
// models, experiment bookkeeping, and final results assembly.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

var (
	// ErrPipelineFinished indicates the pipeline already reached a terminal
	// status and cannot be executed again.
	ErrPipelineFinished = errors.New("pipeline already finished")

	// ErrPipelineBusy indicates another execution of the same pipeline is in
	// progress.
	ErrPipelineBusy = errors.New("pipeline execution already in progress")

	// ErrNoCandidates indicates the model selector produced no candidates.
	ErrNoCandidates = errors.New("model selector returned no candidates")
)

// StageError wraps a collaborator failure with the stage it occurred in and
// actionable suggestions for that stage's typical failure modes. Stage
// failures are pipeline-fatal: the orchestrator records them and re-raises,
// it never retries.
type StageError struct {
	Stage       models.StageType
	Kind        string
	Message     string
	Suggestions []string
	Err         error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Record converts the error into the structured form stored on the stage.
func (e *StageError) Record() *models.StageError {
	return &models.StageError{
		Type:        e.Kind,
		Message:     e.Message,
		Suggestions: e.Suggestions,
	}
}

var stageErrorKinds = map[models.StageType]string{
	models.StageDataValidation:       "DataValidationError",
	models.StageDataPreprocessing:    "DataPreprocessingError",
	models.StageFeatureEngineering:   "FeatureEngineeringError",
	models.StageFeatureSelection:     "FeatureSelectionError",
	models.StageModelSelection:       "ModelSelectionError",
	models.StageHyperparameterTuning: "HyperparameterTuningError",
	models.StageModelEvaluation:      "ModelEvaluationError",
	models.StageModelValidation:      "ModelValidationError",
	models.StageInterpretability:     "InterpretabilityError",
	models.StageResultsGeneration:    "ResultsGenerationError",
}

var stageSuggestions = map[models.StageType][]string{
	models.StageDataValidation: {
		"check column types against the declared schema",
		"verify the target column exists and is populated",
		"profile the dataset for missing values before submitting",
	},
	models.StageDataPreprocessing: {
		"review the imputation strategy for columns with many missing values",
		"disable stratified splitting for very small datasets",
		"check that split ratios leave enough samples per partition",
	},
	models.StageFeatureEngineering: {
		"increase the feature engineering time limit",
		"lower max_features to bound the search space",
		"exclude high-cardinality text columns",
	},
	models.StageFeatureSelection: {
		"try a different selection method",
		"raise max_features if too few features survive selection",
	},
	models.StageModelSelection: {
		"relax constraints.max_training_time",
		"allow more algorithm families in preferences",
		"check that the problem type matches the target column",
	},
	models.StageHyperparameterTuning: {
		"increase the tuning time limit",
		"reduce max_candidates to tune fewer models",
		"lower the trial budget per candidate",
	},
	models.StageModelEvaluation: {
		"reduce the cross-validation fold count",
		"verify the evaluation metric fits the problem type",
	},
	models.StageModelValidation: {
		"inspect stability and robustness scores in the experiment run",
		"loosen validation thresholds if they are stricter than needed",
	},
	models.StageInterpretability: {
		"lower the interpretability constraint to medium or low",
		"reduce the number of local explanation examples",
	},
	models.StageResultsGeneration: {
		"inspect the experiment run for partial stage outputs",
	},
}

// newInternalError wraps an orchestrator-side failure (state transition,
// persistence, tracking) observed while running a stage. It carries no
// suggestion catalog: the suggestions describe collaborator failure modes,
// not infrastructure ones.
func newInternalError(stage models.StageType, err error) *StageError {
	return &StageError{
		Stage:   stage,
		Kind:    "InternalError",
		Message: err.Error(),
		Err:     err,
	}
}

// newStageError wraps err with the stage's error kind and suggestion
// catalog. An err that already is a StageError passes through unchanged.
func newStageError(stage models.StageType, err error) *StageError {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr
	}

	return &StageError{
		Stage:       stage,
		Kind:        stageErrorKinds[stage],
		Message:     err.Error(),
		Suggestions: stageSuggestions[stage],
		Err:         err,
	}
}
