package models

import "time"

// The model records below are threaded through stages 5-9. Each level embeds
// the previous one, so enrichment is strictly additive: no stage can drop a
// field produced by an earlier stage.

// CandidateModel is a stage-5 output: an algorithm trained once with default
// parameters.
type CandidateModel struct {
	ID           string         `json:"id"`
	Algorithm    string         `json:"algorithm"`
	Family       string         `json:"family,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	Score        float64        `json:"score"`
	TrainingTime time.Duration  `json:"training_time,omitempty"`
}

// TunedModel extends a candidate with hyperparameter search results.
type TunedModel struct {
	CandidateModel

	BestParams  map[string]any `json:"best_params"`
	BestScore   float64        `json:"best_score"`
	TotalTrials int            `json:"total_trials"`
}

// CrossValidationResult carries per-fold scores plus their summary.
type CrossValidationResult struct {
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	Scores []float64 `json:"scores"`
	Folds  int       `json:"folds"`
}

// TestSetResult is the held-out evaluation, present when a test split exists.
type TestSetResult struct {
	Score   float64            `json:"score"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// EvaluatedModel extends a tuned model with cross-validation and test-set
// evaluation.
type EvaluatedModel struct {
	TunedModel

	CrossValidation CrossValidationResult `json:"cross_validation"`
	TestSet         *TestSetResult        `json:"test_set,omitempty"`
}

// ValidationResult records the stage-8 stability/robustness/fairness checks.
// Passed is the hard gate: models with Passed == false never reach stage 9
// or the leaderboard.
type ValidationResult struct {
	Stability  float64  `json:"stability"`
	Robustness float64  `json:"robustness"`
	Fairness   *float64 `json:"fairness,omitempty"`
	Passed     bool     `json:"passed"`
}

// ValidatedModel extends an evaluated model with its validation verdict.
type ValidatedModel struct {
	EvaluatedModel

	Validation ValidationResult `json:"validation"`
}

// InterpretabilityReport is the stage-9 payload for one model.
type InterpretabilityReport struct {
	GlobalImportance map[string]float64 `json:"global_importance"`
	LocalExamples    int                `json:"local_examples,omitempty"`
	ArtifactName     string             `json:"artifact_name,omitempty"`
}

// InterpretableModel is the final enrichment level. Interpretability is nil
// for models outside the analyzed top slice or when the stage is skipped.
type InterpretableModel struct {
	ValidatedModel

	Interpretability *InterpretabilityReport `json:"interpretability,omitempty"`
}
