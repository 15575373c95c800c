package models

import "time"

// StageOutput is a tagged union of per-stage summaries. Exactly one field is
// set for a completed stage; skipped stages carry the variant with its skip
// reason. The oneof-style struct keeps stage outputs JSON-serializable while
// giving the orchestrator compile-time field access instead of untyped blobs.
type StageOutput struct {
	DataValidation   *DataValidationOutput   `json:"data_validation,omitempty"`
	Preprocessing    *PreprocessingOutput    `json:"preprocessing,omitempty"`
	Engineering      *EngineeringOutput      `json:"engineering,omitempty"`
	Selection        *SelectionOutput        `json:"selection,omitempty"`
	ModelSelection   *ModelSelectionOutput   `json:"model_selection,omitempty"`
	Tuning           *TuningOutput           `json:"tuning,omitempty"`
	Evaluation       *EvaluationOutput       `json:"evaluation,omitempty"`
	Validation       *ValidationOutput       `json:"validation,omitempty"`
	Interpretability *InterpretabilityOutput `json:"interpretability,omitempty"`
	Results          *ResultsOutput          `json:"results,omitempty"`
}

// DataValidationOutput summarizes stage 1.
type DataValidationOutput struct {
	Quality DataQuality `json:"quality"`
}

// PreprocessingOutput summarizes stage 2.
type PreprocessingOutput struct {
	Features          []string      `json:"features"`
	TrainSamples      int           `json:"train_samples"`
	ValidationSamples int           `json:"validation_samples"`
	TestSamples       int           `json:"test_samples"`
	AppliedSteps      []string      `json:"applied_steps"`
	ProcessingTime    time.Duration `json:"processing_time"`
}

// EngineeringOutput summarizes stage 3. EngineeredFeatures is empty when the
// stage was skipped by configuration.
type EngineeringOutput struct {
	EngineeredFeatures []string `json:"engineered_features"`
	TotalFeatures      int      `json:"total_features"`
	Skipped            string   `json:"skipped,omitempty"`
}

// SelectionOutput summarizes stage 4.
type SelectionOutput struct {
	SelectedFeatures []string `json:"selected_features"`
	SelectionScore   float64  `json:"selection_score"`
	Method           string   `json:"method,omitempty"`
	Skipped          string   `json:"skipped,omitempty"`
}

// ModelSelectionOutput summarizes stage 5.
type ModelSelectionOutput struct {
	Algorithms []string `json:"algorithms"`
	Evaluated  int      `json:"evaluated"`
	Retained   int      `json:"retained"`
}

// TuningOutput summarizes stage 6.
type TuningOutput struct {
	TotalTrials   int     `json:"total_trials"`
	BestScore     float64 `json:"best_score"`
	BestAlgorithm string  `json:"best_algorithm"`
}

// EvaluationOutput summarizes stage 7.
type EvaluationOutput struct {
	Evaluated  int     `json:"evaluated"`
	BestCVMean float64 `json:"best_cv_mean"`
	Folds      int     `json:"folds"`
}

// ValidationOutput summarizes stage 8. ModelsPassed may be zero; downstream
// stages degrade gracefully instead of failing.
type ValidationOutput struct {
	ModelsChecked int `json:"models_checked"`
	ModelsPassed  int `json:"models_passed"`
}

// InterpretabilityOutput summarizes stage 9.
type InterpretabilityOutput struct {
	ModelsAnalyzed int      `json:"models_analyzed"`
	Artifacts      []string `json:"artifacts,omitempty"`
	Skipped        string   `json:"skipped,omitempty"`
}

// ResultsOutput summarizes stage 10.
type ResultsOutput struct {
	LeaderboardSize int    `json:"leaderboard_size"`
	BestModel       string `json:"best_model,omitempty"`
}
