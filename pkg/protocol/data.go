// Package protocol defines the ports the orchestrator depends on: the stage
// collaborators that do the actual ML work and the experiment tracker that
// records the audit trail. Implementations are injected at construction;
// nothing in this package carries state.
package protocol

import (
	"context"
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

// ValidationOptions parameterizes data validation.
type ValidationOptions struct {
	TargetColumn string
	ProblemType  models.ProblemType
}

// PreprocessOptions parameterizes preprocessing. The Quality report from
// stage 1 drives imputation and outlier strategy choices.
type PreprocessOptions struct {
	Quality        models.DataQuality
	TargetColumn   string
	Split          models.SplitConfig
	ExcludeColumns []string
}

// ProcessedDataset is the preprocessing result handed to later stages.
type ProcessedDataset struct {
	Features          []string
	TrainSamples      int
	ValidationSamples int
	TestSamples       int
	AppliedSteps      []string
	ProcessingTime    time.Duration
}

// DataProcessor validates raw datasets and prepares them for training.
type DataProcessor interface {
	// ValidateData computes a quality score in [0, 100] and an issue list.
	// The dataset itself is never mutated.
	ValidateData(ctx context.Context, dataset *models.Dataset, opts ValidationOptions) (*models.DataQuality, error)

	// Preprocess derives a preprocessing plan from the quality report,
	// performs the train/validation/test split, and reports the processed
	// feature and sample counts.
	Preprocess(ctx context.Context, dataset *models.Dataset, opts PreprocessOptions) (*ProcessedDataset, error)
}

// EngineerOptions bounds feature engineering.
type EngineerOptions struct {
	MaxFeatures int
	TimeLimit   time.Duration
	ProblemType models.ProblemType
}

// EngineeredDataset extends the processed dataset with derived features.
// Original features are always preserved.
type EngineeredDataset struct {
	ProcessedDataset

	EngineeredFeatures []string
}

// SelectionOptions parameterizes feature selection.
type SelectionOptions struct {
	Method      string
	MaxFeatures int
	Objective   models.Objective
}

// SelectedFeatures is the feature selection result.
type SelectedFeatures struct {
	EngineeredDataset

	Selected       []string
	SelectionScore float64
}

// FeatureEngineer derives and selects features. Both operations are
// optional per pipeline configuration.
type FeatureEngineer interface {
	Engineer(ctx context.Context, data *ProcessedDataset, opts EngineerOptions) (*EngineeredDataset, error)
	SelectFeatures(ctx context.Context, data *EngineeredDataset, opts SelectionOptions) (*SelectedFeatures, error)
}
