package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// ProblemType identifies the kind of ML task the pipeline solves.
type ProblemType string

const (
	ProblemClassification ProblemType = "classification"
	ProblemRegression     ProblemType = "regression"
	ProblemForecasting    ProblemType = "forecasting"
	ProblemClustering     ProblemType = "clustering"
)

// ObjectiveDirection tells the leaderboard whether higher or lower metric
// values win.
type ObjectiveDirection string

const (
	DirectionMaximize ObjectiveDirection = "maximize"
	DirectionMinimize ObjectiveDirection = "minimize"
)

// InterpretabilityLevel constrains how explainable the final models must be.
type InterpretabilityLevel string

const (
	InterpretabilityLow    InterpretabilityLevel = "low"
	InterpretabilityMedium InterpretabilityLevel = "medium"
	InterpretabilityHigh   InterpretabilityLevel = "high"
)

// TargetSpec names the column being predicted.
type TargetSpec struct {
	Column        string `json:"column"`
	PositiveClass string `json:"positive_class,omitempty"`
}

// FeatureEngineeringConfig toggles and bounds stage 3.
type FeatureEngineeringConfig struct {
	Enabled     bool          `json:"enabled"`
	MaxFeatures int           `json:"max_features,omitempty"`
	TimeLimit   time.Duration `json:"time_limit,omitempty"`
}

// FeatureSelectionConfig toggles and parameterizes stage 4.
type FeatureSelectionConfig struct {
	Enabled     bool   `json:"enabled"`
	Method      string `json:"method,omitempty"      validate:"omitempty,oneof=mutual_information recursive_elimination lasso variance_threshold"`
	MaxFeatures int    `json:"max_features,omitempty"`
}

// FeatureConfig controls which columns participate and how they are derived.
type FeatureConfig struct {
	Include     []string                 `json:"include,omitempty"`
	Exclude     []string                 `json:"exclude,omitempty"`
	Engineering FeatureEngineeringConfig `json:"engineering"`
	Selection   FeatureSelectionConfig   `json:"selection"`
}

// Objective defines the metric the pipeline optimizes.
type Objective struct {
	Metric    string             `json:"metric"    validate:"required"`
	Direction ObjectiveDirection `json:"direction" validate:"required,oneof=maximize minimize"`
}

// Constraints bound the pipeline's resource usage and output shape.
type Constraints struct {
	MaxTrainingTime  time.Duration         `json:"max_training_time,omitempty"`
	Interpretability InterpretabilityLevel `json:"interpretability"            validate:"required,oneof=low medium high"`
	DeploymentTarget string                `json:"deployment_target,omitempty"`
}

// Preferences capture soft user choices the model selector honors.
type Preferences struct {
	AllowEnsembles        bool `json:"allow_ensembles"`
	AllowNeuralNetworks   bool `json:"allow_neural_networks"`
	RequireExplainability bool `json:"require_explainability"`
	MaxCandidates         int  `json:"max_candidates,omitempty" validate:"omitempty,min=1"`
}

// SplitConfig defines the train/validation/test split ratios.
type SplitConfig struct {
	Train      float64 `json:"train"`
	Validation float64 `json:"validation"`
	Test       float64 `json:"test"`
	Stratified bool    `json:"stratified"`
}

// DefaultSplit is applied when the caller leaves the split zeroed.
func DefaultSplit() SplitConfig {
	return SplitConfig{Train: 0.7, Validation: 0.15, Test: 0.15}
}

// CrossValidationConfig parameterizes stage 7 evaluation.
type CrossValidationConfig struct {
	Folds    int    `json:"folds,omitempty"    validate:"omitempty,min=2"`
	Strategy string `json:"strategy,omitempty" validate:"omitempty,oneof=kfold stratified timeseries"`
}

// ProblemConfig is the immutable description of the ML task, supplied once at
// pipeline creation and never mutated during execution.
type ProblemConfig struct {
	ProblemType     ProblemType           `json:"problem_type"     validate:"required,oneof=classification regression forecasting clustering"`
	Target          TargetSpec            `json:"target"`
	Features        FeatureConfig         `json:"features"`
	Objective       Objective             `json:"objective"`
	Constraints     Constraints           `json:"constraints"`
	Preferences     Preferences           `json:"preferences"`
	Split           SplitConfig           `json:"split"`
	CrossValidation CrossValidationConfig `json:"cross_validation"`
}

var errSplitRatios = errors.New("split ratios must sum to 1.0")

// Validate checks structural validity plus the cross-field rules the tag
// language cannot express.
func (c *ProblemConfig) Validate(validate *validator.Validate) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid problem config: %w", err)
	}

	if c.Split != (SplitConfig{}) {
		sum := c.Split.Train + c.Split.Validation + c.Split.Test
		if math.Abs(sum-1.0) > 1e-9 {
			return fmt.Errorf("%w: got %.3f", errSplitRatios, sum)
		}
	}

	if c.ProblemType != ProblemClustering && c.Target.Column == "" {
		return fmt.Errorf("invalid problem config: target column is required for %s", c.ProblemType)
	}

	return nil
}

// MaxCandidates returns the configured candidate cap, defaulting to 5.
func (c *ProblemConfig) MaxCandidates() int {
	if c.Preferences.MaxCandidates > 0 {
		return c.Preferences.MaxCandidates
	}

	return 5
}

// CVFolds returns the configured fold count, defaulting to 5.
func (c *ProblemConfig) CVFolds() int {
	if c.CrossValidation.Folds > 0 {
		return c.CrossValidation.Folds
	}

	return 5
}

// EffectiveSplit returns the configured split or the default one.
func (c *ProblemConfig) EffectiveSplit() SplitConfig {
	if c.Split == (SplitConfig{}) {
		return DefaultSplit()
	}

	return c.Split
}
