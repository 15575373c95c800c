package cmd

import (
	"github.com/gchahal1982/G3DAI-sub009/pkg/collaborators/baseline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
)

// NewBaselineCollaborators wires the built-in collaborator implementations.
func NewBaselineCollaborators() pipeline.Collaborators {
	return pipeline.Collaborators{
		Data:        baseline.NewDataProcessor(),
		Features:    baseline.NewFeatureEngineer(),
		Selector:    baseline.NewModelSelector(),
		Tuner:       baseline.NewHyperparameterTuner(),
		Evaluator:   baseline.NewModelEvaluator(),
		Validator:   baseline.NewModelValidator(),
		Interpreter: baseline.NewInterpretabilityEngine(),
		Deployer:    baseline.NewDeploymentManager(),
	}
}
