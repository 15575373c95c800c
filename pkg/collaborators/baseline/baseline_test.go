package baseline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/collaborators/baseline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/protocol"
)

func churnDataset() *models.Dataset {
	return &models.Dataset{
		Name: "churn",
		Schema: []models.ColumnSchema{
			{Name: "age", Type: models.ColumnTypeNumeric, Stats: &models.ColumnStats{DistinctCount: 50}},
			{Name: "income", Type: models.ColumnTypeNumeric, Stats: &models.ColumnStats{DistinctCount: 800, MissingCount: 120}},
			{Name: "plan", Type: models.ColumnTypeCategorical, Stats: &models.ColumnStats{DistinctCount: 3}},
			{Name: "signup_source", Type: models.ColumnTypeCategorical, Stats: &models.ColumnStats{DistinctCount: 1}},
			{Name: "churn", Type: models.ColumnTypeCategorical, Stats: &models.ColumnStats{DistinctCount: 2}},
		},
		Size: models.DatasetSize{Rows: 1000, Columns: 5},
	}
}

func maximizeF1() models.Objective {
	return models.Objective{Metric: "f1", Direction: models.DirectionMaximize}
}

func TestValidateData(t *testing.T) {
	t.Parallel()

	processor := baseline.NewDataProcessor()

	quality, err := processor.ValidateData(context.Background(), churnDataset(), protocol.ValidationOptions{
		TargetColumn: "churn",
		ProblemType:  models.ProblemClassification,
	})
	require.NoError(t, err)

	// 120 missing cells out of 5000, one constant column out of five.
	assert.InDelta(t, 97.6, quality.Completeness, 0.01)
	assert.InDelta(t, 80.0, quality.Consistency, 0.01)
	assert.InDelta(t, 90.6, quality.Score, 0.01)

	kinds := map[string]models.IssueSeverity{}
	for _, issue := range quality.Issues {
		kinds[issue.Kind] = issue.Severity
	}

	assert.Equal(t, models.SeverityWarning, kinds["missing_values"])
	assert.Equal(t, models.SeverityWarning, kinds["constant_column"])
	assert.NotContains(t, kinds, "missing_target")
}

func TestValidateDataMissingTarget(t *testing.T) {
	t.Parallel()

	processor := baseline.NewDataProcessor()

	quality, err := processor.ValidateData(context.Background(), churnDataset(), protocol.ValidationOptions{
		TargetColumn: "label",
	})
	require.NoError(t, err)

	found := false
	for _, issue := range quality.Issues {
		if issue.Kind == "missing_target" {
			found = true
			assert.Equal(t, models.SeverityCritical, issue.Severity)
			assert.Equal(t, "label", issue.Column)
		}
	}
	assert.True(t, found)

	// Critical issues cost ten points each.
	assert.InDelta(t, 80.6, quality.Score, 0.01)
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	processor := baseline.NewDataProcessor()
	dataset := churnDataset()

	quality, err := processor.ValidateData(context.Background(), dataset, protocol.ValidationOptions{TargetColumn: "churn"})
	require.NoError(t, err)

	processed, err := processor.Preprocess(context.Background(), dataset, protocol.PreprocessOptions{
		Quality:      *quality,
		TargetColumn: "churn",
		Split:        models.DefaultSplit(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "income", "plan"}, processed.Features)
	assert.Equal(t, 700, processed.TrainSamples)
	assert.Equal(t, 150, processed.ValidationSamples)
	assert.Equal(t, 150, processed.TestSamples)
	assert.Contains(t, processed.AppliedSteps, "impute_missing")
	assert.Contains(t, processed.AppliedSteps, "encode_categoricals")
	assert.Contains(t, processed.AppliedSteps, "scale_numeric")
	assert.Contains(t, processed.AppliedSteps, "drop_constant_columns")
}

func TestEngineerRespectsLimit(t *testing.T) {
	t.Parallel()

	engineer := baseline.NewFeatureEngineer()
	data := &protocol.ProcessedDataset{Features: []string{"age", "income", "plan"}}

	engineered, err := engineer.Engineer(context.Background(), data, protocol.EngineerOptions{MaxFeatures: 5})
	require.NoError(t, err)

	require.Len(t, engineered.EngineeredFeatures, 5)
	assert.Contains(t, engineered.EngineeredFeatures, "age_log")
	assert.Contains(t, engineered.EngineeredFeatures, "age_x_income")
	assert.Equal(t, data.Features, engineered.Features)
}

func TestSelectFeatures(t *testing.T) {
	t.Parallel()

	engineer := baseline.NewFeatureEngineer()
	data := &protocol.EngineeredDataset{
		ProcessedDataset:   protocol.ProcessedDataset{Features: []string{"age", "income", "plan"}},
		EngineeredFeatures: []string{"age_log", "income_log"},
	}

	selected, err := engineer.SelectFeatures(context.Background(), data, protocol.SelectionOptions{Method: "mutual_information"})
	require.NoError(t, err)

	// Default keeps roughly the top two thirds of five features.
	assert.Len(t, selected.Selected, 4)
	assert.Greater(t, selected.SelectionScore, 0.0)

	again, err := engineer.SelectFeatures(context.Background(), data, protocol.SelectionOptions{Method: "mutual_information"})
	require.NoError(t, err)
	assert.Equal(t, selected.Selected, again.Selected)

	capped, err := engineer.SelectFeatures(context.Background(), data, protocol.SelectionOptions{Method: "mutual_information", MaxFeatures: 2})
	require.NoError(t, err)
	assert.Len(t, capped.Selected, 2)
}

func TestSelectModelsHonorsPreferences(t *testing.T) {
	t.Parallel()

	selector := baseline.NewModelSelector()
	spec := protocol.ModelSelectionSpec{
		ProblemType:  models.ProblemClassification,
		FeatureCount: 10,
		SampleCount:  1000,
		Objective:    maximizeF1(),
		Preferences:  models.Preferences{AllowEnsembles: true},
	}

	candidates, err := selector.SelectModels(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, candidates, 6)

	for _, candidate := range candidates {
		assert.NotEqual(t, "mlp", candidate.Algorithm)
		assert.Contains(t, candidate.ID, "mdl-")
		assert.GreaterOrEqual(t, candidate.Score, 0.6)
		assert.Less(t, candidate.Score, 0.95)
	}

	spec.Preferences.RequireExplainability = true

	interpretable, err := selector.SelectModels(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, interpretable, 3)

	for _, candidate := range interpretable {
		assert.Contains(t, []string{"logistic_regression", "random_forest", "naive_bayes"}, candidate.Algorithm)
	}
}

func TestSelectModelsDeterministicScores(t *testing.T) {
	t.Parallel()

	selector := baseline.NewModelSelector()
	spec := protocol.ModelSelectionSpec{
		ProblemType:  models.ProblemRegression,
		FeatureCount: 8,
		SampleCount:  500,
		Objective:    models.Objective{Metric: "rmse", Direction: models.DirectionMinimize},
		Preferences:  models.Preferences{AllowEnsembles: true, AllowNeuralNetworks: true},
	}

	first, err := selector.SelectModels(context.Background(), spec)
	require.NoError(t, err)
	second, err := selector.SelectModels(context.Background(), spec)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Algorithm, second[i].Algorithm)
		assert.InDelta(t, first[i].Score, second[i].Score, 1e-12)
	}
}

func TestTuneImprovesScore(t *testing.T) {
	t.Parallel()

	tuner := baseline.NewHyperparameterTuner()
	candidate := models.CandidateModel{ID: "mdl-1", Algorithm: "random_forest", Score: 0.75}

	tuned, err := tuner.Tune(context.Background(), candidate, protocol.TuneOptions{Objective: maximizeF1()})
	require.NoError(t, err)

	assert.Greater(t, tuned.BestScore, candidate.Score)
	assert.Less(t, tuned.BestScore, 1.0)
	assert.Equal(t, 25, tuned.TotalTrials)
	assert.Contains(t, tuned.BestParams, "learning_rate")
	assert.Contains(t, tuned.BestParams, "max_depth")
	assert.Contains(t, tuned.BestParams, "n_estimators")

	capped, err := tuner.Tune(context.Background(), candidate, protocol.TuneOptions{Objective: maximizeF1(), MaxTrials: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, capped.TotalTrials)
}

func TestTuneMinimizeDirection(t *testing.T) {
	t.Parallel()

	tuner := baseline.NewHyperparameterTuner()
	candidate := models.CandidateModel{ID: "mdl-2", Algorithm: "ridge", Score: 3.5}

	tuned, err := tuner.Tune(context.Background(), candidate, protocol.TuneOptions{
		Objective: models.Objective{Metric: "rmse", Direction: models.DirectionMinimize},
	})
	require.NoError(t, err)

	assert.Less(t, tuned.BestScore, candidate.Score)
	assert.Greater(t, tuned.BestScore, 0.0)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	evaluator := baseline.NewModelEvaluator()
	tuned := models.TunedModel{
		CandidateModel: models.CandidateModel{ID: "mdl-3", Algorithm: "gradient_boosting"},
		BestScore:      0.85,
	}

	evaluated, err := evaluator.Evaluate(context.Background(), tuned, protocol.EvaluateOptions{
		Folds:     5,
		Objective: maximizeF1(),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, evaluated.CrossValidation.Folds)
	require.Len(t, evaluated.CrossValidation.Scores, 5)
	assert.InDelta(t, tuned.BestScore, evaluated.CrossValidation.Mean, 0.05)
	assert.GreaterOrEqual(t, evaluated.CrossValidation.StdDev, 0.0)
	assert.Nil(t, evaluated.TestSet)

	withTest, err := evaluator.Evaluate(context.Background(), tuned, protocol.EvaluateOptions{
		Folds:      5,
		Objective:  maximizeF1(),
		HasTestSet: true,
	})
	require.NoError(t, err)
	require.NotNil(t, withTest.TestSet)
	assert.InDelta(t, withTest.CrossValidation.Mean, withTest.TestSet.Score, 0.2)
	assert.Contains(t, withTest.TestSet.Metrics, "f1")
}

func TestValidateFairnessToggle(t *testing.T) {
	t.Parallel()

	validator := baseline.NewModelValidator()
	evaluated := models.EvaluatedModel{
		TunedModel: models.TunedModel{
			CandidateModel: models.CandidateModel{ID: "mdl-4", Algorithm: "random_forest"},
			BestScore:      0.85,
		},
		CrossValidation: models.CrossValidationResult{Mean: 0.85, StdDev: 0.01, Folds: 5},
	}

	validated, err := validator.Validate(context.Background(), evaluated, protocol.ValidateOptions{})
	require.NoError(t, err)
	assert.Nil(t, validated.Validation.Fairness)
	assert.GreaterOrEqual(t, validated.Validation.Stability, 0.0)
	assert.GreaterOrEqual(t, validated.Validation.Robustness, 0.6)

	fair, err := validator.Validate(context.Background(), evaluated, protocol.ValidateOptions{CheckFairness: true})
	require.NoError(t, err)
	require.NotNil(t, fair.Validation.Fairness)
	assert.GreaterOrEqual(t, *fair.Validation.Fairness, 0.7)
	assert.LessOrEqual(t, *fair.Validation.Fairness, 1.0)
}

func TestAnalyzeNormalizesImportance(t *testing.T) {
	t.Parallel()

	engine := baseline.NewInterpretabilityEngine()
	validated := models.ValidatedModel{
		EvaluatedModel: models.EvaluatedModel{
			TunedModel: models.TunedModel{
				CandidateModel: models.CandidateModel{ID: "mdl-5", Algorithm: "logistic_regression"},
				BestParams: map[string]any{
					"learning_rate": 0.1,
					"max_depth":     6,
					"n_estimators":  200,
				},
			},
		},
	}

	interpretable, err := engine.Analyze(context.Background(), validated, protocol.AnalyzeOptions{
		Level:         models.InterpretabilityHigh,
		LocalExamples: 5,
	})
	require.NoError(t, err)

	report := interpretable.Interpretability
	require.NotNil(t, report)
	require.Len(t, report.GlobalImportance, 3)

	total := 0.0
	for _, weight := range report.GlobalImportance {
		total += weight
	}
	assert.InDelta(t, 1.0, total, 0.01)

	assert.Equal(t, 5, report.LocalExamples)
	assert.Equal(t, "interpretability-logistic_regression.json", report.ArtifactName)
}

func TestPrepareDeployment(t *testing.T) {
	t.Parallel()

	manager := baseline.NewDeploymentManager()
	model := models.InterpretableModel{
		ValidatedModel: models.ValidatedModel{
			EvaluatedModel: models.EvaluatedModel{
				TunedModel: models.TunedModel{
					CandidateModel: models.CandidateModel{ID: "mdl-6", Algorithm: "random_forest"},
				},
			},
		},
	}

	deployment, err := manager.Prepare(context.Background(), model, "docker")
	require.NoError(t, err)

	assert.Equal(t, "docker", deployment.Target)
	assert.Equal(t, "mdl-6", deployment.ModelID)
	assert.Equal(t, 2, deployment.Replicas)
	assert.NotEmpty(t, deployment.Notes)
}
