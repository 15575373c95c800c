package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

func testProblemConfig() models.ProblemConfig {
	return models.ProblemConfig{
		ProblemType: models.ProblemClassification,
		Target:      models.TargetSpec{Column: "churn"},
		Objective: models.Objective{
			Metric:    "f1",
			Direction: models.DirectionMaximize,
		},
		Constraints: models.Constraints{
			Interpretability: models.InterpretabilityMedium,
		},
	}
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	pipeline := models.NewPipeline("churn-automl", testProblemConfig())

	assert.NotEmpty(t, pipeline.ID)
	assert.Equal(t, models.PipelineStatusCreated, pipeline.Status)
	require.Len(t, pipeline.Stages, 10)
	assert.Equal(t, 10, pipeline.Progress.TotalStages)
	assert.Equal(t, 0, pipeline.Progress.CurrentStage)

	for i, stageType := range models.StageOrder() {
		assert.Equal(t, stageType, pipeline.Stages[i].Type)
		assert.Equal(t, models.StageStatusPending, pipeline.Stages[i].Status)
	}
}

func TestStageTransitions(t *testing.T) {
	t.Parallel()

	t.Run("start complete", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageDataValidation, Status: models.StageStatusPending}

		require.NoError(t, stage.Start())
		assert.Equal(t, models.StageStatusRunning, stage.Status)
		assert.NotNil(t, stage.StartedAt)

		require.NoError(t, stage.Complete(&models.StageOutput{}))
		assert.Equal(t, models.StageStatusCompleted, stage.Status)
		assert.NotNil(t, stage.FinishedAt)
		assert.True(t, stage.Done())
	})

	t.Run("start from running fails", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageDataValidation, Status: models.StageStatusPending}
		require.NoError(t, stage.Start())
		require.Error(t, stage.Start())
	})

	t.Run("complete without start fails", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageDataValidation, Status: models.StageStatusPending}
		require.Error(t, stage.Complete(nil))
	})

	t.Run("skip from pending sets timing", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageFeatureEngineering, Status: models.StageStatusPending}

		require.NoError(t, stage.Skip(&models.StageOutput{}))
		assert.Equal(t, models.StageStatusSkipped, stage.Status)
		assert.NotNil(t, stage.StartedAt)
		assert.NotNil(t, stage.FinishedAt)
		assert.True(t, stage.Done())
	})

	t.Run("skip from running", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageFeatureSelection, Status: models.StageStatusPending}
		require.NoError(t, stage.Start())
		require.NoError(t, stage.Skip(nil))
		assert.Equal(t, models.StageStatusSkipped, stage.Status)
	})

	t.Run("skip after completion fails", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageFeatureSelection, Status: models.StageStatusPending}
		require.NoError(t, stage.Start())
		require.NoError(t, stage.Complete(nil))
		require.Error(t, stage.Skip(nil))
	})

	t.Run("fail records error", func(t *testing.T) {
		t.Parallel()

		stage := &models.Stage{Type: models.StageModelSelection, Status: models.StageStatusPending}
		require.NoError(t, stage.Start())

		stage.Fail(&models.StageError{
			Type:        "ModelSelectionError",
			Message:     "no candidates",
			Suggestions: []string{"relax constraints"},
		})

		assert.Equal(t, models.StageStatusFailed, stage.Status)
		require.NotNil(t, stage.Error)
		assert.Equal(t, "ModelSelectionError", stage.Error.Type)
		assert.False(t, stage.Done())
	})
}

func TestPipelineStatusTransitions(t *testing.T) {
	t.Parallel()

	t.Run("created to running to completed", func(t *testing.T) {
		t.Parallel()

		pipeline := models.NewPipeline("test", testProblemConfig())

		require.NoError(t, pipeline.MarkRunning())
		assert.Equal(t, models.PipelineStatusRunning, pipeline.Status)
		assert.False(t, pipeline.IsTerminal())

		require.NoError(t, pipeline.MarkCompleted(&models.PipelineResults{}))
		assert.Equal(t, models.PipelineStatusCompleted, pipeline.Status)
		assert.True(t, pipeline.IsTerminal())
		assert.NotNil(t, pipeline.Results)
	})

	t.Run("cannot run twice", func(t *testing.T) {
		t.Parallel()

		pipeline := models.NewPipeline("test", testProblemConfig())
		require.NoError(t, pipeline.MarkRunning())
		require.Error(t, pipeline.MarkRunning())
	})

	t.Run("cannot complete from created", func(t *testing.T) {
		t.Parallel()

		pipeline := models.NewPipeline("test", testProblemConfig())
		require.Error(t, pipeline.MarkCompleted(nil))
	})

	t.Run("terminal statuses are absorbing", func(t *testing.T) {
		t.Parallel()

		pipeline := models.NewPipeline("test", testProblemConfig())
		require.NoError(t, pipeline.MarkRunning())
		require.NoError(t, pipeline.MarkFailed())

		require.Error(t, pipeline.MarkFailed())
		require.Error(t, pipeline.MarkCancelled())
		require.Error(t, pipeline.MarkCompleted(nil))
	})

	t.Run("cancel from running", func(t *testing.T) {
		t.Parallel()

		pipeline := models.NewPipeline("test", testProblemConfig())
		require.NoError(t, pipeline.MarkRunning())
		require.NoError(t, pipeline.MarkCancelled())
		assert.True(t, pipeline.IsTerminal())
	})
}

func TestRefreshProgress(t *testing.T) {
	t.Parallel()

	pipeline := models.NewPipeline("test", testProblemConfig())

	pipeline.RefreshProgress()
	assert.Equal(t, 0, pipeline.Progress.CurrentStage)
	assert.InDelta(t, 0.0, pipeline.Progress.Percentage, 0.001)

	require.NoError(t, pipeline.Stages[0].Start())
	require.NoError(t, pipeline.Stages[0].Complete(nil))
	require.NoError(t, pipeline.Stages[1].Start())
	require.NoError(t, pipeline.Stages[1].Complete(nil))
	require.NoError(t, pipeline.Stages[2].Skip(nil))

	pipeline.RefreshProgress()
	assert.Equal(t, 3, pipeline.Progress.CurrentStage)
	assert.InDelta(t, 30.0, pipeline.Progress.Percentage, 0.001)

	for _, stage := range pipeline.Stages[3:] {
		require.NoError(t, stage.Start())
		require.NoError(t, stage.Complete(nil))
	}

	pipeline.RefreshProgress()
	assert.Equal(t, 10, pipeline.Progress.CurrentStage)
	assert.InDelta(t, 100.0, pipeline.Progress.Percentage, 0.001)
}

func TestStageByType(t *testing.T) {
	t.Parallel()

	pipeline := models.NewPipeline("test", testProblemConfig())

	stage, found := pipeline.StageByType(models.StageModelValidation)
	require.True(t, found)
	assert.Equal(t, "Model Validation", stage.Name)

	_, found = pipeline.StageByType(models.StageType("nonexistent"))
	assert.False(t, found)
}
