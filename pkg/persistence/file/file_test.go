package file_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence/file"
)

func testConfig() models.ProblemConfig {
	return models.ProblemConfig{
		ProblemType: models.ProblemClassification,
		Target:      models.TargetSpec{Column: "churn"},
		Objective:   models.Objective{Metric: "f1", Direction: models.DirectionMaximize},
		Constraints: models.Constraints{Interpretability: models.InterpretabilityMedium},
	}
}

func TestPipelineRepositoryRoundtrip(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	pipeline := models.NewPipeline("churn-automl", testConfig())
	pipeline.Results = &models.PipelineResults{
		Leaderboard: []models.LeaderboardEntry{
			{Rank: 1, ModelID: "mdl-1", Algorithm: "random_forest", CVMean: 0.88},
		},
		GeneratedAt: time.Now().UTC(),
	}

	require.NoError(t, store.Pipelines().Save(ctx, pipeline))

	loaded, err := store.Pipelines().GetByID(ctx, pipeline.ID)
	require.NoError(t, err)
	assert.Equal(t, pipeline.ID, loaded.ID)
	assert.Equal(t, pipeline.Name, loaded.Name)
	require.Len(t, loaded.Stages, 10)
	require.NotNil(t, loaded.Results)
	require.Len(t, loaded.Results.Leaderboard, 1)
	assert.Equal(t, "random_forest", loaded.Results.Leaderboard[0].Algorithm)
}

func TestPipelineRepositoryNotFound(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())

	_, err := store.Pipelines().GetByID(context.Background(), "pl-missing")
	require.ErrorIs(t, err, persistence.ErrPipelineNotFound)
	assert.True(t, persistence.IsPipelineNotFound(err))

	err = store.Pipelines().Delete(context.Background(), "pl-missing")
	require.ErrorIs(t, err, persistence.ErrPipelineNotFound)
}

func TestPipelineRepositoryListNewestFirst(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	older := models.NewPipeline("first", testConfig())
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := models.NewPipeline("second", testConfig())

	require.NoError(t, store.Pipelines().Save(ctx, older))
	require.NoError(t, store.Pipelines().Save(ctx, newer))

	pipelines, err := store.Pipelines().List(ctx)
	require.NoError(t, err)
	require.Len(t, pipelines, 2)
	assert.Equal(t, newer.ID, pipelines[0].ID)
	assert.Equal(t, older.ID, pipelines[1].ID)
}

func TestPipelineRepositoryDelete(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	pipeline := models.NewPipeline("short-lived", testConfig())
	require.NoError(t, store.Pipelines().Save(ctx, pipeline))
	require.NoError(t, store.Pipelines().Delete(ctx, pipeline.ID))

	_, err := store.Pipelines().GetByID(ctx, pipeline.ID)
	require.ErrorIs(t, err, persistence.ErrPipelineNotFound)
}

func TestExperimentRepositoryRoundtrip(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	experiment := &models.Experiment{
		ID:        "exp-1",
		Name:      "churn-20250801-120000",
		Tags:      []string{"automl"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Experiments().SaveExperiment(ctx, experiment))

	loaded, err := store.Experiments().GetExperiment(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, experiment.Name, loaded.Name)

	_, err = store.Experiments().GetExperiment(ctx, "exp-missing")
	require.ErrorIs(t, err, persistence.ErrExperimentNotFound)
}

func TestRunsByExperimentOldestFirst(t *testing.T) {
	t.Parallel()

	store := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	now := time.Now().UTC()
	runs := []*models.ExperimentRun{
		{ID: "run-b", ExperimentID: "exp-1", Status: models.RunStatusCompleted, StartedAt: now},
		{ID: "run-a", ExperimentID: "exp-1", Status: models.RunStatusFailed, StartedAt: now.Add(-time.Hour)},
		{ID: "run-c", ExperimentID: "exp-other", Status: models.RunStatusRunning, StartedAt: now},
	}
	for _, run := range runs {
		require.NoError(t, store.Experiments().SaveRun(ctx, run))
	}

	listed, err := store.Experiments().RunsByExperiment(ctx, "exp-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "run-a", listed[0].ID)
	assert.Equal(t, "run-b", listed[1].ID)

	_, err = store.Experiments().GetRun(ctx, "run-missing")
	require.ErrorIs(t, err, persistence.ErrRunNotFound)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := file.NewPersistence(dir)
	require.NoError(t, store.HealthCheck(context.Background()))

	missing := file.NewPersistence(dir + "/does-not-exist")
	require.Error(t, missing.HealthCheck(context.Background()))
}
