package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/collaborators/baseline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/locking"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence/file"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/tracking"
	"github.com/gchahal1982/G3DAI-sub009/pkg/web"
)

func setupTestApp(t *testing.T) (*fiber.App, *pipeline.Orchestrator) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.DiscardHandler)
	tracker := tracking.NewTracker(store.Experiments(), logger)

	collaborators := pipeline.Collaborators{
		Data:        baseline.NewDataProcessor(),
		Features:    baseline.NewFeatureEngineer(),
		Selector:    baseline.NewModelSelector(),
		Tuner:       baseline.NewHyperparameterTuner(),
		Evaluator:   baseline.NewModelEvaluator(),
		Validator:   baseline.NewModelValidator(),
		Interpreter: baseline.NewInterpretabilityEngine(),
		Deployer:    baseline.NewDeploymentManager(),
	}

	orchestrator, err := pipeline.NewOrchestrator(
		store, tracker, collaborators, locking.NewMemoryLock(), nil, nil, logger, pipeline.Config{},
	)
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(orchestrator, store, validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()

	pipelines := app.Group("/pipelines")
	pipelines.Get("/", handlers.GetPipelines)
	pipelines.Post("/", handlers.CreatePipeline)
	pipelines.Get("/:id", handlers.GetPipeline)
	pipelines.Delete("/:id", handlers.DeletePipeline)
	pipelines.Post("/:id/executions", handlers.ExecutePipeline)
	pipelines.Get("/:id/results", handlers.GetPipelineResults)

	experiments := app.Group("/experiments")
	experiments.Get("/:id", handlers.GetExperiment)
	experiments.Get("/:id/runs", handlers.GetExperimentRuns)

	app.Get("/runs/:id", handlers.GetRun)
	app.Get("/health", handlers.HealthCheck)

	return app, orchestrator
}

func testDataset() models.Dataset {
	return models.Dataset{
		Name: "churn",
		Schema: []models.ColumnSchema{
			{Name: "age", Type: models.ColumnTypeNumeric, Stats: &models.ColumnStats{DistinctCount: 50}},
			{Name: "plan", Type: models.ColumnTypeCategorical, Stats: &models.ColumnStats{DistinctCount: 3}},
			{Name: "churn", Type: models.ColumnTypeCategorical, Stats: &models.ColumnStats{DistinctCount: 2}},
		},
		Size: models.DatasetSize{Rows: 1000, Columns: 3},
	}
}

func testProblemConfig() models.ProblemConfig {
	return models.ProblemConfig{
		ProblemType: models.ProblemClassification,
		Target:      models.TargetSpec{Column: "churn"},
		Objective:   models.Objective{Metric: "f1", Direction: models.DirectionMaximize},
		Constraints: models.Constraints{Interpretability: models.InterpretabilityMedium},
		Preferences: models.Preferences{AllowEnsembles: true},
	}
}

func jsonRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, url, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func createTestPipeline(t *testing.T, orchestrator *pipeline.Orchestrator) *models.Pipeline {
	t.Helper()

	dataset := testDataset()

	created, err := orchestrator.CreateMLPipeline(context.Background(), &dataset, testProblemConfig())
	require.NoError(t, err)

	return created
}

func TestAPIHandlers_CreatePipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name: "successful creation",
			requestBody: web.CreatePipelineRequest{
				Dataset: testDataset(),
				Config:  testProblemConfig(),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "dataset without schema",
			requestBody: web.CreatePipelineRequest{
				Dataset: models.Dataset{Name: "empty"},
				Config:  testProblemConfig(),
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "config with unknown direction",
			requestBody: func() web.CreatePipelineRequest {
				config := testProblemConfig()
				config.Objective.Direction = "down"

				return web.CreatePipelineRequest{Dataset: testDataset(), Config: config}
			}(),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			var req *http.Request
			if str, ok := tt.requestBody.(string); ok {
				req = httptest.NewRequest(http.MethodPost, "/pipelines", bytes.NewBufferString(str))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = jsonRequest(t, http.MethodPost, "/pipelines", tt.requestBody)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				var created models.Pipeline

				require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
				assert.NotEmpty(t, created.ID)
				assert.Equal(t, models.PipelineStatusCreated, created.Status)
				assert.Len(t, created.Stages, 10)
			}
		})
	}
}

func TestAPIHandlers_GetPipeline(t *testing.T) {
	t.Parallel()

	app, orchestrator := setupTestApp(t)
	created := createTestPipeline(t, orchestrator)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pipelines/"+created.ID, nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var found models.Pipeline

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	assert.Equal(t, created.ID, found.ID)

	missing, err := app.Test(httptest.NewRequest(http.MethodGet, "/pipelines/pl-missing", nil))
	require.NoError(t, err)

	defer func() { _ = missing.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPIHandlers_ListPipelines(t *testing.T) {
	t.Parallel()

	app, orchestrator := setupTestApp(t)
	createTestPipeline(t, orchestrator)
	createTestPipeline(t, orchestrator)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pipelines/", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response struct {
		Pipelines  []models.Pipeline `json:"pipelines"`
		TotalCount int               `json:"total_count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Len(t, response.Pipelines, 2)
	assert.Equal(t, 2, response.TotalCount)
}

func TestAPIHandlers_DeletePipeline(t *testing.T) {
	t.Parallel()

	app, orchestrator := setupTestApp(t)
	created := createTestPipeline(t, orchestrator)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/pipelines/"+created.ID, nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, err = orchestrator.Pipeline(context.Background(), created.ID)
	assert.Error(t, err)

	missing, err := app.Test(httptest.NewRequest(http.MethodDelete, "/pipelines/pl-missing", nil))
	require.NoError(t, err)

	defer func() { _ = missing.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPIHandlers_ExecutePipeline(t *testing.T) {
	t.Parallel()

	app, orchestrator := setupTestApp(t)
	created := createTestPipeline(t, orchestrator)

	resultsReq := httptest.NewRequest(http.MethodGet, "/pipelines/"+created.ID+"/results", nil)

	notReady, err := app.Test(resultsReq)
	require.NoError(t, err)

	defer func() { _ = notReady.Body.Close() }()

	assert.Equal(t, http.StatusConflict, notReady.StatusCode)

	req := jsonRequest(t, http.MethodPost, "/pipelines/"+created.ID+"/executions", web.ExecutePipelineRequest{
		Dataset: testDataset(),
	})

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted web.ExecutionAcceptedResponse

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	assert.Equal(t, created.ID, accepted.PipelineID)
	assert.Equal(t, "/pipelines/"+created.ID, accepted.PollURL)

	// The execution runs in the background; poll until it reaches a
	// terminal status.
	require.Eventually(t, func() bool {
		current, err := orchestrator.Pipeline(context.Background(), created.ID)
		if err != nil {
			return false
		}

		return current.IsTerminal()
	}, 10*time.Second, 50*time.Millisecond)

	final, err := orchestrator.Pipeline(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, models.PipelineStatusCompleted, final.Status)

	ready, err := app.Test(httptest.NewRequest(http.MethodGet, "/pipelines/"+created.ID+"/results", nil))
	require.NoError(t, err)

	defer func() { _ = ready.Body.Close() }()

	require.Equal(t, http.StatusOK, ready.StatusCode)

	var results models.PipelineResults

	require.NoError(t, json.NewDecoder(ready.Body).Decode(&results))
	assert.NotEmpty(t, results.Insights)

	// A finished pipeline rejects another execution.
	again, err := app.Test(jsonRequest(t, http.MethodPost, "/pipelines/"+created.ID+"/executions", web.ExecutePipelineRequest{
		Dataset: testDataset(),
	}))
	require.NoError(t, err)

	defer func() { _ = again.Body.Close() }()

	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestAPIHandlers_ExecutePipelineNotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/pipelines/pl-missing/executions", web.ExecutePipelineRequest{
		Dataset: testDataset(),
	}))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_Experiments(t *testing.T) {
	t.Parallel()

	app, orchestrator := setupTestApp(t)
	created := createTestPipeline(t, orchestrator)
	require.NotEmpty(t, created.ExperimentIDs)
	experimentID := created.ExperimentIDs[0]

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/experiments/"+experimentID, nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var experiment models.Experiment

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&experiment))
	assert.Contains(t, experiment.Tags, "pipeline:"+created.ID)

	runs, err := app.Test(httptest.NewRequest(http.MethodGet, "/experiments/"+experimentID+"/runs", nil))
	require.NoError(t, err)

	defer func() { _ = runs.Body.Close() }()

	assert.Equal(t, http.StatusOK, runs.StatusCode)

	missing, err := app.Test(httptest.NewRequest(http.MethodGet, "/experiments/exp-missing", nil))
	require.NoError(t, err)

	defer func() { _ = missing.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health["status"])
}
