package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
)

type APIHandlers struct {
	orchestrator *pipeline.Orchestrator
	persistence  persistence.Persistence
	validator    *validator.Validate
	logger       *slog.Logger
}

func NewAPIHandlers(
	orchestrator *pipeline.Orchestrator,
	store persistence.Persistence,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		orchestrator: orchestrator,
		persistence:  store,
		validator:    validate,
		logger:       logger.With("module", "api_handlers"),
	}
}

func (h *APIHandlers) CreatePipeline(c fiber.Ctx) error {
	var req CreatePipelineRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(&req.Dataset); err != nil {
		return badRequest(c, err.Error())
	}

	if err := req.Config.Validate(h.validator); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.orchestrator.CreateMLPipeline(c.Context(), &req.Dataset, req.Config)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetPipelines(c fiber.Ctx) error {
	pipelines, err := h.persistence.Pipelines().List(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"pipelines":   pipelines,
		"total_count": len(pipelines),
	})
}

func (h *APIHandlers) GetPipeline(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Pipeline ID is required")
	}

	found, err := h.orchestrator.Pipeline(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) DeletePipeline(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Pipeline ID is required")
	}

	if err := h.persistence.Pipelines().Delete(c.Context(), id); err != nil {
		return handlePipelineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecutePipeline starts an execution asynchronously. The caller polls the
// pipeline resource for progress and results.
func (h *APIHandlers) ExecutePipeline(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Pipeline ID is required")
	}

	var req ExecutePipelineRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(&req.Dataset); err != nil {
		return badRequest(c, err.Error())
	}

	current, err := h.orchestrator.Pipeline(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	if current.IsTerminal() {
		return conflict(c, "pipeline_finished", "pipeline already reached a terminal status")
	}

	if current.Status == models.PipelineStatusRunning {
		return conflict(c, "pipeline_busy", "pipeline execution already in progress")
	}

	// The execution outlives the request; failures land on the pipeline
	// record and the experiment run, which the caller polls.
	dataset := req.Dataset

	go func() {
		ctx := context.Background()

		if _, err := h.orchestrator.ExecutePipeline(ctx, id, &dataset); err != nil {
			h.logger.ErrorContext(ctx, "Pipeline execution failed", "pipeline_id", id, "error", err)
		}
	}()

	return c.Status(fiber.StatusAccepted).JSON(ExecutionAcceptedResponse{
		PipelineID: id,
		Status:     string(models.PipelineStatusRunning),
		PollURL:    "/pipelines/" + id,
	})
}

func (h *APIHandlers) GetPipelineResults(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Pipeline ID is required")
	}

	found, err := h.orchestrator.Pipeline(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	if found.Results == nil {
		return conflict(c, "results_not_ready", "pipeline has not produced results yet")
	}

	return c.JSON(found.Results)
}

func (h *APIHandlers) GetExperiment(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Experiment ID is required")
	}

	experiment, err := h.persistence.Experiments().GetExperiment(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	return c.JSON(experiment)
}

func (h *APIHandlers) GetExperimentRuns(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Experiment ID is required")
	}

	if _, err := h.persistence.Experiments().GetExperiment(c.Context(), id); err != nil {
		return handlePipelineError(c, err)
	}

	runs, err := h.persistence.Experiments().RunsByExperiment(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	return c.JSON(fiber.Map{
		"runs":        runs,
		"total_count": len(runs),
	})
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Run ID is required")
	}

	run, err := h.persistence.Experiments().GetRun(c.Context(), id)
	if err != nil {
		return handlePipelineError(c, err)
	}

	return c.JSON(run)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "AutoML API is healthy"
	httpStatus := http.StatusOK

	if err := h.persistence.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "AutoML API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
