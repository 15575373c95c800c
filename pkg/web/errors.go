package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handlePipelineError maps orchestrator and persistence errors to problem
// responses.
func handlePipelineError(c fiber.Ctx, err error) error {
	var stageErr *pipeline.StageError

	switch {
	case persistence.IsPipelineNotFound(err):
		return notFound(c, "pipeline not found")

	case persistence.IsExperimentNotFound(err):
		return notFound(c, "experiment not found")

	case persistence.IsRunNotFound(err):
		return notFound(c, "experiment run not found")

	case errors.Is(err, pipeline.ErrPipelineBusy):
		return conflict(c, "pipeline_busy", "pipeline execution already in progress")

	case errors.Is(err, pipeline.ErrPipelineFinished):
		return conflict(c, "pipeline_finished", "pipeline already reached a terminal status")

	case errors.As(err, &stageErr):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType(stageErr.Kind).
			WithDetail(stageErr.Message)

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	default:
		return internalError(c, err)
	}
}
