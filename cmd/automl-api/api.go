package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/web"
)

type API struct {
	logger       *slog.Logger
	orchestrator *pipeline.Orchestrator
	persistence  persistence.Persistence
	validate     *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	orchestrator *pipeline.Orchestrator,
	store persistence.Persistence,
) *API {
	return &API{
		logger:       logger,
		orchestrator: orchestrator,
		persistence:  store,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.orchestrator, a.persistence, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("AutoML API")
	})

	p := app.Group("/pipelines")
	p.Get("/", handlers.GetPipelines)
	p.Post("/", handlers.CreatePipeline)
	p.Get("/:id", handlers.GetPipeline)
	p.Delete("/:id", handlers.DeletePipeline)
	p.Post("/:id/executions", handlers.ExecutePipeline)
	p.Get("/:id/results", handlers.GetPipelineResults)

	e := app.Group("/experiments")
	e.Get("/:id", handlers.GetExperiment)
	e.Get("/:id/runs", handlers.GetExperimentRuns)

	app.Get("/runs/:id", handlers.GetRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
