// Package main provides the AutoML API server.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/gchahal1982/G3DAI-sub009/pkg/cmd"
	"github.com/gchahal1982/G3DAI-sub009/pkg/log"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/tracking"
)

const defaultPort = 9081

func main() {
	command := &cli.Command{
		Name:                  "automl-api",
		Usage:                 "Create and manage AutoML pipelines",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, memory, none)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for distributed execution locks",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.IntFlag{
				Name:    "max-parallel-models",
				Usage:   "Concurrent model operations per stage",
				Sources: cli.EnvVars("MAX_PARALLEL_MODELS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing AutoML API")

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()
			}

			locks, err := cmd.NewExecutionLock(command.String("redis-url"), logger)
			if err != nil {
				return err
			}

			tracer, err := cmd.NewTracer(ctx, command.Bool("tracing"), "automl-api")
			if err != nil {
				return err
			}

			tracker := tracking.NewTracker(store.Experiments(), logger)

			orchestrator, err := pipeline.NewOrchestrator(
				store,
				tracker,
				cmd.NewBaselineCollaborators(),
				locks,
				eventBus,
				tracer,
				logger,
				pipeline.Config{
					MaxParallelModels: command.Int("max-parallel-models"),
				},
			)
			if err != nil {
				return err
			}

			api := NewAPI(logger, orchestrator, store)

			return api.Start(command.Int("port"))
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
