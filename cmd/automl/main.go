// Package main provides the AutoML command-line interface: validate input
// documents and run pipelines end to end from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	cli "github.com/urfave/cli/v3"

	"github.com/gchahal1982/G3DAI-sub009/pkg/cmd"
	"github.com/gchahal1982/G3DAI-sub009/pkg/log"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/tracking"
)

func main() {
	command := &cli.Command{
		Name:                  "automl",
		Usage:                 "Run AutoML pipelines from the command line",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Create a pipeline and execute all stages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dataset",
				Aliases:  []string{"d"},
				Usage:    "Path to the dataset description JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the problem configuration JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
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
			&cli.IntFlag{
				Name:    "max-parallel-models",
				Usage:   "Concurrent model operations per stage",
				Sources: cli.EnvVars("MAX_PARALLEL_MODELS"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall execution deadline (0 disables it)",
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
			logger := log.WithModule("cli")

			dataset, err := loadDataset(command.String("dataset"))
			if err != nil {
				return err
			}

			config, err := loadProblemConfig(command.String("config"))
			if err != nil {
				return err
			}

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

			tracker := tracking.NewTracker(store.Experiments(), logger)

			orchestrator, err := pipeline.NewOrchestrator(
				store,
				tracker,
				cmd.NewBaselineCollaborators(),
				locks,
				eventBus,
				nil,
				logger,
				pipeline.Config{
					MaxParallelModels: command.Int("max-parallel-models"),
					PipelineTimeout:   command.Duration("timeout"),
				},
			)
			if err != nil {
				return err
			}

			created, err := orchestrator.CreateMLPipeline(ctx, dataset, *config)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Created pipeline", "pipeline_id", created.ID)

			results, err := orchestrator.ExecutePipeline(ctx, created.ID, dataset)
			if err != nil {
				return err
			}

			printResults(results)

			return nil
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate dataset and problem configuration documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dataset",
				Aliases:  []string{"d"},
				Usage:    "Path to the dataset description JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the problem configuration JSON file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			dataset, err := loadDataset(command.String("dataset"))
			if err != nil {
				return err
			}

			config, err := loadProblemConfig(command.String("config"))
			if err != nil {
				return err
			}

			validate := validator.New(validator.WithRequiredStructEnabled())
			if err := validate.Struct(dataset); err != nil {
				return fmt.Errorf("invalid dataset: %w", err)
			}

			if err := config.Validate(validate); err != nil {
				return err
			}

			fmt.Printf("OK: dataset %q (%d columns) and %s config are valid\n",
				dataset.Name, len(dataset.Schema), config.ProblemType)

			return nil
		},
	}
}

func printResults(results *models.PipelineResults) {
	if len(results.Leaderboard) == 0 {
		fmt.Println("No model passed validation; see insights below.")
	} else {
		writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(writer, "RANK\tALGORITHM\tSCORE\tCV MEAN\tCV STD")

		for _, entry := range results.Leaderboard {
			fmt.Fprintf(writer, "%d\t%s\t%.4f\t%.4f\t%.4f\n",
				entry.Rank, entry.Algorithm, entry.Score, entry.CVMean, entry.CVStdDev)
		}

		_ = writer.Flush()
	}

	for _, insight := range results.Insights {
		fmt.Printf("[%s] %s\n", insight.Category, insight.Message)

		if insight.Recommendation != "" {
			fmt.Printf("  recommendation: %s\n", insight.Recommendation)
		}
	}
}
