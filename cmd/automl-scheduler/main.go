// Package main provides the retraining scheduler daemon. It reads a jobs
// file and re-runs each configured pipeline on its cron schedule.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/gchahal1982/G3DAI-sub009/pkg/cmd"
	"github.com/gchahal1982/G3DAI-sub009/pkg/log"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
	"github.com/gchahal1982/G3DAI-sub009/pkg/scheduler"
	"github.com/gchahal1982/G3DAI-sub009/pkg/tracking"
)

// jobFile is the on-disk description of one retraining job.
type jobFile struct {
	Name    string               `json:"name"`
	Cron    string               `json:"cron"`
	Enabled *bool                `json:"enabled,omitempty"`
	Dataset models.Dataset       `json:"dataset"`
	Config  models.ProblemConfig `json:"config"`
}

func loadJobs(path string) ([]scheduler.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	var entries []jobFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode jobs file: %w", err)
	}

	jobs := make([]scheduler.Job, 0, len(entries))

	for _, entry := range entries {
		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}

		dataset := entry.Dataset

		jobs = append(jobs, scheduler.Job{
			Name:     entry.Name,
			CronExpr: entry.Cron,
			Enabled:  enabled,
			Dataset:  &dataset,
			Config:   entry.Config,
		})
	}

	return jobs, nil
}

func main() {
	command := &cli.Command{
		Name:  "automl-scheduler",
		Usage: "Run recurring pipeline retraining jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "jobs",
				Aliases:  []string{"j"},
				Usage:    "Path to the retraining jobs JSON file",
				Required: true,
				Sources:  cli.EnvVars("JOBS_FILE"),
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
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("scheduler")

			jobs, err := loadJobs(command.String("jobs"))
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
				pipeline.Config{},
			)
			if err != nil {
				return err
			}

			retraining := scheduler.NewRetrainingScheduler(orchestrator, logger, jobs)
			if err := retraining.Start(ctx); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			return retraining.Stop(ctx)
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
