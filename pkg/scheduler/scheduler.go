// Package scheduler runs recurring retraining jobs. Each tick creates a
// fresh pipeline from the job's dataset and problem configuration and
// executes it, so every retraining gets its own audit trail.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
	"github.com/gchahal1982/G3DAI-sub009/pkg/pipeline"
)

// Job describes one recurring retraining.
type Job struct {
	Name     string
	CronExpr string
	Enabled  bool
	Dataset  *models.Dataset
	Config   models.ProblemConfig
}

// RetrainingScheduler drives retraining jobs through the orchestrator.
type RetrainingScheduler struct {
	orchestrator *pipeline.Orchestrator
	logger       *slog.Logger
	cron         *cron.Cron
	jobs         []Job
	entries      map[string]cron.EntryID
	mutex        sync.Mutex
	cancel       context.CancelFunc
}

func NewRetrainingScheduler(orchestrator *pipeline.Orchestrator, logger *slog.Logger, jobs []Job) *RetrainingScheduler {
	return &RetrainingScheduler{
		orchestrator: orchestrator,
		logger:       logger.With("module", "retraining_scheduler"),
		jobs:         jobs,
		entries:      make(map[string]cron.EntryID),
	}
}

func (s *RetrainingScheduler) Validate() error {
	if len(s.jobs) == 0 {
		return errors.New("no retraining jobs configured")
	}

	for _, job := range s.jobs {
		if job.Name == "" {
			return errors.New("retraining job name is required")
		}

		if job.Dataset == nil {
			return fmt.Errorf("dataset required for retraining job %s", job.Name)
		}

		if _, err := cron.ParseStandard(job.CronExpr); err != nil {
			return fmt.Errorf("invalid cron expression '%s' for job %s: %w", job.CronExpr, job.Name, err)
		}
	}

	return nil
}

func (s *RetrainingScheduler) Start(ctx context.Context) error {
	if err := s.Validate(); err != nil {
		return err
	}

	s.logger.Info("Starting retraining scheduler", "jobs_count", len(s.jobs))

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	for _, job := range s.jobs {
		if !job.Enabled {
			s.logger.Info("Retraining job is disabled, skipping", "job", job.Name)

			continue
		}

		entryID, err := s.cron.AddFunc(job.CronExpr, func() {
			s.runJob(runCtx, job)
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job for %s: %w", job.Name, err)
		}

		s.mutex.Lock()
		s.entries[job.Name] = entryID
		s.mutex.Unlock()

		s.logger.Info("Scheduled retraining job", "job", job.Name, "cron", job.CronExpr)
	}

	s.cron.Start()

	return nil
}

func (s *RetrainingScheduler) runJob(ctx context.Context, job Job) {
	logger := s.logger.With("job", job.Name)
	logger.Info("Retraining triggered")

	created, err := s.orchestrator.CreateMLPipeline(ctx, job.Dataset, job.Config)
	if err != nil {
		logger.Error("Failed to create retraining pipeline", "error", err)

		return
	}

	results, err := s.orchestrator.ExecutePipeline(ctx, created.ID, job.Dataset)
	if err != nil {
		logger.Error("Retraining pipeline failed", "pipeline_id", created.ID, "error", err)

		return
	}

	bestModel := ""
	if results.BestModel != nil {
		bestModel = results.BestModel.Algorithm
	}

	logger.Info("Retraining pipeline completed",
		"pipeline_id", created.ID,
		"best_model", bestModel,
		"leaderboard_size", len(results.Leaderboard),
	)
}

func (s *RetrainingScheduler) Stop(ctx context.Context) error {
	s.logger.Info("Stopping retraining scheduler")

	if s.cancel != nil {
		s.cancel()
	}

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}

	s.mutex.Lock()
	s.entries = make(map[string]cron.EntryID)
	s.mutex.Unlock()

	return nil
}
