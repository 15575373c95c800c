// Package postgresql provides PostgreSQL persistence for pipelines and
// experiments.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver registration.
	_ "github.com/lib/pq"

	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	pipelineRepo   *PipelineRepository
	experimentRepo *ExperimentRepository
}

// NewPersistence opens a connection, runs migrations, and returns the
// persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		pipelineRepo:   NewPipelineRepository(database, logger),
		experimentRepo: NewExperimentRepository(database, logger),
	}, nil
}

// Pipelines returns the pipeline repository.
func (p *Persistence) Pipelines() persistence.PipelineRepository {
	return p.pipelineRepo
}

// Experiments returns the experiment repository.
func (p *Persistence) Experiments() persistence.ExperimentRepository {
	return p.experimentRepo
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
