// Package cmd provides common initialization for the command-line binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence/file"
	"github.com/gchahal1982/G3DAI-sub009/pkg/persistence/postgresql"
)

// NewPersistence builds the persistence layer from the database URL scheme.
// PostgreSQL URLs get the SQL implementation, anything else is treated as a
// file system root.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
