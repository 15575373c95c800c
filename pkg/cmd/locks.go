package cmd

import (
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/gchahal1982/G3DAI-sub009/pkg/locking"
)

// NewExecutionLock builds a Redis-backed execution lock when a Redis URL is
// configured, otherwise a process-local one.
func NewExecutionLock(redisURL string, logger *slog.Logger) (locking.ExecutionLock, error) {
	if redisURL == "" {
		return locking.NewMemoryLock(), nil
	}

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return locking.NewRedisLock(redis.NewClient(options), 0, logger), nil
}
