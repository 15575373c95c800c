package locking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Minute

// releaseScript deletes the key only when this process still owns it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// RedisLock is a distributed execution lock for multi-process deployments.
// Locks expire after a TTL so a crashed worker cannot strand a pipeline
// forever.
type RedisLock struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLock creates a Redis-backed execution lock.
func NewRedisLock(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisLock{
		client: client,
		ttl:    ttl,
		logger: logger.With("module", "redis_lock"),
	}
}

func lockKey(pipelineID string) string {
	return "automl:pipeline-lock:" + pipelineID
}

// Acquire takes the lock via SET NX with a unique owner token.
func (l *RedisLock) Acquire(ctx context.Context, pipelineID string) (func(), error) {
	token := uuid.New().String()
	key := lockKey(pipelineID)

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock for pipeline %s: %w", pipelineID, err)
	}

	if !acquired {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrAlreadyLocked)
	}

	release := func() {
		// Release uses a fresh context: the execution context may already be
		// cancelled when the deferred release runs.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := l.client.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
		if err != nil {
			l.logger.Error("Failed to release pipeline lock", "pipeline_id", pipelineID, "error", err)
		}
	}

	return release, nil
}
