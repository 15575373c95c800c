// Package locking guards against concurrent execution of the same pipeline.
// The orchestrator acquires a lock keyed by pipeline id before running and
// releases it when execution finishes, regardless of outcome.
package locking

import (
	"context"
	"errors"
)

// ErrAlreadyLocked indicates another execution currently holds the lock.
var ErrAlreadyLocked = errors.New("pipeline execution lock already held")

// ExecutionLock serializes executions per pipeline id.
type ExecutionLock interface {
	// Acquire takes the lock for the given pipeline id and returns a release
	// function. It fails fast with ErrAlreadyLocked when the lock is held.
	Acquire(ctx context.Context, pipelineID string) (release func(), err error)
}
