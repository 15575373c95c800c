package locking

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLock is a process-local execution lock, sufficient when a single
// process owns all pipeline executions.
type MemoryLock struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewMemoryLock creates an in-memory execution lock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]bool)}
}

// Acquire takes the lock for a pipeline id.
func (l *MemoryLock) Acquire(_ context.Context, pipelineID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[pipelineID] {
		return nil, fmt.Errorf("pipeline %s: %w", pipelineID, ErrAlreadyLocked)
	}

	l.held[pipelineID] = true

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		delete(l.held, pipelineID)
	}

	return release, nil
}
