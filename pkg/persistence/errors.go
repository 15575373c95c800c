// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrPipelineNotFound indicates a pipeline was not found by the given id.
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrExperimentNotFound indicates an experiment was not found by the given id.
	ErrExperimentNotFound = errors.New("experiment not found")

	// ErrRunNotFound indicates an experiment run was not found by the given id.
	ErrRunNotFound = errors.New("experiment run not found")
)

// PipelineError wraps pipeline storage errors with operation context.
type PipelineError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save")
	PipelineID string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s operation failed for pipeline %s: %v", e.Op, e.PipelineID, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func (e *PipelineError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewPipelineError creates a new pipeline storage error with context.
func NewPipelineError(op, pipelineID string, err error) *PipelineError {
	return &PipelineError{Op: op, PipelineID: pipelineID, Err: err}
}

// IsPipelineNotFound checks if an error indicates a missing pipeline.
func IsPipelineNotFound(err error) bool {
	return errors.Is(err, ErrPipelineNotFound)
}

// IsExperimentNotFound checks if an error indicates a missing experiment.
func IsExperimentNotFound(err error) bool {
	return errors.Is(err, ErrExperimentNotFound)
}

// IsRunNotFound checks if an error indicates a missing run.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
