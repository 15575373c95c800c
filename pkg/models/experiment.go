package models

import "time"

// Experiment groups the runs recorded for one pipeline.
type Experiment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=1"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	PipelineID  string    `json:"pipeline_id,omitempty"`
	RunIDs      []string  `json:"run_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunStatus represents the lifecycle state of an experiment run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusKilled    RunStatus = "killed"
)

// Artifact is a named blob attached to a run, such as an interpretability
// report.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	Type string `json:"type"`
	Data []byte `json:"data,omitempty"`
}

// RunLogEntry is a timestamped line in the run's audit log.
type RunLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// ExperimentRun records the parameters, metrics, artifacts, and logs of one
// pipeline execution. A run transitions to a terminal status exactly once,
// mirroring the pipeline's terminal status.
type ExperimentRun struct {
	ID           string             `json:"id"`
	ExperimentID string             `json:"experiment_id"`
	Status       RunStatus          `json:"status"`
	Params       map[string]string  `json:"params,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Artifacts    []Artifact         `json:"artifacts,omitempty"`
	Logs         []RunLogEntry      `json:"logs,omitempty"`
	Error        string             `json:"error,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
	Duration     time.Duration      `json:"duration,omitempty"`
}

// Terminal reports whether the run reached a final status.
func (r *ExperimentRun) Terminal() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusFailed, RunStatusKilled:
		return true
	default:
		return false
	}
}
