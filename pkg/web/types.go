// Package web provides the HTTP API for pipeline and experiment management.
package web

import "github.com/gchahal1982/G3DAI-sub009/pkg/models"

// CreatePipelineRequest is the request body for creating a pipeline.
type CreatePipelineRequest struct {
	Dataset models.Dataset       `json:"dataset" validate:"required"`
	Config  models.ProblemConfig `json:"config"  validate:"required"`
}

// ExecutePipelineRequest is the request body for starting an execution. The
// dataset is resubmitted because pipelines store only its schema-level
// description, never the data itself.
type ExecutePipelineRequest struct {
	Dataset models.Dataset `json:"dataset" validate:"required"`
}

// ExecutionAcceptedResponse acknowledges an asynchronous execution start.
type ExecutionAcceptedResponse struct {
	PipelineID string `json:"pipeline_id"`
	Status     string `json:"status"`
	PollURL    string `json:"poll_url"`
}
