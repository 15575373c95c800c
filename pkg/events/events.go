// Package events defines event types for pipeline lifecycle notifications.
package events

import (
	"time"

	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

type EventType string

// Topic is the channel all pipeline lifecycle events are published to.
const Topic = "automl.pipeline.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	PipelineCreatedEvent    EventType = "pipeline.created"
	ExecutionStartedEvent   EventType = "pipeline.execution.started"
	StageStartedEvent       EventType = "pipeline.stage.started"
	StageFinishedEvent      EventType = "pipeline.stage.finished"
	ExecutionCompletedEvent EventType = "pipeline.execution.completed"
	ExecutionFailedEvent    EventType = "pipeline.execution.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	PipelineID string         `json:"pipeline_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Event is implemented by every pipeline lifecycle event.
type Event interface {
	GetType() EventType
}

type PipelineCreated struct {
	BaseEvent

	Name         string `json:"name"`
	ExperimentID string `json:"experiment_id,omitempty"`
}

func (e PipelineCreated) GetType() EventType {
	return PipelineCreatedEvent
}

type ExecutionStarted struct {
	BaseEvent

	RunID string `json:"run_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type StageStarted struct {
	BaseEvent

	RunID string           `json:"run_id"`
	Stage models.StageType `json:"stage"`
}

func (e StageStarted) GetType() EventType {
	return StageStartedEvent
}

type StageFinished struct {
	BaseEvent

	RunID    string             `json:"run_id"`
	Stage    models.StageType   `json:"stage"`
	Status   models.StageStatus `json:"status"`
	Duration time.Duration      `json:"duration"`
	Error    string             `json:"error,omitempty"`
}

func (e StageFinished) GetType() EventType {
	return StageFinishedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	RunID     string        `json:"run_id"`
	Duration  time.Duration `json:"duration"`
	BestModel string        `json:"best_model,omitempty"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	RunID    string           `json:"run_id"`
	Stage    models.StageType `json:"stage"`
	Error    string           `json:"error"`
	Duration time.Duration    `json:"duration"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}
