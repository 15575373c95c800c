// Package eventbus publishes and consumes pipeline lifecycle events.
package eventbus

import (
	"context"

	"github.com/gchahal1982/G3DAI-sub009/pkg/events"
)

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventBus is the transport-agnostic pub/sub surface the orchestrator and
// API publish pipeline lifecycle events through.
type EventBus interface {
	GenerateID() string
	Publish(ctx context.Context, key string, event events.Event) error
	Subscribe(ctx context.Context) error
	Handle(eventType events.EventType, handler EventHandler) error
	Close() error
}
