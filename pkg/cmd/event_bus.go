package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/gchahal1982/G3DAI-sub009/pkg/channels/gochannel"
	"github.com/gchahal1982/G3DAI-sub009/pkg/channels/kafka"
	"github.com/gchahal1982/G3DAI-sub009/pkg/eventbus"
)

// NewEventBus builds an event bus for the given provider. "none" disables
// event publishing entirely.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "automl")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil

	case "memory":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil

	case "none", "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
