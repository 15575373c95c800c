package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gchahal1982/G3DAI-sub009/pkg/channels/gochannel"
	"github.com/gchahal1982/G3DAI-sub009/pkg/eventbus"
	"github.com/gchahal1982/G3DAI-sub009/pkg/events"
	"github.com/gchahal1982/G3DAI-sub009/pkg/models"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestPublishAndSubscribe(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.PipelineCreated, 1)

	err := bus.Handle(events.PipelineCreatedEvent, func(_ context.Context, event any) error {
		created, ok := event.(*events.PipelineCreated)
		if !ok {
			t.Errorf("unexpected event type %T", event)

			return nil
		}

		received <- created

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	published := events.PipelineCreated{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.PipelineCreatedEvent,
			Timestamp:  time.Now().UTC(),
			PipelineID: "pl-1",
		},
		Name:         "churn-automl",
		ExperimentID: "exp-1",
	}
	require.NoError(t, bus.Publish(ctx, "pl-1", published))

	select {
	case got := <-received:
		assert.Equal(t, "pl-1", got.PipelineID)
		assert.Equal(t, "churn-automl", got.Name)
		assert.Equal(t, "exp-1", got.ExperimentID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnhandledEventTypeIsAcked(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *events.StageFinished, 2)

	err := bus.Handle(events.StageFinishedEvent, func(_ context.Context, event any) error {
		finished, ok := event.(*events.StageFinished)
		require.True(t, ok)

		received <- finished

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	// No handler is registered for execution.started; the bus acks and
	// moves on without stalling later deliveries.
	require.NoError(t, bus.Publish(ctx, "pl-1", events.ExecutionStarted{
		BaseEvent: events.BaseEvent{ID: "1", Type: events.ExecutionStartedEvent, PipelineID: "pl-1"},
		RunID:     "run-1",
	}))
	require.NoError(t, bus.Publish(ctx, "pl-1", events.StageFinished{
		BaseEvent: events.BaseEvent{ID: "2", Type: events.StageFinishedEvent, PipelineID: "pl-1"},
		RunID:     "run-1",
		Stage:     models.StageDataValidation,
		Status:    models.StageStatusCompleted,
	}))

	select {
	case got := <-received:
		assert.Equal(t, models.StageDataValidation, got.Stage)
		assert.Equal(t, models.StageStatusCompleted, got.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
