package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventType EventType = "test.event"

func TestPublish_DispatchesInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	bus.Subscribe(testEventType, func(Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(testEventType, func(Event) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe("other.event", func(Event) error {
		calls = append(calls, "other")
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, nil)))

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	count := 0
	unsubscribe := bus.Subscribe(testEventType, func(Event) error {
		count++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, nil)))
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, nil)))

	assert.Equal(t, 1, count)
}

func TestSubscribeTyped(t *testing.T) {
	bus := NewEventBus()
	var received []CalendarEventsAdded
	SubscribeTyped(bus, CalendarEventsAddedType, func(e EventT[CalendarEventsAdded]) error {
		received = append(received, e.Data)
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventsAddedType, CalendarEventsAdded{Calendar: "Work"})))
	require.NoError(t, bus.Publish(NewEvent(context.Background(), CalendarEventsAddedType, "wrong payload")))

	require.Len(t, received, 1)
	assert.Equal(t, "Work", received[0].Calendar)
}

func TestPublish_CollectsErrorsAndPanics(t *testing.T) {
	bus := NewEventBus()
	handlerErr := errors.New("handler failed")
	reached := false
	bus.Subscribe(testEventType, func(Event) error { return handlerErr })
	bus.Subscribe(testEventType, func(Event) error { panic("boom") })
	bus.Subscribe(testEventType, func(Event) error {
		reached = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), testEventType, nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, handlerErr)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, reached)
}

func TestPublish_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(testEventType, func(Event) error {
		called = true
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, testEventType, nil))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
