package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	bus.Subscribe(EventBookingCreated, func(event *Event) error {
		received = event
		return nil
	})

	err := bus.PublishJSON(EventBookingCreated, 7, BookingEventPayload{BookingID: 7, Status: "WAITING"})
	require.NoError(t, err)
	require.NotNil(t, received)

	assert.Equal(t, EventBookingCreated, received.Type)
	assert.EqualValues(t, 7, received.AggregateID)
	assert.NotEmpty(t, received.ID)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, "WAITING", decoded.Status)
}

func TestEventBus_WildcardAndTyped(t *testing.T) {
	bus := NewEventBus()
	var typed, all int

	bus.Subscribe(EventItemCreated, func(_ *Event) error { typed++; return nil })
	bus.SubscribeAll(func(_ *Event) error { all++; return nil })

	require.NoError(t, bus.Publish(&Event{Type: EventItemCreated}))
	require.NoError(t, bus.Publish(&Event{Type: EventRequestCreated}))

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, all)
}

func TestEventBus_JoinsHandlerErrors(t *testing.T) {
	bus := NewEventBus()
	boom := errors.New("boom")
	called := 0

	bus.SubscribeAll(func(_ *Event) error { called++; return boom })
	bus.SubscribeAll(func(_ *Event) error { called++; return nil })

	err := bus.Publish(&Event{Type: EventUserCreated})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, called)
}

func TestEventBus_NilIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventUserCreated, 1, UserEventPayload{UserID: 1}))
}

func TestNewJSONEvent_BadPayload(t *testing.T) {
	_, err := NewJSONEvent(EventUserCreated, 1, make(chan int))
	assert.Error(t, err)
}
