package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

func quietBus() *EventBus {
	return NewEventBusWithLogger(zerolog.Nop())
}

func TestEventBus(t *testing.T) {
	bus := quietBus()

	var receivedEvent Event
	bus.SubscribeFunc(TypeGameStarted, func(e Event) {
		receivedEvent = e
	})

	bus.Publish(NewGameStartedEvent("test-game", 4, "white"))

	require.NotNil(t, receivedEvent, "Event should have been received")
	assert.Equal(t, TypeGameStarted, receivedEvent.Type())
	assert.Equal(t, "test-game", receivedEvent.GameID())
	assert.False(t, receivedEvent.Timestamp().IsZero())
}

func TestEventBusMultipleHandlers(t *testing.T) {
	bus := quietBus()

	calls := 0
	id1 := bus.SubscribeFunc(TypeMoveExecuted, func(e Event) { calls++ })
	id2 := bus.SubscribeFunc(TypeMoveExecuted, func(e Event) { calls++ })
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, bus.GetFuncHandlerCount(TypeMoveExecuted))

	bus.Publish(NewMoveExecutedEvent("g", EventMetadata{Move: 1}, "relocation", 0, core.NoPiece,
		core.NewCoordinate(0, 0), core.NewCoordinate(1, 0)))
	assert.Equal(t, 2, calls)

	bus.Unsubscribe(id1)
	assert.Equal(t, 1, bus.GetFuncHandlerCount(TypeMoveExecuted))
	bus.Publish(NewMoveExecutedEvent("g", EventMetadata{Move: 2}, "relocation", 0, core.NoPiece,
		core.NewCoordinate(1, 0), core.NewCoordinate(2, 0)))
	assert.Equal(t, 3, calls)
}

// TestSubscriber is a test implementation of Subscriber
type TestSubscriber struct {
	id              string
	interestedTypes map[string]bool
	receivedEvents  []Event
}

func (ts *TestSubscriber) ID() string { return ts.id }

func (ts *TestSubscriber) HandleEvent(e Event) {
	ts.receivedEvents = append(ts.receivedEvents, e)
}

func (ts *TestSubscriber) InterestedIn(eventType string) bool {
	if ts.interestedTypes == nil {
		return true
	}
	return ts.interestedTypes[eventType]
}

func TestEventBusSubscriber(t *testing.T) {
	bus := quietBus()

	subscriber := &TestSubscriber{
		id: "test-subscriber",
		interestedTypes: map[string]bool{
			TypeGameCreated:    true,
			TypeBoardCorrupted: true,
		},
	}
	bus.Subscribe(subscriber)
	assert.Equal(t, 1, bus.GetSubscriberCount())

	bus.Publish(NewGameCreatedEvent("test-game", 8, 8))
	bus.Publish(NewStateTransitionEvent("test-game", "Setup", "Running", "start"))
	bus.Publish(NewBoardCorruptedEvent("test-game", EventMetadata{Move: 4}, MoveFailure{Code: "COMPENSATION_FAILED"}))

	require.Len(t, subscriber.receivedEvents, 2)
	assert.Equal(t, TypeGameCreated, subscriber.receivedEvents[0].Type())
	assert.Equal(t, TypeBoardCorrupted, subscriber.receivedEvents[1].Type())

	bus.Unsubscribe(subscriber.ID())
	assert.Equal(t, 0, bus.GetSubscriberCount())
	bus.Publish(NewGameCreatedEvent("test-game", 8, 8))
	assert.Len(t, subscriber.receivedEvents, 2)
}

type panickingSubscriber struct{}

func (panickingSubscriber) ID() string               { return "boom" }
func (panickingSubscriber) HandleEvent(Event)        { panic("subscriber failure") }
func (panickingSubscriber) InterestedIn(string) bool { return true }

func TestEventBusIsolatesPanics(t *testing.T) {
	bus := quietBus()
	bus.Subscribe(panickingSubscriber{})

	delivered := false
	bus.SubscribeFunc(TypeGameCreated, func(Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(NewGameCreatedEvent("g", 8, 8))
	})
	assert.True(t, delivered)
}
