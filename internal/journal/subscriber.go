package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/chesstx/internal/game/events"
)

const recordTimeout = 2 * time.Second

// Subscriber writes move outcome events and lifecycle changes to a Store
type Subscriber struct {
	store     *Store
	logger    zerolog.Logger
	interests map[string]bool
}

// NewSubscriber creates an event bus subscriber backed by store
func NewSubscriber(store *Store, logger zerolog.Logger) *Subscriber {
	interests := map[string]bool{
		events.TypeBoardRecovered:  true,
		events.TypeStateTransition: true,
	}
	for _, t := range events.MoveTypes {
		interests[t] = true
	}
	return &Subscriber{
		store:     store,
		logger:    logger.With().Str("component", "journal").Logger(),
		interests: interests,
	}
}

func (s *Subscriber) ID() string { return "journal" }

func (s *Subscriber) InterestedIn(eventType string) bool {
	return s.interests[eventType]
}

// HandleEvent records the event. Write failures are logged, never returned to
// the publisher.
func (s *Subscriber) HandleEvent(event events.Event) {
	entry, err := entryOf(event)
	if err != nil {
		s.logger.Error().Err(err).Str("event_type", event.Type()).Msg("Failed to encode journal entry")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.Error().
			Err(err).
			Str("game_id", event.GameID()).
			Str("event_type", event.Type()).
			Msg("Failed to record journal entry")
	}
}

func entryOf(event events.Event) (Entry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		GameID:    event.GameID(),
		EventType: event.Type(),
		Actor:     -1,
		Payload:   string(payload),
		CreatedAt: event.Timestamp().UTC(),
	}

	switch ev := event.(type) {
	case *events.MoveExecutedEvent:
		e.Move, e.Side = ev.Metadata.Move, ev.Metadata.Side
		e.Variant = ev.Variant
		e.Actor = int(ev.Actor)
	case *events.MoveRejectedEvent:
		fillFailure(&e, ev.Metadata, ev.MoveFailure)
	case *events.MoveRolledBackEvent:
		fillFailure(&e, ev.Metadata, ev.MoveFailure)
	case *events.BoardCorruptedEvent:
		fillFailure(&e, ev.Metadata, ev.MoveFailure)
	case *events.StateTransitionEvent:
		e.Reason = ev.FromPhase + " -> " + ev.ToPhase + ": " + ev.Reason
	}
	return e, nil
}

func fillFailure(e *Entry, meta events.EventMetadata, f events.MoveFailure) {
	e.Move, e.Side = meta.Move, meta.Side
	e.Variant = f.Variant
	e.Actor = int(f.Actor)
	e.Kind = f.Kind
	e.Code = f.Code
	e.Step = f.Step
	e.Reason = f.Reason
}
