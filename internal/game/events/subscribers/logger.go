package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/chesstx/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it. Corruption is always logged
// at error level.
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	level := ls.logLevel
	if event.Type() == events.TypeBoardCorrupted {
		level = zerolog.ErrorLevel
	}

	var logEvent *zerolog.Event
	switch level {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameCreatedEvent:
		logEvent.
			Int("rows", e.Rows).
			Int("cols", e.Cols)

	case *events.GameStartedEvent:
		logEvent.
			Int("pieces", e.Pieces).
			Str("to_move", e.ToMove)

	case *events.PiecePlacedEvent:
		logEvent.
			Int("piece", int(e.Piece)).
			Str("side", e.Side).
			Str("rank", e.Rank).
			Stringer("at", e.At)

	case *events.MoveExecutedEvent:
		logEvent.
			Int("move", e.Metadata.Move).
			Str("side", e.Metadata.Side).
			Str("variant", e.Variant).
			Int("actor", int(e.Actor)).
			Stringer("from", e.From).
			Stringer("to", e.To)
		if e.Enemy >= 0 {
			logEvent.Int("enemy", int(e.Enemy))
		}
		if e.Promoted {
			logEvent.Str("rank", e.Rank)
		}

	case *events.MoveRolledBackEvent:
		failureFields(logEvent, e.Metadata, e.MoveFailure)

	case *events.MoveRejectedEvent:
		failureFields(logEvent, e.Metadata, e.MoveFailure)

	case *events.BoardCorruptedEvent:
		failureFields(logEvent, e.Metadata, e.MoveFailure)

	case *events.BoardRecoveredEvent:
		logEvent.Str("resume", e.Resume)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}

func failureFields(logEvent *zerolog.Event, meta events.EventMetadata, f events.MoveFailure) {
	logEvent.
		Int("move", meta.Move).
		Str("side", meta.Side).
		Str("variant", f.Variant).
		Int("actor", int(f.Actor)).
		Str("kind", f.Kind).
		Str("code", f.Code).
		Str("reason", f.Reason)
	if f.Step != "" {
		logEvent.Str("step", f.Step)
	}
}
