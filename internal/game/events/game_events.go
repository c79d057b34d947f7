package events

import (
	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// Event type constants
const (
	TypeGameCreated     = "game.created"
	TypeGameStarted     = "game.started"
	TypePiecePlaced     = "piece.placed"
	TypeMoveExecuted    = "move.executed"
	TypeMoveRolledBack  = "move.rolled_back"
	TypeMoveRejected    = "move.rejected"
	TypeBoardCorrupted  = "board.corrupted"
	TypeBoardRecovered  = "board.recovered"
	TypeStateTransition = "state.transition"
)

// MoveTypes lists the event types that describe a move outcome
var MoveTypes = []string{TypeMoveExecuted, TypeMoveRolledBack, TypeMoveRejected, TypeBoardCorrupted}

// GameCreatedEvent is published when a game and its empty board exist
type GameCreatedEvent struct {
	BaseEvent
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func NewGameCreatedEvent(gameID string, rows, cols int) *GameCreatedEvent {
	return &GameCreatedEvent{
		BaseEvent: newBase(TypeGameCreated, gameID),
		Rows:      rows,
		Cols:      cols,
	}
}

// GameStartedEvent is published when setup ends and moves are accepted
type GameStartedEvent struct {
	BaseEvent
	Pieces int    `json:"pieces"`
	ToMove string `json:"to_move"`
}

func NewGameStartedEvent(gameID string, pieces int, toMove string) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: newBase(TypeGameStarted, gameID),
		Pieces:    pieces,
		ToMove:    toMove,
	}
}

// PiecePlacedEvent is published for every piece spawned during setup
type PiecePlacedEvent struct {
	BaseEvent
	Piece core.PieceID    `json:"piece"`
	Side  string          `json:"side"`
	Rank  string          `json:"rank"`
	At    core.Coordinate `json:"at"`
}

func NewPiecePlacedEvent(gameID string, piece core.PieceID, side, rank string, at core.Coordinate) *PiecePlacedEvent {
	return &PiecePlacedEvent{
		BaseEvent: newBase(TypePiecePlaced, gameID),
		Piece:     piece,
		Side:      side,
		Rank:      rank,
		At:        at,
	}
}

// MoveExecutedEvent is published after a move committed
type MoveExecutedEvent struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Variant  string          `json:"variant"`
	Actor    core.PieceID    `json:"actor"`
	Enemy    core.PieceID    `json:"enemy"`
	From     core.Coordinate `json:"from"`
	To       core.Coordinate `json:"to"`
	Rank     string          `json:"rank"`
	Promoted bool            `json:"promoted"`
}

func NewMoveExecutedEvent(gameID string, meta EventMetadata, variant string, actor, enemy core.PieceID, from, to core.Coordinate) *MoveExecutedEvent {
	return &MoveExecutedEvent{
		BaseEvent: newBase(TypeMoveExecuted, gameID),
		Metadata:  meta,
		Variant:   variant,
		Actor:     actor,
		Enemy:     enemy,
		From:      from,
		To:        to,
	}
}

// MoveFailure carries the diagnostic fields shared by failed moves
type MoveFailure struct {
	Variant string       `json:"variant"`
	Actor   core.PieceID `json:"actor"`
	Kind    string       `json:"kind"`
	Code    string       `json:"code"`
	Step    string       `json:"step,omitempty"`
	Reason  string       `json:"reason"`
}

// MoveRolledBackEvent is published when a step failed and the board was restored
type MoveRolledBackEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	MoveFailure
}

func NewMoveRolledBackEvent(gameID string, meta EventMetadata, failure MoveFailure) *MoveRolledBackEvent {
	return &MoveRolledBackEvent{
		BaseEvent:   newBase(TypeMoveRolledBack, gameID),
		Metadata:    meta,
		MoveFailure: failure,
	}
}

// MoveRejectedEvent is published when a move failed before any mutation
type MoveRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	MoveFailure
}

func NewMoveRejectedEvent(gameID string, meta EventMetadata, failure MoveFailure) *MoveRejectedEvent {
	return &MoveRejectedEvent{
		BaseEvent:   newBase(TypeMoveRejected, gameID),
		Metadata:    meta,
		MoveFailure: failure,
	}
}

// BoardCorruptedEvent is published when a compensation could not be verified
type BoardCorruptedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	MoveFailure
}

func NewBoardCorruptedEvent(gameID string, meta EventMetadata, failure MoveFailure) *BoardCorruptedEvent {
	return &BoardCorruptedEvent{
		BaseEvent:   newBase(TypeBoardCorrupted, gameID),
		Metadata:    meta,
		MoveFailure: failure,
	}
}

// BoardRecoveredEvent is published when an operator cleared the corrupted flag
type BoardRecoveredEvent struct {
	BaseEvent
	Resume string `json:"resume"`
}

func NewBoardRecoveredEvent(gameID, resume string) *BoardRecoveredEvent {
	return &BoardRecoveredEvent{
		BaseEvent: newBase(TypeBoardRecovered, gameID),
		Resume:    resume,
	}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
