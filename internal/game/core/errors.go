package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrSquareOccupied     = errors.New("square is occupied")
	ErrPieceNotFound      = errors.New("piece not found")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrNilRank            = errors.New("rank is required")
	ErrUnknownRank        = errors.New("unknown rank")
	ErrInvariantBroken    = errors.New("board invariant broken")
	ErrBoardCorrupted     = errors.New("board is corrupted")
	ErrGameOver           = errors.New("game is over")
)

// GameError carries the move number and side alongside an underlying error
type GameError struct {
	Move      int
	Side      string
	Operation string
	Err       error
}

func (e *GameError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("move %d: %s %s: %v", e.Move, e.Side, e.Operation, e.Err)
	}
	return fmt.Sprintf("move %d: %s: %v", e.Move, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }

// NewGameError creates a GameError
func NewGameError(move int, side, operation string, err error) *GameError {
	return &GameError{Move: move, Side: side, Operation: operation, Err: err}
}

// WrapGameStateError adds move number and phase context to err. nil stays nil.
func WrapGameStateError(move int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game move %d [%s]: %w", move, phase, err)
}
