package states

import (
	"errors"
	"time"
)

// SetupState represents the piece placement phase
type SetupState struct{}

func NewSetupState() State {
	return &SetupState{}
}

func (s *SetupState) Phase() GamePhase {
	return PhaseSetup
}

func (s *SetupState) Enter(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Entering Setup state")
	return nil
}

func (s *SetupState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().
		Int("white_pieces", ctx.Pieces["white"]).
		Int("black_pieces", ctx.Pieces["black"]).
		Msg("Setup finished")
	return nil
}

func (s *SetupState) Validate(ctx *GameContext) error {
	return nil
}

// RunningState represents active play
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() GamePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *GameContext) error {
	if ctx.StartTime.IsZero() {
		ctx.StartTime = time.Now()
		ctx.Logger.Info().Msg("Game started")
		return nil
	}
	ctx.Logger.Info().Msg("Game resumed")
	return nil
}

func (s *RunningState) Exit(ctx *GameContext) error {
	return nil
}

func (s *RunningState) Validate(ctx *GameContext) error {
	if !ctx.IsReady() {
		return errors.New("both sides need at least one piece")
	}
	return nil
}

// EndedState is the final state
type EndedState struct{}

func NewEndedState() State {
	return &EndedState{}
}

func (s *EndedState) Phase() GamePhase {
	return PhaseEnded
}

func (s *EndedState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Info().
		Str("winner", ctx.Winner).
		Dur("duration", ctx.GetElapsedTime()).
		Msg("Game ended")
	return nil
}

func (s *EndedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *EndedState) Validate(ctx *GameContext) error {
	return nil
}

// CorruptedState holds a game whose board failed to roll back
type CorruptedState struct{}

func NewCorruptedState() State {
	return &CorruptedState{}
}

func (s *CorruptedState) Phase() GamePhase {
	return PhaseCorrupted
}

func (s *CorruptedState) Enter(ctx *GameContext) error {
	ctx.Logger.Error().
		Err(ctx.Corruption).
		Msg("Game entered corrupted state, moves are blocked")
	return nil
}

func (s *CorruptedState) Exit(ctx *GameContext) error {
	ctx.Logger.Warn().Msg("Leaving corrupted state")
	ctx.Corruption = nil
	return nil
}

func (s *CorruptedState) Validate(ctx *GameContext) error {
	if ctx.Corruption == nil {
		return errors.New("corrupted state requires a cause in context")
	}
	return nil
}
