package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext provides game-specific information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// Pieces counts active pieces per side ("white", "black")
	Pieces map[string]int

	// StartTime is when PhaseRunning was first entered
	StartTime time.Time

	// EndTime is when PhaseEnded was entered
	EndTime time.Time

	// Winner is the side that won, empty until the game ends
	Winner string

	// Corruption holds the failure that moved the game to PhaseCorrupted
	Corruption error
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID: gameID,
		Logger: logger.With().Str("game_id", gameID).Logger(),
		Pieces: make(map[string]int),
	}
}

// IsReady returns true if both sides have at least one piece
func (gc *GameContext) IsReady() bool {
	return gc.Pieces["white"] > 0 && gc.Pieces["black"] > 0
}

// GetElapsedTime returns the time elapsed since game start
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}
