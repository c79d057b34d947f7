package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/game/events"
	"github.com/mitchelldurbincs/chesstx/internal/game/move"
	"github.com/mitchelldurbincs/chesstx/internal/game/states"
)

var (
	ErrNotInSetup   = errors.New("pieces can only be placed during setup")
	ErrNotRunning   = errors.New("game is not running")
	ErrNotCorrupted = errors.New("game is not corrupted")
	ErrNoGoodState  = errors.New("no known good board state to restore")
)

// GameConfig holds configuration for creating a new game
type GameConfig struct {
	GameID           string // generated when empty
	Rows, Cols       int
	EnforceTurnOrder bool
	Logger           zerolog.Logger
	EventBus         *events.EventBus      // created when nil
	ExecutorOptions  []move.ExecutorOption // extra executor options, e.g. fault injection
}

// DefaultGameConfig returns a config populated from the global settings
func DefaultGameConfig(logger zerolog.Logger) GameConfig {
	return GameConfig{
		Rows:             BoardRows(),
		Cols:             BoardCols(),
		EnforceTurnOrder: EnforceTurnOrder(),
		Logger:           logger,
	}
}

// Game wraps one board with its lifecycle and turn order. All mutations go
// through the game mutex, so at most one move transaction runs against a
// board at a time. Events are published synchronously under that mutex;
// handlers must not call back into the game.
type Game struct {
	mu sync.RWMutex

	id           string
	board        *core.Board
	executor     *move.Executor
	stateMachine *states.StateMachine
	eventBus     *events.EventBus
	logger       zerolog.Logger

	enforceTurnOrder bool
	toMove           core.Color
	moves            int
	createdAt        time.Time

	// lastGood is the board as it stood before the move that corrupted it
	lastGood *core.Snapshot
}

// NewGame creates a game with an empty board in the Setup phase
func NewGame(ctx context.Context, cfg GameConfig) (*Game, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if cfg.Rows < 2 || cfg.Cols < 1 {
		return nil, fmt.Errorf("board %dx%d: %w", cfg.Rows, cfg.Cols, core.ErrInvalidCoordinates)
	}

	id := cfg.GameID
	if id == "" {
		id = uuid.NewString()
	}
	// cfg.Logger must not carry a component field; each part adds its own
	gameLog := cfg.Logger.With().Str("game_id", id).Logger()
	logger := gameLog.With().Str("component", "game").Logger()

	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewEventBusWithLogger(gameLog.With().Str("component", "event_bus").Logger())
	}

	execOpts := append([]move.ExecutorOption{
		move.WithLogger(gameLog.With().Str("component", "move_executor").Logger()),
	}, cfg.ExecutorOptions...)

	g := &Game{
		id:               id,
		board:            core.NewBoard(cfg.Rows, cfg.Cols),
		executor:         move.NewExecutor(execOpts...),
		eventBus:         bus,
		logger:           logger,
		enforceTurnOrder: cfg.EnforceTurnOrder,
		toMove:           core.White,
		createdAt:        time.Now(),
	}
	g.stateMachine = states.NewStateMachine(
		states.NewGameContext(id, cfg.Logger.With().Str("component", "game_state").Logger()),
		bus,
	)

	bus.Publish(events.NewGameCreatedEvent(id, cfg.Rows, cfg.Cols))
	logger.Info().
		Int("rows", cfg.Rows).
		Int("cols", cfg.Cols).
		Bool("enforce_turn_order", cfg.EnforceTurnOrder).
		Msg("Game created")

	return g, nil
}

func (g *Game) ID() string                 { return g.id }
func (g *Game) EventBus() *events.EventBus { return g.eventBus }
func (g *Game) CreatedAt() time.Time       { return g.createdAt }

// Phase returns the current lifecycle phase
func (g *Game) Phase() states.GamePhase {
	return g.stateMachine.CurrentPhase()
}

// ToMove returns the side whose turn it is
func (g *Game) ToMove() core.Color {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.toMove
}

// MoveCount returns the number of committed moves
func (g *Game) MoveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.moves
}

// Snapshot returns a detached copy of the board
func (g *Game) Snapshot() core.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.board.Snapshot()
}

// View is a read-only summary of a game
type View struct {
	ID        string        `json:"id"`
	Phase     string        `json:"phase"`
	ToMove    string        `json:"to_move"`
	Moves     int           `json:"moves"`
	Winner    string        `json:"winner,omitempty"`
	Corrupted string        `json:"corrupted,omitempty"`
	Board     core.Snapshot `json:"board"`
}

// View returns the game summary under a single read lock
func (g *Game) View() View {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ctx := g.stateMachine.GetContext()
	v := View{
		ID:     g.id,
		Phase:  g.stateMachine.CurrentPhase().String(),
		ToMove: g.toMove.String(),
		Moves:  g.moves,
		Winner: ctx.Winner,
		Board:  g.board.Snapshot(),
	}
	if corrupted, cause := g.board.Corrupted(); corrupted && cause != nil {
		v.Corrupted = cause.Error()
	}
	return v
}

// Recover restores the board to the state before the move that corrupted it
// and resumes play. It is the external resolution step for a corrupted game.
func (g *Game) Recover(reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stateMachine.CurrentPhase() != states.PhaseCorrupted {
		return ErrNotCorrupted
	}
	if g.lastGood == nil {
		return ErrNoGoodState
	}
	if err := g.board.Restore(*g.lastGood); err != nil {
		return fmt.Errorf("restore board: %w", err)
	}
	if err := g.board.ClearCorruption(); err != nil {
		return fmt.Errorf("clear corruption: %w", err)
	}
	g.lastGood = nil
	g.refreshPieceCounts()

	if err := g.stateMachine.TransitionTo(states.PhaseRunning, reason); err != nil {
		return err
	}
	g.eventBus.Publish(events.NewBoardRecoveredEvent(g.id, g.toMove.String()))
	g.logger.Warn().Str("reason", reason).Msg("Corrupted board restored")
	return nil
}

// Resign ends the game in favour of the other side
func (g *Game) Resign(side core.Color) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	phase := g.stateMachine.CurrentPhase()
	if !phase.CanTransitionTo(states.PhaseEnded) {
		return core.WrapGameStateError(g.moves, phase.String(), ErrNotRunning)
	}
	return g.end(side.Opponent(), fmt.Sprintf("%s resigned", side))
}

// end must be called with g.mu held
func (g *Game) end(winner core.Color, reason string) error {
	g.stateMachine.GetContext().Winner = winner.String()
	return g.stateMachine.TransitionTo(states.PhaseEnded, reason)
}

// refreshPieceCounts must be called with g.mu held
func (g *Game) refreshPieceCounts() {
	ctx := g.stateMachine.GetContext()
	for _, c := range []core.Color{core.White, core.Black} {
		if t, ok := g.board.Team(c); ok {
			ctx.Pieces[c.String()] = len(t.Roster())
		}
	}
}
