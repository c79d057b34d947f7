package gameserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/chesstx/internal/game"
	"github.com/mitchelldurbincs/chesstx/internal/game/events"
	"github.com/mitchelldurbincs/chesstx/internal/game/move"
	"github.com/mitchelldurbincs/chesstx/internal/game/states"
)

const cleanupInterval = 5 * time.Minute

var (
	ErrAtCapacity   = errors.New("server at capacity")
	ErrGameNotFound = errors.New("game not found")
)

// GameInstance is a managed game plus the bookkeeping the server needs
type GameInstance struct {
	*game.Game

	submitMu    sync.Mutex // serialises idempotency check, execution and store
	idempotency *IdempotencyManager

	mu           sync.RWMutex
	lastActivity time.Time
}

// CreateOptions describes a game to create. Zero values take the defaults
// the manager was built with.
type CreateOptions struct {
	Rows             int   `json:"rows"`
	Cols             int   `json:"cols"`
	EnforceTurnOrder *bool `json:"enforce_turn_order,omitempty"`
	StandardSetup    *bool `json:"standard_setup,omitempty"`
}

// ManagerOption configures a GameManager
type ManagerOption func(*GameManager)

// WithLogger sets the manager logger
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(gm *GameManager) { gm.logger = l }
}

// WithSubscriber attaches s to the event bus of every game the manager creates
func WithSubscriber(s events.Subscriber) ManagerOption {
	return func(gm *GameManager) { gm.subscribers = append(gm.subscribers, s) }
}

// WithIdempotencyTTL sets how long a submission key is remembered
func WithIdempotencyTTL(ttl time.Duration) ManagerOption {
	return func(gm *GameManager) { gm.idempotencyTTL = ttl }
}

// WithGameDefaults sets the config new games start from. cfg.Logger is the
// base logger for every game and must not carry a component field.
func WithGameDefaults(cfg game.GameConfig, standardSetup bool) ManagerOption {
	return func(gm *GameManager) {
		gm.defaults = cfg
		gm.standardSetup = standardSetup
	}
}

// GameManager manages all active game instances
type GameManager struct {
	mu             sync.RWMutex
	games          map[string]*GameInstance
	maxGames       int
	idempotencyTTL time.Duration
	defaults       game.GameConfig
	standardSetup  bool
	subscribers    []events.Subscriber
	logger         zerolog.Logger
}

// NewGameManager creates a new game manager. maxGames <= 0 means unlimited.
func NewGameManager(maxGames int, opts ...ManagerOption) *GameManager {
	gm := &GameManager{
		games:          make(map[string]*GameInstance),
		maxGames:       maxGames,
		idempotencyTTL: 24 * time.Hour,
		defaults: game.GameConfig{
			Rows:             8,
			Cols:             8,
			EnforceTurnOrder: true,
			Logger:           log.Logger,
		},
		logger: log.With().Str("component", "game_manager").Logger(),
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// CreateGame creates a new game and, if asked, places the standard opening
func (gm *GameManager) CreateGame(ctx context.Context, opts CreateOptions) (*GameInstance, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.maxGames > 0 && len(gm.games) >= gm.maxGames {
		gm.logger.Warn().
			Int("current_games", len(gm.games)).
			Int("max_games", gm.maxGames).
			Msg("Rejecting game creation - server at capacity")
		return nil, fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, len(gm.games), gm.maxGames)
	}

	cfg := gm.defaults
	cfg.GameID = ""
	cfg.EventBus = events.NewEventBusWithLogger(cfg.Logger.With().Str("component", "event_bus").Logger())
	for _, s := range gm.subscribers {
		cfg.EventBus.Subscribe(s)
	}
	if opts.Rows > 0 {
		cfg.Rows = opts.Rows
	}
	if opts.Cols > 0 {
		cfg.Cols = opts.Cols
	}
	if opts.EnforceTurnOrder != nil {
		cfg.EnforceTurnOrder = *opts.EnforceTurnOrder
	}
	standard := gm.standardSetup
	if opts.StandardSetup != nil {
		standard = *opts.StandardSetup
	}

	g, err := game.NewGame(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if standard {
		if err := g.SetupStandard(); err != nil {
			return nil, fmt.Errorf("standard setup: %w", err)
		}
	}

	inst := &GameInstance{
		Game:         g,
		idempotency:  NewIdempotencyManager(gm.idempotencyTTL),
		lastActivity: time.Now(),
	}
	gm.games[g.ID()] = inst

	gm.logger.Info().
		Str("game_id", g.ID()).
		Int("rows", cfg.Rows).
		Int("cols", cfg.Cols).
		Bool("standard_setup", standard).
		Msg("Created game instance")
	return inst, nil
}

// GetGame returns the game with id
func (gm *GameManager) GetGame(gameID string) (*GameInstance, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, ok := gm.games[gameID]
	return g, ok
}

// RemoveGame drops a game. It reports whether the game existed.
func (gm *GameManager) RemoveGame(gameID string) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, ok := gm.games[gameID]; !ok {
		return false
	}
	delete(gm.games, gameID)
	gm.logger.Info().Str("game_id", gameID).Msg("Removed game instance")
	return true
}

// GetActiveGames returns the number of managed games
func (gm *GameManager) GetActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// PhaseCounts returns how many games are in each phase
func (gm *GameManager) PhaseCounts() map[string]int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	counts := make(map[string]int, 4)
	for _, inst := range gm.games {
		counts[inst.Phase().String()]++
	}
	return counts
}

// Run periodically removes ended games idle for longer than the idempotency
// window and expires old submission keys. It returns when ctx is done.
func (gm *GameManager) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.cleanupGames(time.Now())
		}
	}
}

func (gm *GameManager) cleanupGames(now time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	removed := 0
	for id, inst := range gm.games {
		inst.idempotency.Cleanup()
		if inst.Phase() != states.PhaseEnded {
			continue
		}
		if now.Sub(inst.LastActivity()) > gm.idempotencyTTL {
			delete(gm.games, id)
			removed++
		}
	}
	if removed > 0 {
		gm.logger.Info().
			Int("removed", removed).
			Int("remaining", len(gm.games)).
			Msg("Cleaned up ended games")
	}
	return removed
}

// SubmitMove runs req on the game unless key was already used, in which case
// the first outcome is returned with cached set.
func (g *GameInstance) SubmitMove(ctx context.Context, key string, req move.Request) (outcome move.Outcome, cached bool, err error) {
	g.submitMu.Lock()
	defer g.submitMu.Unlock()

	if out, ok := g.idempotency.Check(key); ok {
		return out, true, nil
	}

	outcome, err = g.Submit(ctx, req)
	if err != nil {
		return move.Outcome{}, false, err
	}
	g.touch()
	g.idempotency.Store(key, outcome)
	return outcome, false, nil
}

// LastActivity returns when a move was last submitted
func (g *GameInstance) LastActivity() time.Time {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastActivity
}

func (g *GameInstance) touch() {
	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()
}
