package states

import (
	"fmt"
	"sync"

	"github.com/mitchelldurbincs/chesstx/internal/game/events"
)

// State is one lifecycle phase with its entry and exit hooks
type State interface {
	Phase() GamePhase
	// Enter runs after the phase switched; an error switches it back
	Enter(ctx *GameContext) error
	Exit(ctx *GameContext) error
	// Validate runs before leaving the current phase and may veto the move
	Validate(ctx *GameContext) error
}

// StateMachine moves a game between phases and publishes every change as a
// state.transition event. The journal keeps the history.
type StateMachine struct {
	mu        sync.RWMutex
	phase     GamePhase
	states    map[GamePhase]State
	context   *GameContext
	publisher events.Publisher
}

// NewStateMachine creates a state machine in PhaseSetup. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		phase:     PhaseSetup,
		states:    make(map[GamePhase]State, 4),
		context:   ctx,
		publisher: publisher,
	}
	for _, s := range []State{NewSetupState(), NewRunningState(), NewEndedState(), NewCorruptedState()} {
		sm.states[s.Phase()] = s
	}
	return sm
}

// CurrentPhase returns the current game phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

// GetContext returns the shared game context
func (sm *StateMachine) GetContext() *GameContext {
	return sm.context
}

// TransitionTo moves to target if the phase graph allows it and the target
// state accepts the context
func (sm *StateMachine) TransitionTo(target GamePhase, reason string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	from := sm.phase
	if !from.CanTransitionTo(target) {
		return fmt.Errorf("invalid transition from %s to %s", from, target)
	}
	next, ok := sm.states[target]
	if !ok {
		return fmt.Errorf("no state implementation for phase %s", target)
	}
	if err := next.Validate(sm.context); err != nil {
		return fmt.Errorf("target state validation failed: %w", err)
	}

	if cur, ok := sm.states[from]; ok {
		if err := cur.Exit(sm.context); err != nil {
			sm.context.Logger.Error().Err(err).Str("from_phase", from.String()).Msg("Error exiting state")
		}
	}
	sm.phase = target
	if err := next.Enter(sm.context); err != nil {
		sm.phase = from
		return fmt.Errorf("failed to enter state %s: %w", target, err)
	}

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(sm.context.GameID, from.String(), target.String(), reason))
	}
	sm.context.Logger.Info().
		Str("from_phase", from.String()).
		Str("to_phase", target.String()).
		Str("reason", reason).
		Msg("State transition completed")
	return nil
}
