package states

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/chesstx/internal/game/events"
)

var allPhases = []GamePhase{PhaseSetup, PhaseRunning, PhaseEnded, PhaseCorrupted}

func TestGamePhase_String(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		expected string
	}{
		{PhaseSetup, "Setup"},
		{PhaseRunning, "Running"},
		{PhaseEnded, "Ended"},
		{PhaseCorrupted, "Corrupted"},
		{GamePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	for _, p := range allPhases {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePhase("Paused")
	assert.Error(t, err)
}

func TestGamePhase_Properties(t *testing.T) {
	assert.True(t, PhaseEnded.IsTerminal())
	assert.False(t, PhaseCorrupted.IsTerminal())

	assert.True(t, PhaseRunning.CanReceiveMoves())
	assert.False(t, PhaseCorrupted.CanReceiveMoves())
	assert.False(t, PhaseSetup.CanReceiveMoves())

	assert.True(t, PhaseSetup.CanPlacePieces())
	assert.False(t, PhaseRunning.CanPlacePieces())
}

func TestGamePhase_Transitions(t *testing.T) {
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseSetup, []GamePhase{PhaseRunning}},
		{PhaseRunning, []GamePhase{PhaseEnded, PhaseCorrupted}},
		{PhaseCorrupted, []GamePhase{PhaseRunning, PhaseEnded}},
		{PhaseEnded, []GamePhase{}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())

			for _, target := range allPhases {
				assert.Equal(t, contains(tt.allowed, target), tt.from.CanTransitionTo(target),
					"%s -> %s", tt.from, target)
			}
		})
	}
}

func contains(phases []GamePhase, p GamePhase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}

func TestGameContext(t *testing.T) {
	ctx := NewGameContext("test-game", zerolog.Nop())
	assert.Equal(t, "test-game", ctx.GameID)
	assert.False(t, ctx.IsReady())

	ctx.Pieces["white"] = 1
	assert.False(t, ctx.IsReady())
	ctx.Pieces["black"] = 3
	assert.True(t, ctx.IsReady())

	assert.Equal(t, time.Duration(0), ctx.GetElapsedTime())
	ctx.StartTime = time.Now().Add(-10 * time.Second)
	assert.Greater(t, ctx.GetElapsedTime(), 9*time.Second)

	ctx.EndTime = ctx.StartTime.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, ctx.GetElapsedTime())
}

func TestStateMachine(t *testing.T) {
	setup := func() (*StateMachine, *GameContext, *[]events.Event) {
		ctx := NewGameContext("test-game", zerolog.Nop())
		bus := events.NewEventBusWithLogger(zerolog.Nop())
		var published []events.Event
		bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
			published = append(published, e)
		})
		return NewStateMachine(ctx, bus), ctx, &published
	}

	t.Run("starts in setup", func(t *testing.T) {
		sm, _, _ := setup()
		assert.Equal(t, PhaseSetup, sm.CurrentPhase())
		assert.Len(t, sm.states, 4)
	})

	t.Run("running needs pieces on both sides", func(t *testing.T) {
		sm, ctx, published := setup()

		err := sm.TransitionTo(PhaseRunning, "start")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both sides")
		assert.Equal(t, PhaseSetup, sm.CurrentPhase())
		assert.Empty(t, *published)

		ctx.Pieces["white"], ctx.Pieces["black"] = 1, 1
		require.NoError(t, sm.TransitionTo(PhaseRunning, "start"))
		assert.Equal(t, PhaseRunning, sm.CurrentPhase())
		assert.False(t, ctx.StartTime.IsZero())

		require.Len(t, *published, 1)
		ev := (*published)[0].(*events.StateTransitionEvent)
		assert.Equal(t, "Setup", ev.FromPhase)
		assert.Equal(t, "Running", ev.ToPhase)
		assert.Equal(t, "start", ev.Reason)
	})

	t.Run("corruption round trip", func(t *testing.T) {
		sm, ctx, published := setup()
		ctx.Pieces["white"], ctx.Pieces["black"] = 2, 2
		require.NoError(t, sm.TransitionTo(PhaseRunning, "start"))
		started := ctx.StartTime

		assert.Error(t, sm.TransitionTo(PhaseCorrupted, "no cause"))

		ctx.Corruption = errors.New("compensation failed")
		require.NoError(t, sm.TransitionTo(PhaseCorrupted, "rollback failed"))
		assert.Equal(t, PhaseCorrupted, sm.CurrentPhase())

		require.NoError(t, sm.TransitionTo(PhaseRunning, "board repaired"))
		assert.Nil(t, ctx.Corruption)
		assert.Equal(t, started, ctx.StartTime, "resuming keeps the original start time")

		require.Len(t, *published, 3)
		last := (*published)[2].(*events.StateTransitionEvent)
		assert.Equal(t, "Corrupted", last.FromPhase)
		assert.Equal(t, "board repaired", last.Reason)
	})

	t.Run("ended is final", func(t *testing.T) {
		sm, ctx, _ := setup()
		ctx.Pieces["white"], ctx.Pieces["black"] = 1, 1
		require.NoError(t, sm.TransitionTo(PhaseRunning, "start"))

		ctx.Winner = "white"
		require.NoError(t, sm.TransitionTo(PhaseEnded, "black resigned"))
		assert.False(t, ctx.EndTime.IsZero())

		for _, p := range allPhases {
			assert.False(t, sm.CurrentPhase().CanTransitionTo(p))
		}
		assert.Error(t, sm.TransitionTo(PhaseRunning, "again"))
	})

	t.Run("nil publisher", func(t *testing.T) {
		ctx := NewGameContext("quiet", zerolog.Nop())
		ctx.Pieces["white"], ctx.Pieces["black"] = 1, 1
		sm := NewStateMachine(ctx, nil)
		assert.NoError(t, sm.TransitionTo(PhaseRunning, "start"))
	})
}

type failingState struct{}

func (failingState) Phase() GamePhase            { return PhaseEnded }
func (failingState) Enter(*GameContext) error    { return errors.New("enter failed") }
func (failingState) Exit(*GameContext) error     { return nil }
func (failingState) Validate(*GameContext) error { return nil }

func TestStateMachine_EnterFailureKeepsPhase(t *testing.T) {
	ctx := NewGameContext("test-game", zerolog.Nop())
	ctx.Pieces["white"], ctx.Pieces["black"] = 1, 1
	bus := events.NewEventBusWithLogger(zerolog.Nop())
	published := 0
	bus.SubscribeFunc(events.TypeStateTransition, func(events.Event) { published++ })
	sm := NewStateMachine(ctx, bus)
	sm.states[PhaseEnded] = failingState{}
	require.NoError(t, sm.TransitionTo(PhaseRunning, "start"))

	err := sm.TransitionTo(PhaseEnded, "resign")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enter failed")
	assert.Equal(t, PhaseRunning, sm.CurrentPhase())
	assert.Equal(t, 1, published, "a failed enter is not announced")
}
