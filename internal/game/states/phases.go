package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseSetup - pieces are being placed
	PhaseSetup GamePhase = iota

	// PhaseRunning - moves are accepted
	PhaseRunning

	// PhaseEnded - final state
	PhaseEnded

	// PhaseCorrupted - a rollback could not be completed; moves are refused
	// until the board is repaired
	PhaseCorrupted
)

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	switch p {
	case PhaseSetup:
		return "Setup"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	case PhaseCorrupted:
		return "Corrupted"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded
}

// CanReceiveMoves returns true if the game can execute moves in this phase
func (p GamePhase) CanReceiveMoves() bool {
	return p == PhaseRunning
}

// CanPlacePieces returns true if pieces may still be spawned
func (p GamePhase) CanPlacePieces() bool {
	return p == PhaseSetup
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseSetup:
		return []GamePhase{PhaseRunning}
	case PhaseRunning:
		return []GamePhase{PhaseEnded, PhaseCorrupted}
	case PhaseCorrupted:
		return []GamePhase{PhaseRunning, PhaseEnded}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	switch s {
	case "Setup":
		return PhaseSetup, nil
	case "Running":
		return PhaseRunning, nil
	case "Ended":
		return PhaseEnded, nil
	case "Corrupted":
		return PhaseCorrupted, nil
	default:
		return PhaseSetup, fmt.Errorf("unknown game phase %q", s)
	}
}
