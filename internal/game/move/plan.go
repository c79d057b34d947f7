package move

import (
	"fmt"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// Step names one unit of a move transaction
type Step int

const (
	StepNone Step = iota
	StepCaptor
	StepRoster
	StepHostages
	StepBoardPieces
	StepSquares
	StepRank
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepCaptor:
		return "captor"
	case StepRoster:
		return "roster"
	case StepHostages:
		return "hostages"
	case StepBoardPieces:
		return "board_pieces"
	case StepSquares:
		return "squares"
	case StepRank:
		return "rank"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// action pairs a forward mutation with its post-condition and a compensation
// with its own post-condition. Compensations are idempotent so they may run
// after a forward mutation that only partly happened.
type action struct {
	step          Step
	forward       func() error
	verify        func() error
	inverse       func() error
	verifyInverse func() error
}

// plan lays out the ordered steps for ev. Values needed by compensations are
// captured here, before anything changes.
func plan(ev *Event) []action {
	board := ev.board
	actor, _ := board.Piece(ev.actor)

	var steps []action
	if ev.variant == Attack {
		ownTeam, _ := board.Team(actor.Team)
		enemyTeam, _ := board.Team(actor.Team.Opponent())
		steps = append(steps,
			captorStep(board, ev.enemy, ev.actor),
			rosterStep(enemyTeam, ev.enemy),
			hostageStep(ownTeam, ev.enemy),
			boardPiecesStep(board, ev.enemy),
		)
	}
	steps = append(steps, squaresStep(board, ev.actor, ev.enemy, ev.origin, ev.destination))
	if ev.variant == Promotion {
		steps = append(steps, rankStep(board, actor, ev.promoteTo))
	}
	return steps
}

func captorStep(board *core.Board, enemy, actor core.PieceID) action {
	captorIs := func(want core.PieceID) func() error {
		return func() error {
			p, ok := board.Piece(enemy)
			if !ok {
				return fmt.Errorf("piece %d: %w", enemy, core.ErrPieceNotFound)
			}
			if p.Captor() != want {
				return fmt.Errorf("piece %d captor is %d, want %d", enemy, p.Captor(), want)
			}
			return nil
		}
	}
	return action{
		step:          StepCaptor,
		forward:       func() error { return board.SetCaptor(enemy, actor) },
		verify:        captorIs(actor),
		inverse:       func() error { return board.SetCaptor(enemy, core.NoPiece) },
		verifyInverse: captorIs(core.NoPiece),
	}
}

func rosterStep(team *core.Team, enemy core.PieceID) action {
	onRoster := func(want bool) func() error {
		return func() error {
			if team.OnRoster(enemy) != want {
				return fmt.Errorf("piece %d on %s roster=%t, want %t", enemy, team.Color, !want, want)
			}
			return nil
		}
	}
	return action{
		step:          StepRoster,
		forward:       func() error { team.RemoveFromRoster(enemy); return nil },
		verify:        onRoster(false),
		inverse:       func() error { team.AddToRoster(enemy); return nil },
		verifyInverse: onRoster(true),
	}
}

func hostageStep(team *core.Team, enemy core.PieceID) action {
	held := func(want bool) func() error {
		return func() error {
			if team.HoldsHostage(enemy) != want {
				return fmt.Errorf("piece %d held by %s=%t, want %t", enemy, team.Color, !want, want)
			}
			return nil
		}
	}
	return action{
		step:          StepHostages,
		forward:       func() error { team.AddHostage(enemy); return nil },
		verify:        held(true),
		inverse:       func() error { team.RemoveHostage(enemy); return nil },
		verifyInverse: held(false),
	}
}

func boardPiecesStep(board *core.Board, enemy core.PieceID) action {
	active := func(want bool) func() error {
		return func() error {
			if board.IsActive(enemy) != want {
				return fmt.Errorf("piece %d active=%t, want %t", enemy, !want, want)
			}
			return nil
		}
	}
	return action{
		step:          StepBoardPieces,
		forward:       func() error { board.RemoveActive(enemy); return nil },
		verify:        active(false),
		inverse:       func() error { board.AddActive(enemy); return nil },
		verifyInverse: active(true),
	}
}

// squaresStep moves actor from origin to dest, lifting enemy (if any) off
// dest, and records the new position in the actor's history.
func squaresStep(board *core.Board, actor, enemy core.PieceID, origin, dest core.SquareID) action {
	originSq, _ := board.SquareByID(origin)
	destSq, _ := board.SquareByID(dest)
	to := destSq.Coord

	return action{
		step: StepSquares,
		forward: func() error {
			board.Vacate(dest)
			if err := board.Place(actor, dest); err != nil {
				return err
			}
			board.RecordPosition(actor, to)
			return nil
		},
		verify: func() error {
			if destSq.Occupant() != actor {
				return fmt.Errorf("%s holds %d, want %d", to, destSq.Occupant(), actor)
			}
			if !originSq.IsEmpty() {
				return fmt.Errorf("origin %s still holds %d", originSq.Coord, originSq.Occupant())
			}
			if at, ok := board.SquareOf(actor); !ok || !at.Coord.Equal(to) {
				return fmt.Errorf("piece %d does not report %s", actor, to)
			}
			if enemy != core.NoPiece {
				if _, ok := board.SquareOf(enemy); ok {
					return fmt.Errorf("captured piece %d still bound to a square", enemy)
				}
			}
			return lastPositionIs(board, actor, to)
		},
		inverse: func() error {
			if destSq.Occupant() == actor {
				board.Vacate(dest)
			}
			if err := board.Place(actor, origin); err != nil {
				return err
			}
			if enemy != core.NoPiece {
				if err := board.Place(enemy, dest); err != nil {
					return err
				}
			}
			board.DropLastPosition(actor, to)
			return nil
		},
		verifyInverse: func() error {
			if originSq.Occupant() != actor {
				return fmt.Errorf("origin %s holds %d, want %d", originSq.Coord, originSq.Occupant(), actor)
			}
			want := enemy
			if destSq.Occupant() != want {
				return fmt.Errorf("%s holds %d, want %d", to, destSq.Occupant(), want)
			}
			return lastPositionIs(board, actor, originSq.Coord)
		},
	}
}

func lastPositionIs(board *core.Board, id core.PieceID, c core.Coordinate) error {
	p, ok := board.Piece(id)
	if !ok {
		return fmt.Errorf("piece %d: %w", id, core.ErrPieceNotFound)
	}
	h := p.History()
	if len(h) == 0 || !h[len(h)-1].Equal(c) {
		return fmt.Errorf("piece %d history does not end at %s", id, c)
	}
	return nil
}

func rankStep(board *core.Board, actor *core.Piece, to core.Rank) action {
	prevRank, prevPromoted := actor.Rank(), actor.Promoted()
	rankIs := func(want core.Rank, promoted bool) func() error {
		return func() error {
			if actor.Rank() != want || actor.Promoted() != promoted {
				return fmt.Errorf("piece %d is %s promoted=%t, want %s promoted=%t",
					actor.ID, actor.Rank().Name(), actor.Promoted(), want.Name(), promoted)
			}
			return nil
		}
	}
	return action{
		step:          StepRank,
		forward:       func() error { return board.ReplaceRank(actor.ID, to, true) },
		verify:        rankIs(to, true),
		inverse:       func() error { return board.ReplaceRank(actor.ID, prevRank, prevPromoted) },
		verifyInverse: rankIs(prevRank, prevPromoted),
	}
}
