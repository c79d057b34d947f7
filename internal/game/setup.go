package game

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/game/events"
	"github.com/mitchelldurbincs/chesstx/internal/game/states"
)

// backRank is the standard opening order of the first row, queen side first
var backRank = []core.Rank{
	core.Rook, core.Knight, core.Bishop, core.Queen,
	core.King, core.Bishop, core.Knight, core.Rook,
}

// PlacePiece spawns a piece while the game is in setup
func (g *Game) PlacePiece(side core.Color, rank core.Rank, at core.Coordinate) (core.PieceID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.placeLocked(side, rank, at)
	if err != nil {
		return core.NoPiece, err
	}
	g.eventBus.Publish(events.NewPiecePlacedEvent(g.id, id, side.String(), rank.Name(), at))
	return id, nil
}

func (g *Game) placeLocked(side core.Color, rank core.Rank, at core.Coordinate) (core.PieceID, error) {
	phase := g.stateMachine.CurrentPhase()
	if !phase.CanPlacePieces() {
		return core.NoPiece, core.WrapGameStateError(g.moves, phase.String(), ErrNotInSetup)
	}
	id, err := g.board.Spawn(side, rank, at)
	if err != nil {
		return core.NoPiece, err
	}
	g.stateMachine.GetContext().Pieces[side.String()]++
	return id, nil
}

// SetupStandard places the sixteen pieces of each side in the standard
// opening. The board must be 8x8 and empty.
func (g *Game) SetupStandard() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.board.Rows != 8 || g.board.Cols != 8 {
		return fmt.Errorf("standard setup needs an 8x8 board, have %dx%d: %w",
			g.board.Rows, g.board.Cols, core.ErrInvalidCoordinates)
	}
	if len(g.board.ActivePieces()) > 0 {
		return fmt.Errorf("standard setup needs an empty board: %w", core.ErrSquareOccupied)
	}

	for _, side := range []core.Color{core.White, core.Black} {
		home := g.board.Rows - 1 - side.PromotionRow(g.board.Rows)
		pawns := side.PawnRow(g.board.Rows)
		for col, rank := range backRank {
			if _, err := g.placeLocked(side, rank, core.Coordinate{Row: home, Col: col}); err != nil {
				return err
			}
			if _, err := g.placeLocked(side, core.Pawn, core.Coordinate{Row: pawns, Col: col}); err != nil {
				return err
			}
		}
	}

	g.logger.Debug().Int("pieces", len(g.board.ActivePieces())).Msg("Standard opening placed")
	return nil
}

// Start closes setup and lets moves in. Both sides need at least one piece.
func (g *Game) Start(ctx context.Context) error {
	if err := g.checkContext(ctx, "start"); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.stateMachine.TransitionTo(states.PhaseRunning, "setup complete"); err != nil {
		return core.WrapGameStateError(g.moves, g.stateMachine.CurrentPhase().String(), err)
	}
	g.eventBus.Publish(events.NewGameStartedEvent(g.id, len(g.board.ActivePieces()), g.toMove.String()))
	return nil
}

func (g *Game) checkContext(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		g.logger.Warn().
			Err(ctx.Err()).
			Int("move", g.MoveCount()).
			Str("operation", op).
			Msg("Game operation cancelled or timed out")
		return ctx.Err()
	default:
		return nil
	}
}
