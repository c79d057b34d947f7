package testutil

import (
	"testing"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// CreateTestBoard creates an empty board with the given dimensions
func CreateTestBoard(rows, cols int) *core.Board {
	return core.NewBoard(rows, cols)
}

// RookVsKnight is the canonical capture setup: 8x8, white rook on (0,0),
// black knight on (0,5), nothing in between.
type RookVsKnight struct {
	Board  *core.Board
	Rook   core.PieceID
	Knight core.PieceID
}

// CreateRookVsKnight builds the RookVsKnight setup
func CreateRookVsKnight(t *testing.T) RookVsKnight {
	t.Helper()
	b := CreateTestBoard(8, 8)
	return RookVsKnight{
		Board:  b,
		Rook:   MustSpawn(t, b, core.White, core.Rook, 0, 0),
		Knight: MustSpawn(t, b, core.Black, core.Knight, 0, 5),
	}
}

// KingsFacing puts two kings next to each other on an 8x8 board:
// white on (3,3), black on (3,4).
func KingsFacing(t *testing.T) (*core.Board, core.PieceID, core.PieceID) {
	t.Helper()
	b := CreateTestBoard(8, 8)
	white := MustSpawn(t, b, core.White, core.King, 3, 3)
	black := MustSpawn(t, b, core.Black, core.King, 3, 4)
	return b, white, black
}
