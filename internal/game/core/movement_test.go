package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_CanReach(t *testing.T) {
	tests := []struct {
		name     string
		rank     Rank
		team     Color
		from     Coordinate
		to       Coordinate
		blockers []Coordinate
		expected bool
	}{
		{"rook along row", Rook, White, Coordinate{0, 0}, Coordinate{0, 5}, nil, true},
		{"rook blocked", Rook, White, Coordinate{0, 0}, Coordinate{0, 5}, []Coordinate{{0, 3}}, false},
		{"rook diagonal", Rook, White, Coordinate{0, 0}, Coordinate{3, 3}, nil, false},
		{"bishop diagonal", Bishop, White, Coordinate{2, 0}, Coordinate{5, 3}, nil, true},
		{"bishop blocked", Bishop, White, Coordinate{2, 0}, Coordinate{5, 3}, []Coordinate{{4, 2}}, false},
		{"queen straight", Queen, Black, Coordinate{7, 3}, Coordinate{2, 3}, nil, true},
		{"queen off line", Queen, Black, Coordinate{7, 3}, Coordinate{5, 4}, nil, false},
		{"knight jumps", Knight, White, Coordinate{0, 1}, Coordinate{2, 2}, []Coordinate{{1, 1}, {1, 2}}, true},
		{"knight straight", Knight, White, Coordinate{0, 1}, Coordinate{2, 1}, nil, false},
		{"king one step", King, White, Coordinate{0, 4}, Coordinate{1, 5}, nil, true},
		{"king two steps", King, White, Coordinate{0, 4}, Coordinate{0, 6}, nil, false},
		{"white pawn advance", Pawn, White, Coordinate{1, 0}, Coordinate{2, 0}, nil, true},
		{"white pawn double from start", Pawn, White, Coordinate{1, 0}, Coordinate{3, 0}, nil, true},
		{"white pawn double blocked", Pawn, White, Coordinate{1, 0}, Coordinate{3, 0}, []Coordinate{{2, 0}}, false},
		{"white pawn double off start", Pawn, White, Coordinate{2, 0}, Coordinate{4, 0}, nil, false},
		{"white pawn backwards", Pawn, White, Coordinate{2, 0}, Coordinate{1, 0}, nil, false},
		{"white pawn diagonal onto piece", Pawn, White, Coordinate{1, 0}, Coordinate{2, 1}, []Coordinate{{2, 1}}, true},
		{"white pawn diagonal onto nothing", Pawn, White, Coordinate{1, 0}, Coordinate{2, 1}, nil, false},
		{"black pawn advance", Pawn, Black, Coordinate{6, 4}, Coordinate{5, 4}, nil, true},
		{"black pawn forward onto piece", Pawn, Black, Coordinate{6, 4}, Coordinate{5, 4}, []Coordinate{{5, 4}}, false},
		{"off board", Rook, White, Coordinate{0, 0}, Coordinate{0, 8}, nil, false},
		{"no move", Rook, White, Coordinate{0, 0}, Coordinate{0, 0}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(8, 8)
			for _, c := range tt.blockers {
				_, err := board.Spawn(tt.team.Opponent(), Knight, c)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, tt.rank.CanReach(board, tt.from, tt.to, tt.team))
		})
	}
}

func TestParseRank(t *testing.T) {
	r, err := ParseRank(" Queen ")
	require.NoError(t, err)
	assert.Equal(t, Queen, r)
	assert.Equal(t, "queen", r.Name())

	_, err = ParseRank("archbishop")
	assert.ErrorIs(t, err, ErrUnknownRank)
}

func TestRank_Flags(t *testing.T) {
	assert.True(t, King.IsKing())
	assert.False(t, Queen.IsKing())
	assert.True(t, Pawn.Promotable())
	assert.False(t, Rook.Promotable())
}

func TestGameError(t *testing.T) {
	err := NewGameError(12, "white", "attack", ErrSquareOccupied)
	assert.Equal(t, "move 12: white attack: square is occupied", err.Error())
	assert.ErrorIs(t, err, ErrSquareOccupied)

	noSide := NewGameError(3, "", "recover", ErrBoardCorrupted)
	assert.Equal(t, "move 3: recover: board is corrupted", noSide.Error())

	assert.Nil(t, WrapGameStateError(1, "running", nil))
	wrapped := WrapGameStateError(4, "running", ErrGameOver)
	assert.Equal(t, "game move 4 [running]: game is over", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrGameOver)
}
