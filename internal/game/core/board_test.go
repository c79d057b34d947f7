package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name string
		rows int
		cols int
	}{
		{"standard board", 8, 8},
		{"rectangular board", 6, 10},
		{"minimum board", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := NewBoard(tt.rows, tt.cols)

			assert.Equal(t, tt.rows, board.Rows)
			assert.Equal(t, tt.cols, board.Cols)
			for r := 0; r < tt.rows; r++ {
				for c := 0; c < tt.cols; c++ {
					sq, ok := board.SquareAt(Coordinate{r, c})
					require.True(t, ok)
					assert.True(t, sq.IsEmpty(), "square (%d,%d) should start empty", r, c)
					assert.Equal(t, Coordinate{r, c}, sq.Coord)
				}
			}
			assert.Empty(t, board.ActivePieces())
			_, ok := board.Team(White)
			assert.True(t, ok)
			_, ok = board.Team(Black)
			assert.True(t, ok)
			assert.NoError(t, board.CheckInvariants())
		})
	}
}

func TestBoard_SquareAt(t *testing.T) {
	board := NewBoard(8, 8)

	_, ok := board.SquareAt(Coordinate{-1, 0})
	assert.False(t, ok)
	_, ok = board.SquareAt(Coordinate{0, 8})
	assert.False(t, ok)

	sq, ok := board.SquareAt(Coordinate{2, 3})
	require.True(t, ok)
	assert.Equal(t, SquareID(19), sq.ID)

	byID, ok := board.SquareByID(sq.ID)
	require.True(t, ok)
	assert.Same(t, sq, byID)

	_, ok = board.SquareByID(SquareID(64))
	assert.False(t, ok)
	_, ok = board.SquareByID(NoSquare)
	assert.False(t, ok)
}

func TestBoard_Spawn(t *testing.T) {
	board := NewBoard(8, 8)

	id, err := board.Spawn(White, Rook, Coordinate{0, 0})
	require.NoError(t, err)

	p, ok := board.Piece(id)
	require.True(t, ok)
	assert.Equal(t, White, p.Team)
	assert.Equal(t, Rook, p.Rank())
	assert.Equal(t, Rook, p.BirthRank())
	assert.False(t, p.Promoted())
	assert.Equal(t, NoPiece, p.Captor())
	assert.Equal(t, []Coordinate{{0, 0}}, p.History())

	sq, ok := board.SquareOf(id)
	require.True(t, ok)
	assert.Equal(t, Coordinate{0, 0}, sq.Coord)
	assert.Equal(t, id, sq.Occupant())
	assert.True(t, board.IsActive(id))

	white, _ := board.Team(White)
	assert.True(t, white.OnRoster(id))
	assert.NoError(t, board.CheckInvariants())
}

func TestBoard_SpawnRejects(t *testing.T) {
	board := NewBoard(8, 8)
	_, err := board.Spawn(White, Rook, Coordinate{0, 0})
	require.NoError(t, err)

	tests := []struct {
		name  string
		team  Color
		rank  Rank
		at    Coordinate
		isErr error
	}{
		{"occupied square", Black, Knight, Coordinate{0, 0}, ErrSquareOccupied},
		{"off board", Black, Knight, Coordinate{8, 0}, ErrInvalidCoordinates},
		{"nil rank", Black, nil, Coordinate{3, 3}, ErrNilRank},
		{"unknown team", Color(7), Knight, Coordinate{3, 3}, ErrUnknownTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := board.Snapshot()
			_, err := board.Spawn(tt.team, tt.rank, tt.at)
			assert.True(t, errors.Is(err, tt.isErr), "got %v", err)
			assert.Equal(t, before, board.Snapshot())
		})
	}
}

func TestBoard_PlaceAndVacateKeepBothSides(t *testing.T) {
	board := NewBoard(8, 8)
	id, err := board.Spawn(White, Rook, Coordinate{0, 0})
	require.NoError(t, err)

	origin, _ := board.SquareAt(Coordinate{0, 0})
	dest, _ := board.SquareAt(Coordinate{0, 5})

	require.NoError(t, board.Place(id, dest.ID))
	assert.True(t, origin.IsEmpty(), "placing elsewhere lifts the piece off its old square")
	assert.Equal(t, id, dest.Occupant())
	p, _ := board.Piece(id)
	assert.Equal(t, dest.ID, p.Square())

	lifted := board.Vacate(dest.ID)
	assert.Equal(t, id, lifted)
	assert.True(t, dest.IsEmpty())
	assert.Equal(t, NoSquare, p.Square())

	assert.Equal(t, NoPiece, board.Vacate(dest.ID), "vacating an empty square is a no-op")
}

func TestBoard_PlaceOntoOccupiedSquareFails(t *testing.T) {
	board := NewBoard(8, 8)
	rook, _ := board.Spawn(White, Rook, Coordinate{0, 0})
	_, _ = board.Spawn(Black, Knight, Coordinate{0, 5})
	dest, _ := board.SquareAt(Coordinate{0, 5})

	err := board.Place(rook, dest.ID)
	assert.ErrorIs(t, err, ErrSquareOccupied)
	assert.NoError(t, board.CheckInvariants())
}

func TestBoard_CheckInvariants(t *testing.T) {
	t.Run("active set disagrees with roster", func(t *testing.T) {
		board := NewBoard(8, 8)
		id, _ := board.Spawn(White, Rook, Coordinate{0, 0})
		board.RemoveActive(id)
		assert.ErrorIs(t, board.CheckInvariants(), ErrInvariantBroken)
	})

	t.Run("piece off its square but still on roster", func(t *testing.T) {
		board := NewBoard(8, 8)
		id, _ := board.Spawn(White, Rook, Coordinate{0, 0})
		sq, _ := board.SquareOf(id)
		board.Vacate(sq.ID)
		assert.ErrorIs(t, board.CheckInvariants(), ErrInvariantBroken)
	})

	t.Run("fully captured piece is consistent", func(t *testing.T) {
		board := NewBoard(8, 8)
		id, _ := board.Spawn(Black, Knight, Coordinate{0, 5})
		sq, _ := board.SquareOf(id)
		black, _ := board.Team(Black)

		board.Vacate(sq.ID)
		board.RemoveActive(id)
		black.RemoveFromRoster(id)
		assert.NoError(t, board.CheckInvariants())
	})
}

func TestBoard_Corruption(t *testing.T) {
	board := NewBoard(8, 8)
	cause := errors.New("compensation failed")

	board.MarkCorrupted(cause)
	board.MarkCorrupted(errors.New("second cause is ignored"))
	corrupted, got := board.Corrupted()
	assert.True(t, corrupted)
	assert.Equal(t, cause, got)
	assert.True(t, board.Snapshot().Corrupted)

	require.NoError(t, board.ClearCorruption())
	corrupted, got = board.Corrupted()
	assert.False(t, corrupted)
	assert.Nil(t, got)
}

func TestBoard_ClearCorruptionRefusesBrokenBoard(t *testing.T) {
	board := NewBoard(8, 8)
	id, _ := board.Spawn(White, Rook, Coordinate{0, 0})
	board.RemoveActive(id)
	board.MarkCorrupted(errors.New("boom"))

	assert.ErrorIs(t, board.ClearCorruption(), ErrInvariantBroken)
	corrupted, _ := board.Corrupted()
	assert.True(t, corrupted)
}

func TestBoard_HistoryHelpers(t *testing.T) {
	board := NewBoard(8, 8)
	id, _ := board.Spawn(White, Rook, Coordinate{0, 0})

	board.RecordPosition(id, Coordinate{0, 5})
	p, _ := board.Piece(id)
	assert.Equal(t, []Coordinate{{0, 0}, {0, 5}}, p.History())

	board.DropLastPosition(id, Coordinate{3, 3})
	assert.Len(t, p.History(), 2, "only the matching newest entry is dropped")

	board.DropLastPosition(id, Coordinate{0, 5})
	assert.Equal(t, []Coordinate{{0, 0}}, p.History())
}

func TestBoard_SnapshotIsDetached(t *testing.T) {
	board := NewBoard(8, 8)
	id, _ := board.Spawn(White, Pawn, Coordinate{1, 0})
	snap := board.Snapshot()

	board.RecordPosition(id, Coordinate{2, 0})
	require.NoError(t, board.ReplaceRank(id, Queen, true))

	assert.Equal(t, "pawn", snap.Pieces[0].Rank)
	assert.False(t, snap.Pieces[0].Promoted)
	assert.Len(t, snap.Pieces[0].History, 1)
	assert.NotEqual(t, snap, board.Snapshot())
}

func TestBoard_RestoreUndoesDamage(t *testing.T) {
	board := NewBoard(8, 8)
	rook, _ := board.Spawn(White, Rook, Coordinate{0, 0})
	knight, _ := board.Spawn(Black, Knight, Coordinate{0, 5})
	good := board.Snapshot()

	// Half a capture: the kind of state a failed compensation leaves behind
	require.NoError(t, board.SetCaptor(knight, rook))
	black, _ := board.Team(Black)
	black.RemoveFromRoster(knight)
	board.RecordPosition(rook, Coordinate{0, 5})
	require.NoError(t, board.ReplaceRank(rook, Queen, true))
	board.MarkCorrupted(errors.New("compensation failed"))
	require.Error(t, board.CheckInvariants())

	require.NoError(t, board.Restore(good))
	assert.Equal(t, good, board.Snapshot())
	assert.NoError(t, board.CheckInvariants())
	corrupted, cause := board.Corrupted()
	assert.False(t, corrupted)
	assert.Nil(t, cause)

	same, _ := board.Team(Black)
	assert.Same(t, black, same, "team pointers survive a restore")
}

func TestBoard_RestoreRejectsForeignSnapshot(t *testing.T) {
	board := NewBoard(8, 8)
	other := NewBoard(6, 6)
	assert.ErrorIs(t, board.Restore(other.Snapshot()), ErrInvalidCoordinates)

	grown := NewBoard(8, 8)
	_, _ = grown.Spawn(White, King, Coordinate{0, 0})
	assert.ErrorIs(t, board.Restore(grown.Snapshot()), ErrPieceNotFound)
}
