package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// MustSpawn places a piece or fails the test
func MustSpawn(t *testing.T, b *core.Board, team core.Color, rank core.Rank, row, col int) core.PieceID {
	t.Helper()
	id, err := b.Spawn(team, rank, core.NewCoordinate(row, col))
	require.NoError(t, err)
	return id
}

// RequireInvariants fails the test if the board's occupancy or membership
// invariants are broken
func RequireInvariants(t *testing.T, b *core.Board) {
	t.Helper()
	require.NoError(t, b.CheckInvariants())
}
