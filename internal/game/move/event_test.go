package move

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/testutil"
)

func TestBuildAttack_ResolvesOriginFromBoard(t *testing.T) {
	fx := testutil.CreateRookVsKnight(t)

	ev, err := BuildAttack(fx.Board, fx.Rook, fx.Knight, core.NewCoordinate(0, 5))
	require.NoError(t, err)

	assert.Equal(t, Attack, ev.Variant())
	assert.Equal(t, fx.Rook, ev.Actor())
	assert.Equal(t, fx.Knight, ev.Enemy())
	assert.Equal(t, core.SquareID(0), ev.Origin())
	assert.Equal(t, core.SquareID(5), ev.Destination())
	assert.Nil(t, ev.PromoteTo())
	assert.Same(t, fx.Board, ev.Board())
	assert.Equal(t, "attack piece 0 square 0->5 enemy 1", ev.String())
}

func TestBuild_DispatchesByVariant(t *testing.T) {
	b := testutil.CreateTestBoard(8, 8)
	king := testutil.MustSpawn(t, b, core.White, core.King, 0, 4)
	pawn := testutil.MustSpawn(t, b, core.White, core.Pawn, 6, 0)

	ev, err := Build(b, Request{Variant: Occupation, Actor: king, Enemy: core.NoPiece, To: core.NewCoordinate(1, 4)})
	require.NoError(t, err)
	assert.Equal(t, Occupation, ev.Variant())
	assert.Equal(t, core.NoPiece, ev.Enemy())

	ev, err = Build(b, Request{Variant: Promotion, Actor: pawn, To: core.NewCoordinate(7, 0), PromoteTo: core.Knight})
	require.NoError(t, err)
	assert.Equal(t, Promotion, ev.Variant())
	assert.Equal(t, core.Knight, ev.PromoteTo())
	assert.Equal(t, "promotion piece 1 square 48->56 to knight", ev.String())

	_, err = Build(b, Request{Variant: Variant(42), Actor: king})
	assertCode(t, err, KindBuild, CodeWrongVariant)
}

func TestBuild_Rejections(t *testing.T) {
	b := testutil.CreateTestBoard(8, 8)
	rook := testutil.MustSpawn(t, b, core.White, core.Rook, 0, 0)
	knight := testutil.MustSpawn(t, b, core.Black, core.Knight, 0, 5)
	testutil.MustSpawn(t, b, core.White, core.Bishop, 1, 0)
	blackKing := testutil.MustSpawn(t, b, core.Black, core.King, 7, 0)
	whiteKing := testutil.MustSpawn(t, b, core.White, core.King, 7, 7)
	pawn := testutil.MustSpawn(t, b, core.White, core.Pawn, 6, 3)
	blackRook := testutil.MustSpawn(t, b, core.Black, core.Rook, 7, 4)
	blackPawn := testutil.MustSpawn(t, b, core.Black, core.Pawn, 1, 6)

	tests := []struct {
		name  string
		build func() (*Event, error)
		code  Code
	}{
		{"nil board", func() (*Event, error) { return BuildRelocation(nil, rook, core.NewCoordinate(0, 1)) }, CodeBoardMissing},
		{"unknown actor", func() (*Event, error) { return BuildRelocation(b, 99, core.NewCoordinate(0, 1)) }, CodeActorInvalid},
		{"off board", func() (*Event, error) { return BuildRelocation(b, rook, core.NewCoordinate(8, 0)) }, CodeDestinationInvalid},
		{"no-op", func() (*Event, error) { return BuildRelocation(b, rook, core.NewCoordinate(0, 0)) }, CodeNoOpMove},
		{"actor is enemy", func() (*Event, error) { return BuildAttack(b, rook, rook, core.NewCoordinate(0, 5)) }, CodeSelfTarget},
		{"attack without enemy", func() (*Event, error) { return BuildAttack(b, rook, core.NoPiece, core.NewCoordinate(0, 5)) }, CodeEnemyMissing},
		{"unknown enemy", func() (*Event, error) { return BuildAttack(b, rook, 77, core.NewCoordinate(0, 5)) }, CodeEnemyMissing},
		{"stale enemy square", func() (*Event, error) { return BuildAttack(b, rook, knight, core.NewCoordinate(0, 4)) }, CodeStaleEnemy},
		{"friendly fire", func() (*Event, error) { return BuildRelocation(b, rook, core.NewCoordinate(1, 0)) }, CodeFriendlyFire},
		{"king target", func() (*Event, error) { return BuildAttack(b, rook, blackKing, core.NewCoordinate(7, 0)) }, CodeKingTarget},
		{"illegal geometry", func() (*Event, error) { return BuildRelocation(b, rook, core.NewCoordinate(1, 1)) }, CodeIllegalGeometry},
		{"king relocating", func() (*Event, error) { return BuildRelocation(b, whiteKing, core.NewCoordinate(6, 7)) }, CodeWrongVariant},
		{"rook occupying", func() (*Event, error) { return BuildOccupation(b, rook, core.NewCoordinate(0, 1)) }, CodeWrongVariant},
		{"promote to king", func() (*Event, error) { return BuildPromotion(b, pawn, core.NewCoordinate(7, 3), core.King) }, CodePromotionRankInvalid},
		{"promote to pawn", func() (*Event, error) { return BuildPromotion(b, pawn, core.NewCoordinate(7, 3), core.Pawn) }, CodePromotionRankInvalid},
		{"pawn relocating onto last row", func() (*Event, error) { return BuildRelocation(b, pawn, core.NewCoordinate(7, 3)) }, CodeWrongVariant},
		{"pawn capturing onto last row", func() (*Event, error) { return BuildAttack(b, pawn, blackRook, core.NewCoordinate(7, 4)) }, CodeWrongVariant},
		{"black pawn relocating onto row zero", func() (*Event, error) { return BuildRelocation(b, blackPawn, core.NewCoordinate(0, 6)) }, CodeWrongVariant},
		{"promote a rook", func() (*Event, error) { return BuildPromotion(b, rook, core.NewCoordinate(0, 1), core.Queen) }, CodeNotPromotable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := b.Snapshot()
			ev, err := tt.build()
			assert.Nil(t, ev)
			assertCode(t, err, KindBuild, tt.code)
			assert.Equal(t, before, b.Snapshot())
		})
	}
}

func TestBuild_PawnEntersLastRowOnlyByPromotion(t *testing.T) {
	b := testutil.CreateTestBoard(8, 8)
	pawn := testutil.MustSpawn(t, b, core.White, core.Pawn, 6, 3)

	_, err := BuildRelocation(b, pawn, core.NewCoordinate(7, 3))
	assertCode(t, err, KindBuild, CodeWrongVariant)

	ev, err := BuildPromotion(b, pawn, core.NewCoordinate(7, 3), core.Queen)
	require.NoError(t, err)
	out := quietExecutor().Execute(ev)
	require.Equal(t, StatusSuccess, out.Status(), out.String())

	p, _ := b.Piece(pawn)
	assert.Equal(t, core.Queen, p.Rank())
	assert.True(t, p.Promoted())
}

func TestBuildPromotion_RejectsPromotedActor(t *testing.T) {
	b := testutil.CreateTestBoard(8, 8)
	pawn := testutil.MustSpawn(t, b, core.White, core.Pawn, 6, 3)
	require.NoError(t, b.ReplaceRank(pawn, core.Queen, true))

	_, err := BuildPromotion(b, pawn, core.NewCoordinate(7, 3), core.Rook)
	assertCode(t, err, KindBuild, CodeAlreadyPromoted)
}

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{Relocation, Occupation, Attack, Promotion} {
		got, err := ParseVariant(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVariant("castle")
	assertCode(t, err, KindBuild, CodeWrongVariant)
}

func assertCode(t *testing.T, err error, kind Kind, code Code) {
	t.Helper()
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok, "expected *move.Error, got %T: %v", err, err)
	assert.Equal(t, kind, e.Kind, "kind for %v", err)
	assert.Equal(t, code, e.Code, "code for %v", err)
	assert.ErrorIs(t, err, Sentinel(code))
}
