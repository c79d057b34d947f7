package core

import (
	"fmt"
	"strings"
)

// Rank is a piece's movement capability. CanReach answers whether moving
// from -> to is geometrically legal for a piece of team given the current
// occupancy of b (path blocking included). It does not judge what stands on
// the destination beyond what the geometry itself needs.
type Rank interface {
	Name() string
	IsKing() bool
	Promotable() bool
	CanReach(b *Board, from, to Coordinate, team Color) bool
}

type rankKind int

const (
	kindKing rankKind = iota
	kindQueen
	kindRook
	kindBishop
	kindKnight
	kindPawn
)

type standardRank struct {
	kind rankKind
	name string
}

var (
	King   Rank = standardRank{kind: kindKing, name: "king"}
	Queen  Rank = standardRank{kind: kindQueen, name: "queen"}
	Rook   Rank = standardRank{kind: kindRook, name: "rook"}
	Bishop Rank = standardRank{kind: kindBishop, name: "bishop"}
	Knight Rank = standardRank{kind: kindKnight, name: "knight"}
	Pawn   Rank = standardRank{kind: kindPawn, name: "pawn"}
)

var ranksByName = map[string]Rank{
	"king":   King,
	"queen":  Queen,
	"rook":   Rook,
	"bishop": Bishop,
	"knight": Knight,
	"pawn":   Pawn,
}

// ParseRank resolves a rank by name (case-insensitive)
func ParseRank(name string) (Rank, error) {
	r, ok := ranksByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("rank %q: %w", name, ErrUnknownRank)
	}
	return r, nil
}

func (r standardRank) Name() string     { return r.name }
func (r standardRank) String() string   { return r.name }
func (r standardRank) IsKing() bool     { return r.kind == kindKing }
func (r standardRank) Promotable() bool { return r.kind == kindPawn }

func (r standardRank) CanReach(b *Board, from, to Coordinate, team Color) bool {
	if b == nil || !b.InBounds(from) || !b.InBounds(to) || from.Equal(to) {
		return false
	}
	d := to.Sub(from)
	dr, dc := abs(d.Row), abs(d.Col)

	switch r.kind {
	case kindKing:
		return dr <= 1 && dc <= 1
	case kindKnight:
		return (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
	case kindRook:
		return (dr == 0 || dc == 0) && pathClear(b, from, to)
	case kindBishop:
		return dr == dc && pathClear(b, from, to)
	case kindQueen:
		return (dr == 0 || dc == 0 || dr == dc) && pathClear(b, from, to)
	case kindPawn:
		return pawnCanReach(b, from, to, team)
	default:
		return false
	}
}

func pawnCanReach(b *Board, from, to Coordinate, team Color) bool {
	fwd := team.Forward()
	d := to.Sub(from)
	occupied := b.OccupantAt(to) != NoPiece

	switch {
	case d.Col == 0 && d.Row == fwd:
		return !occupied
	case d.Col == 0 && d.Row == 2*fwd && from.Row == team.PawnRow(b.Rows):
		return !occupied && pathClear(b, from, to)
	case abs(d.Col) == 1 && d.Row == fwd:
		return occupied
	default:
		return false
	}
}

// pathClear reports whether every square strictly between from and to is empty
func pathClear(b *Board, from, to Coordinate) bool {
	for _, c := range from.Between(to) {
		if b.OccupantAt(c) != NoPiece {
			return false
		}
	}
	return true
}
