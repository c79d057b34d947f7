package core

import (
	"fmt"
	"sort"
)

// Color identifies a side
type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Forward is the row delta of a pawn advance. White starts on low rows.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// PawnRow is the row pawns of this side start on
func (c Color) PawnRow(rows int) int {
	if c == White {
		return 1
	}
	return rows - 2
}

// PromotionRow is the opponent's back rank
func (c Color) PromotionRow(rows int) int {
	if c == White {
		return rows - 1
	}
	return 0
}

// ParseColor converts "white"/"black" to a Color
func ParseColor(s string) (Color, error) {
	switch s {
	case "white":
		return White, nil
	case "black":
		return Black, nil
	default:
		return 0, fmt.Errorf("color %q: %w", s, ErrUnknownTeam)
	}
}

// Team holds a side's active roster and the enemy pieces it has captured.
// All mutators report whether they changed anything so that callers can use
// them as idempotent compensations.
type Team struct {
	Color    Color
	roster   map[PieceID]struct{}
	hostages []PieceID
}

// NewTeam creates an empty team
func NewTeam(color Color) *Team {
	return &Team{
		Color:  color,
		roster: make(map[PieceID]struct{}),
	}
}

func (t *Team) AddToRoster(id PieceID) bool {
	if _, ok := t.roster[id]; ok {
		return false
	}
	t.roster[id] = struct{}{}
	return true
}

func (t *Team) RemoveFromRoster(id PieceID) bool {
	if _, ok := t.roster[id]; !ok {
		return false
	}
	delete(t.roster, id)
	return true
}

func (t *Team) OnRoster(id PieceID) bool {
	_, ok := t.roster[id]
	return ok
}

// Roster returns the active pieces in id order
func (t *Team) Roster() []PieceID {
	ids := make([]PieceID, 0, len(t.roster))
	for id := range t.roster {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AddHostage appends a captured enemy piece, keeping capture order
func (t *Team) AddHostage(id PieceID) bool {
	if t.HoldsHostage(id) {
		return false
	}
	t.hostages = append(t.hostages, id)
	return true
}

func (t *Team) RemoveHostage(id PieceID) bool {
	for i, h := range t.hostages {
		if h == id {
			t.hostages = append(t.hostages[:i], t.hostages[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Team) HoldsHostage(id PieceID) bool {
	for _, h := range t.hostages {
		if h == id {
			return true
		}
	}
	return false
}

// Hostages returns the captured pieces in capture order
func (t *Team) Hostages() []PieceID {
	return append([]PieceID(nil), t.hostages...)
}
