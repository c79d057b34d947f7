package core

import (
	"fmt"
	"sort"
)

// PieceID addresses a piece in the board's arena. IDs are never reused.
type PieceID int

// SquareID addresses a square in the board's arena (row-major index).
type SquareID int

const (
	NoPiece  PieceID  = -1
	NoSquare SquareID = -1
)

// Square is one cell of the board. Its occupant is only ever changed through
// Board.Place and Board.Vacate, which keep the piece side in step.
type Square struct {
	ID       SquareID
	Coord    Coordinate
	occupant PieceID
}

func (s *Square) Occupant() PieceID { return s.occupant }
func (s *Square) IsEmpty() bool     { return s.occupant == NoPiece }

// Piece is a single game piece. Captured pieces stay in the arena with no
// square and a captor.
type Piece struct {
	ID   PieceID
	Team Color

	rank      Rank
	birthRank Rank
	promoted  bool
	square    SquareID
	captor    PieceID
	history   []Coordinate
}

func (p *Piece) Rank() Rank              { return p.rank }
func (p *Piece) BirthRank() Rank         { return p.birthRank }
func (p *Piece) Promoted() bool          { return p.promoted }
func (p *Piece) Square() SquareID        { return p.square }
func (p *Piece) Captor() PieceID         { return p.captor }
func (p *Piece) IsCaptured() bool        { return p.captor != NoPiece }
func (p *Piece) IsKing() bool            { return p.rank != nil && p.rank.IsKing() }
func (p *Piece) IsEnemyOf(o *Piece) bool { return o != nil && p.Team != o.Team }

// History returns a copy of the coordinates the piece has occupied, oldest first.
func (p *Piece) History() []Coordinate {
	return append([]Coordinate(nil), p.history...)
}

// Board owns the square arena, the piece arena, the active-piece set and the
// two teams.
type Board struct {
	Rows, Cols int

	squares []Square
	pieces  []*Piece
	active  map[PieceID]struct{}
	teams   map[Color]*Team

	corrupted    bool
	corruptCause error
}

// NewBoard creates an empty board with both teams registered
func NewBoard(rows, cols int) *Board {
	b := &Board{
		Rows:    rows,
		Cols:    cols,
		squares: make([]Square, rows*cols),
		active:  make(map[PieceID]struct{}),
		teams: map[Color]*Team{
			White: NewTeam(White),
			Black: NewTeam(Black),
		},
	}
	for i := range b.squares {
		b.squares[i] = Square{
			ID:       SquareID(i),
			Coord:    FromIndex(i, cols),
			occupant: NoPiece,
		}
	}
	return b
}

// InBounds checks if a coordinate lies on the board
func (b *Board) InBounds(c Coordinate) bool {
	return c.IsValid(b.Rows, b.Cols)
}

// SquareAt returns the square at the given coordinate
func (b *Board) SquareAt(c Coordinate) (*Square, bool) {
	if !b.InBounds(c) {
		return nil, false
	}
	return &b.squares[c.ToIndex(b.Cols)], true
}

// SquareByID returns the square with the given id
func (b *Board) SquareByID(id SquareID) (*Square, bool) {
	if id < 0 || int(id) >= len(b.squares) {
		return nil, false
	}
	return &b.squares[id], true
}

// Piece returns the arena entry for id, captured or not
func (b *Board) Piece(id PieceID) (*Piece, bool) {
	if id < 0 || int(id) >= len(b.pieces) {
		return nil, false
	}
	return b.pieces[id], true
}

// SquareOf returns the square the piece currently occupies
func (b *Board) SquareOf(id PieceID) (*Square, bool) {
	p, ok := b.Piece(id)
	if !ok || p.square == NoSquare {
		return nil, false
	}
	return b.SquareByID(p.square)
}

// OccupantAt returns the piece on c, or NoPiece
func (b *Board) OccupantAt(c Coordinate) PieceID {
	sq, ok := b.SquareAt(c)
	if !ok {
		return NoPiece
	}
	return sq.occupant
}

// Team returns the team registered for color
func (b *Board) Team(color Color) (*Team, bool) {
	t, ok := b.teams[color]
	return t, ok
}

// Spawn creates a piece during setup and binds it to its opening square, the
// active set and its team roster in one go.
func (b *Board) Spawn(team Color, rank Rank, at Coordinate) (PieceID, error) {
	if rank == nil {
		return NoPiece, ErrNilRank
	}
	t, ok := b.teams[team]
	if !ok {
		return NoPiece, fmt.Errorf("spawn %s: %w", team, ErrUnknownTeam)
	}
	sq, ok := b.SquareAt(at)
	if !ok {
		return NoPiece, fmt.Errorf("spawn at %s: %w", at, ErrInvalidCoordinates)
	}
	if !sq.IsEmpty() {
		return NoPiece, fmt.Errorf("spawn at %s: %w", at, ErrSquareOccupied)
	}

	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, &Piece{
		ID:        id,
		Team:      team,
		rank:      rank,
		birthRank: rank,
		square:    NoSquare,
		captor:    NoPiece,
	})
	if err := b.Place(id, sq.ID); err != nil {
		b.pieces = b.pieces[:len(b.pieces)-1]
		return NoPiece, err
	}
	b.pieces[id].history = []Coordinate{at}
	b.active[id] = struct{}{}
	t.AddToRoster(id)
	return id, nil
}

// Place binds piece id to square sid, updating both sides. A piece already on
// another square is lifted off it first.
func (b *Board) Place(id PieceID, sid SquareID) error {
	p, ok := b.Piece(id)
	if !ok {
		return fmt.Errorf("place piece %d: %w", id, ErrPieceNotFound)
	}
	sq, ok := b.SquareByID(sid)
	if !ok {
		return fmt.Errorf("place piece %d on square %d: %w", id, sid, ErrInvalidCoordinates)
	}
	if sq.occupant != NoPiece && sq.occupant != id {
		return fmt.Errorf("place piece %d on %s: %w", id, sq.Coord, ErrSquareOccupied)
	}
	if p.square != NoSquare && p.square != sid {
		b.squares[p.square].occupant = NoPiece
	}
	sq.occupant = id
	p.square = sid
	return nil
}

// Vacate clears square sid and the occupant's square reference. It returns
// the piece that was lifted, or NoPiece.
func (b *Board) Vacate(sid SquareID) PieceID {
	sq, ok := b.SquareByID(sid)
	if !ok || sq.occupant == NoPiece {
		return NoPiece
	}
	id := sq.occupant
	sq.occupant = NoPiece
	if p, ok := b.Piece(id); ok && p.square == sid {
		p.square = NoSquare
	}
	return id
}

// AddActive puts id in the active-pieces set
func (b *Board) AddActive(id PieceID) { b.active[id] = struct{}{} }

// RemoveActive drops id from the active-pieces set
func (b *Board) RemoveActive(id PieceID) { delete(b.active, id) }

// IsActive reports whether id is in the active-pieces set
func (b *Board) IsActive(id PieceID) bool {
	_, ok := b.active[id]
	return ok
}

// ActivePieces returns the active set in id order
func (b *Board) ActivePieces() []PieceID {
	ids := make([]PieceID, 0, len(b.active))
	for id := range b.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetCaptor records (or, with NoPiece, clears) the piece that captured id
func (b *Board) SetCaptor(id, captor PieceID) error {
	p, ok := b.Piece(id)
	if !ok {
		return fmt.Errorf("set captor of %d: %w", id, ErrPieceNotFound)
	}
	p.captor = captor
	return nil
}

// ReplaceRank swaps a piece's movement capability and its promotion marker
func (b *Board) ReplaceRank(id PieceID, rank Rank, promoted bool) error {
	if rank == nil {
		return ErrNilRank
	}
	p, ok := b.Piece(id)
	if !ok {
		return fmt.Errorf("replace rank of %d: %w", id, ErrPieceNotFound)
	}
	p.rank = rank
	p.promoted = promoted
	return nil
}

// RecordPosition appends c to the piece's position history
func (b *Board) RecordPosition(id PieceID, c Coordinate) {
	if p, ok := b.Piece(id); ok {
		p.history = append(p.history, c)
	}
}

// DropLastPosition removes the newest history entry if it equals c
func (b *Board) DropLastPosition(id PieceID, c Coordinate) {
	p, ok := b.Piece(id)
	if !ok || len(p.history) == 0 {
		return
	}
	if p.history[len(p.history)-1].Equal(c) {
		p.history = p.history[:len(p.history)-1]
	}
}

// MarkCorrupted flags the board as unusable until ClearCorruption is called.
// The first cause wins.
func (b *Board) MarkCorrupted(cause error) {
	if b.corrupted {
		return
	}
	b.corrupted = true
	b.corruptCause = cause
}

// Corrupted reports whether a failed compensation left the board inconsistent
func (b *Board) Corrupted() (bool, error) {
	return b.corrupted, b.corruptCause
}

// ClearCorruption lifts the corrupted flag once the board was repaired
// externally. It refuses while invariants are still broken.
func (b *Board) ClearCorruption() error {
	if err := b.CheckInvariants(); err != nil {
		return err
	}
	b.corrupted = false
	b.corruptCause = nil
	return nil
}

// CheckInvariants verifies exclusive occupancy and that roster membership,
// square occupancy and the active set agree for every piece.
func (b *Board) CheckInvariants() error {
	for i := range b.squares {
		sq := &b.squares[i]
		if sq.occupant == NoPiece {
			continue
		}
		p, ok := b.Piece(sq.occupant)
		if !ok {
			return fmt.Errorf("square %s holds unknown piece %d: %w", sq.Coord, sq.occupant, ErrInvariantBroken)
		}
		if p.square != sq.ID {
			return fmt.Errorf("square %s holds piece %d which points at square %d: %w", sq.Coord, p.ID, p.square, ErrInvariantBroken)
		}
	}
	for _, p := range b.pieces {
		t := b.teams[p.Team]
		onRoster := t != nil && t.OnRoster(p.ID)
		onSquare := p.square != NoSquare
		if onSquare && b.squares[p.square].occupant != p.ID {
			return fmt.Errorf("piece %d points at square %d it does not occupy: %w", p.ID, p.square, ErrInvariantBroken)
		}
		active := b.IsActive(p.ID)
		if onRoster != onSquare || onSquare != active {
			return fmt.Errorf("piece %d membership disagrees (roster=%t square=%t active=%t): %w",
				p.ID, onRoster, onSquare, active, ErrInvariantBroken)
		}
	}
	return nil
}
