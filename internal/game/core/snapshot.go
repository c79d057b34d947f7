package core

import "fmt"

// PieceRecord is a detached copy of one arena piece
type PieceRecord struct {
	ID        PieceID      `json:"id"`
	Team      string       `json:"team"`
	Rank      string       `json:"rank"`
	BirthRank string       `json:"birth_rank"`
	Promoted  bool         `json:"promoted"`
	Square    SquareID     `json:"square"`
	Captor    PieceID      `json:"captor"`
	History   []Coordinate `json:"history,omitempty"`
}

// TeamRecord is a detached copy of a team's collections
type TeamRecord struct {
	Team     string    `json:"team"`
	Roster   []PieceID `json:"roster"`
	Hostages []PieceID `json:"hostages,omitempty"`
}

// Snapshot is a deep, comparable copy of everything a move can touch. Two
// snapshots taken around a rejected or rolled back move must be equal.
type Snapshot struct {
	Rows      int           `json:"rows"`
	Cols      int           `json:"cols"`
	Occupants []PieceID     `json:"occupants"`
	Pieces    []PieceRecord `json:"pieces"`
	Active    []PieceID     `json:"active"`
	Teams     []TeamRecord  `json:"teams"`
	Corrupted bool          `json:"corrupted"`
}

// Snapshot copies the board state
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Rows:      b.Rows,
		Cols:      b.Cols,
		Occupants: make([]PieceID, len(b.squares)),
		Pieces:    make([]PieceRecord, 0, len(b.pieces)),
		Active:    b.ActivePieces(),
		Corrupted: b.corrupted,
	}
	for i := range b.squares {
		s.Occupants[i] = b.squares[i].occupant
	}
	for _, p := range b.pieces {
		s.Pieces = append(s.Pieces, PieceRecord{
			ID:        p.ID,
			Team:      p.Team.String(),
			Rank:      rankName(p.rank),
			BirthRank: rankName(p.birthRank),
			Promoted:  p.promoted,
			Square:    p.square,
			Captor:    p.captor,
			History:   p.History(),
		})
	}
	for _, c := range []Color{White, Black} {
		t := b.teams[c]
		s.Teams = append(s.Teams, TeamRecord{
			Team:     c.String(),
			Roster:   t.Roster(),
			Hostages: t.Hostages(),
		})
	}
	return s
}

func rankName(r Rank) string {
	if r == nil {
		return ""
	}
	return r.Name()
}

// Restore overwrites the board with a snapshot taken from it earlier. The
// arena must not have grown since.
func (b *Board) Restore(s Snapshot) error {
	if s.Rows != b.Rows || s.Cols != b.Cols || len(s.Occupants) != len(b.squares) {
		return fmt.Errorf("restore %dx%d snapshot onto %dx%d board: %w", s.Rows, s.Cols, b.Rows, b.Cols, ErrInvalidCoordinates)
	}
	if len(s.Pieces) != len(b.pieces) {
		return fmt.Errorf("restore snapshot with %d pieces onto arena of %d: %w", len(s.Pieces), len(b.pieces), ErrPieceNotFound)
	}

	pieces := make([]Piece, len(s.Pieces))
	for i, rec := range s.Pieces {
		team, err := ParseColor(rec.Team)
		if err != nil {
			return err
		}
		rank, err := ParseRank(rec.Rank)
		if err != nil {
			return err
		}
		birth, err := ParseRank(rec.BirthRank)
		if err != nil {
			return err
		}
		pieces[i] = Piece{
			ID:        rec.ID,
			Team:      team,
			rank:      rank,
			birthRank: birth,
			promoted:  rec.Promoted,
			square:    rec.Square,
			captor:    rec.Captor,
			history:   append([]Coordinate(nil), rec.History...),
		}
	}
	teams := make(map[Color]*Team, len(s.Teams))
	for _, rec := range s.Teams {
		color, err := ParseColor(rec.Team)
		if err != nil {
			return err
		}
		t := NewTeam(color)
		for _, id := range rec.Roster {
			t.AddToRoster(id)
		}
		t.hostages = append([]PieceID(nil), rec.Hostages...)
		teams[color] = t
	}

	for i := range b.squares {
		b.squares[i].occupant = s.Occupants[i]
	}
	for i := range pieces {
		*b.pieces[i] = pieces[i]
	}
	b.active = make(map[PieceID]struct{}, len(s.Active))
	for _, id := range s.Active {
		b.active[id] = struct{}{}
	}
	for color, t := range teams {
		if cur, ok := b.teams[color]; ok {
			cur.roster, cur.hostages = t.roster, t.hostages
			continue
		}
		b.teams[color] = t
	}
	b.corrupted = s.Corrupted
	if !s.Corrupted {
		b.corruptCause = nil
	}
	return nil
}
