package move

import (
	"fmt"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// Variant selects which kind of move an Event describes
type Variant int

const (
	Relocation Variant = iota
	Occupation
	Attack
	Promotion
)

func (v Variant) String() string {
	switch v {
	case Relocation:
		return "relocation"
	case Occupation:
		return "occupation"
	case Attack:
		return "attack"
	case Promotion:
		return "promotion"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant converts a variant name to a Variant
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "relocation":
		return Relocation, nil
	case "occupation":
		return Occupation, nil
	case "attack":
		return Attack, nil
	case "promotion":
		return Promotion, nil
	default:
		return 0, buildErr(CodeWrongVariant, "unknown move variant %q", s)
	}
}

// Event is an immutable description of one proposed move. Events only come
// out of the Build functions, which resolve the origin from the board.
type Event struct {
	variant     Variant
	board       *core.Board
	actor       core.PieceID
	enemy       core.PieceID
	origin      core.SquareID
	destination core.SquareID
	promoteTo   core.Rank
}

func (e *Event) Variant() Variant           { return e.variant }
func (e *Event) Board() *core.Board         { return e.board }
func (e *Event) Actor() core.PieceID        { return e.actor }
func (e *Event) Enemy() core.PieceID        { return e.enemy }
func (e *Event) Origin() core.SquareID      { return e.origin }
func (e *Event) Destination() core.SquareID { return e.destination }
func (e *Event) PromoteTo() core.Rank       { return e.promoteTo }

func (e *Event) String() string {
	s := fmt.Sprintf("%s piece %d square %d->%d", e.variant, e.actor, e.origin, e.destination)
	if e.enemy != core.NoPiece {
		s += fmt.Sprintf(" enemy %d", e.enemy)
	}
	if e.promoteTo != nil {
		s += " to " + e.promoteTo.Name()
	}
	return s
}

// Request is the caller-facing input to Build. Enemy is only read for
// attacks and PromoteTo only for promotions.
type Request struct {
	Variant   Variant
	Actor     core.PieceID
	Enemy     core.PieceID
	To        core.Coordinate
	PromoteTo core.Rank
}

// Build dispatches a request to the builder for its variant
func Build(board *core.Board, req Request) (*Event, error) {
	switch req.Variant {
	case Relocation:
		return BuildRelocation(board, req.Actor, req.To)
	case Occupation:
		return BuildOccupation(board, req.Actor, req.To)
	case Attack:
		return BuildAttack(board, req.Actor, req.Enemy, req.To)
	case Promotion:
		return BuildPromotion(board, req.Actor, req.To, req.PromoteTo)
	default:
		return nil, buildErr(CodeWrongVariant, "unknown move variant %s", req.Variant)
	}
}

// BuildRelocation describes a non-King piece moving to an empty square
func BuildRelocation(board *core.Board, actor core.PieceID, to core.Coordinate) (*Event, error) {
	ev, p, err := resolve(board, actor, core.NoPiece, to)
	if err != nil {
		return nil, err
	}
	if p.IsKing() {
		return nil, buildErr(CodeWrongVariant, "king %d must move by occupation", actor)
	}
	if err := requirePromotion(board, p, to); err != nil {
		return nil, err
	}
	ev.variant = Relocation
	return ev, nil
}

// BuildOccupation describes a King moving to an empty square
func BuildOccupation(board *core.Board, actor core.PieceID, to core.Coordinate) (*Event, error) {
	ev, p, err := resolve(board, actor, core.NoPiece, to)
	if err != nil {
		return nil, err
	}
	if !p.IsKing() {
		return nil, buildErr(CodeWrongVariant, "piece %d is not a king", actor)
	}
	ev.variant = Occupation
	return ev, nil
}

// BuildAttack describes actor capturing enemy, which stands on to
func BuildAttack(board *core.Board, actor, enemy core.PieceID, to core.Coordinate) (*Event, error) {
	if enemy == core.NoPiece {
		return nil, buildErr(CodeEnemyMissing, "attack needs an enemy piece")
	}
	ev, p, err := resolve(board, actor, enemy, to)
	if err != nil {
		return nil, err
	}
	if err := requirePromotion(board, p, to); err != nil {
		return nil, err
	}
	ev.variant = Attack
	return ev, nil
}

// BuildPromotion describes a promotable piece moving to an empty square and
// taking rank promoteTo
func BuildPromotion(board *core.Board, actor core.PieceID, to core.Coordinate, promoteTo core.Rank) (*Event, error) {
	if promoteTo == nil || promoteTo.IsKing() || promoteTo.Promotable() {
		return nil, buildErr(CodePromotionRankInvalid, "cannot promote to %s", rankName(promoteTo))
	}
	ev, p, err := resolve(board, actor, core.NoPiece, to)
	if err != nil {
		return nil, err
	}
	if p.Promoted() {
		return nil, buildErr(CodeAlreadyPromoted, "piece %d was already promoted", actor)
	}
	if !p.Rank().Promotable() {
		return nil, buildErr(CodeNotPromotable, "a %s cannot be promoted", p.Rank().Name())
	}
	ev.variant = Promotion
	ev.promoteTo = promoteTo
	return ev, nil
}

// resolve runs the checks shared by every variant and returns a partially
// filled event plus the actor piece.
func resolve(board *core.Board, actor, enemy core.PieceID, to core.Coordinate) (*Event, *core.Piece, error) {
	if board == nil {
		return nil, nil, buildErr(CodeBoardMissing, "no board")
	}
	p, ok := board.Piece(actor)
	if !ok || p.IsCaptured() || !board.IsActive(actor) {
		return nil, nil, buildErr(CodeActorInvalid, "piece %d cannot move", actor)
	}
	dest, ok := board.SquareAt(to)
	if !ok {
		return nil, nil, buildErr(CodeDestinationInvalid, "destination %s is off the board", to)
	}
	if enemy != core.NoPiece && enemy == actor {
		return nil, nil, buildErr(CodeSelfTarget, "piece %d cannot target itself", actor)
	}
	origin, ok := board.SquareOf(actor)
	if !ok || origin.Occupant() != actor {
		return nil, nil, buildErr(CodeActorNotOnOrigin, "piece %d is not bound to a square", actor)
	}
	if origin.ID == dest.ID {
		return nil, nil, buildErr(CodeNoOpMove, "piece %d is already on %s", actor, to)
	}

	if enemy != core.NoPiece {
		if _, ok := board.Piece(enemy); !ok {
			return nil, nil, buildErr(CodeEnemyMissing, "enemy %d does not exist", enemy)
		}
		at, ok := board.SquareOf(enemy)
		if !ok || at.ID != dest.ID {
			return nil, nil, buildErr(CodeStaleEnemy, "enemy %d is not on %s", enemy, to)
		}
	}

	if occ := dest.Occupant(); occ != core.NoPiece {
		target, _ := board.Piece(occ)
		if !p.IsEnemyOf(target) {
			return nil, nil, buildErr(CodeFriendlyFire, "%s holds friendly piece %d", to, occ)
		}
		if target.IsKing() {
			return nil, nil, buildErr(CodeKingTarget, "the king on %s cannot be targeted", to)
		}
	}

	if !p.Rank().CanReach(board, origin.Coord, to, p.Team) {
		return nil, nil, buildErr(CodeIllegalGeometry, "a %s cannot reach %s from %s", p.Rank().Name(), to, origin.Coord)
	}

	return &Event{
		board:       board,
		actor:       actor,
		enemy:       enemy,
		origin:      origin.ID,
		destination: dest.ID,
	}, p, nil
}

// requirePromotion rejects a promotable piece entering its promotion row by
// any variant other than Promotion
func requirePromotion(board *core.Board, p *core.Piece, to core.Coordinate) *Error {
	if p.Rank().Promotable() && to.Row == p.Team.PromotionRow(board.Rows) {
		return buildErr(CodeWrongVariant, "a %s reaching %s must move by promotion", p.Rank().Name(), to)
	}
	return nil
}

func rankName(r core.Rank) string {
	if r == nil {
		return "<nil>"
	}
	return r.Name()
}
