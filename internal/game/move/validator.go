package move

import (
	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// Validator decides whether an event is legal against the current board.
// It never mutates anything.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs the checks in a fixed order and returns the first failure
func (v *Validator) Validate(ev *Event) *Error {
	if ev == nil || ev.board == nil {
		return validationErr(CodeMalformedEvent, "event has no board")
	}
	board := ev.board
	if corrupted, cause := board.Corrupted(); corrupted {
		return &Error{Kind: KindValidation, Code: CodeBoardCorrupted, Message: "board is corrupted", Cause: cause}
	}
	if ev.variant < Relocation || ev.variant > Promotion {
		return validationErr(CodeMalformedEvent, "unknown variant %s", ev.variant)
	}

	actor, err := v.checkActor(ev)
	if err != nil {
		return err
	}

	dest, ok := board.SquareByID(ev.destination)
	if !ok {
		return validationErr(CodeForeignSquare, "square %d does not belong to this board", ev.destination)
	}
	origin, _ := board.SquareByID(ev.origin)

	switch ev.variant {
	case Attack:
		if err := v.checkTarget(ev, actor, dest); err != nil {
			return err
		}
	default:
		if !dest.IsEmpty() {
			return validationErr(CodeDestinationOccupied, "%s is occupied by piece %d", dest.Coord, dest.Occupant())
		}
	}

	if origin.ID == dest.ID {
		return validationErr(CodeNoOpMove, "piece %d is already on %s", ev.actor, dest.Coord)
	}

	if ev.variant == Promotion {
		return v.checkPromotion(ev, actor, dest)
	}
	return nil
}

func (v *Validator) checkActor(ev *Event) (*core.Piece, *Error) {
	board := ev.board
	p, ok := board.Piece(ev.actor)
	if !ok || p.IsCaptured() || !board.IsActive(ev.actor) {
		return nil, validationErr(CodeActorInvalid, "piece %d is not in play", ev.actor)
	}
	team, ok := board.Team(p.Team)
	if !ok || !team.OnRoster(ev.actor) {
		return nil, validationErr(CodeActorInvalid, "piece %d is not on the %s roster", ev.actor, p.Team)
	}
	origin, ok := board.SquareByID(ev.origin)
	if !ok || origin.Occupant() != ev.actor || p.Square() != ev.origin {
		return nil, validationErr(CodeActorNotOnOrigin, "piece %d is no longer on square %d", ev.actor, ev.origin)
	}
	return p, nil
}

func (v *Validator) checkTarget(ev *Event, actor *core.Piece, dest *core.Square) *Error {
	board := ev.board
	occ := dest.Occupant()
	if occ == core.NoPiece || occ != ev.enemy {
		return validationErr(CodeTargetMismatch, "%s does not hold enemy %d", dest.Coord, ev.enemy)
	}
	target, _ := board.Piece(occ)
	if !actor.IsEnemyOf(target) {
		return validationErr(CodeFriendlyFire, "piece %d is on the same side", occ)
	}
	if target.IsKing() {
		return validationErr(CodeKingTarget, "the king on %s cannot be captured", dest.Coord)
	}
	if target.IsCaptured() || !board.IsActive(occ) {
		return validationErr(CodeTargetMismatch, "enemy %d is not in play", occ)
	}
	return nil
}

func (v *Validator) checkPromotion(ev *Event, actor *core.Piece, dest *core.Square) *Error {
	// The flag and the rank must tell the same story
	unchanged := actor.Rank() == actor.BirthRank()
	if actor.Promoted() == unchanged {
		return NewError(KindIntegrity, CodePromotionInconsistent,
			"piece %d promoted=%t but rank %s, born %s", ev.actor, actor.Promoted(), actor.Rank().Name(), actor.BirthRank().Name())
	}
	if actor.Promoted() {
		return validationErr(CodeAlreadyPromoted, "piece %d was already promoted", ev.actor)
	}
	if !actor.Rank().Promotable() {
		return validationErr(CodeNotPromotable, "a %s cannot be promoted", actor.Rank().Name())
	}
	if dest.Coord.Row != actor.Team.PromotionRow(ev.board.Rows) {
		return validationErr(CodeNotPromotionRow, "%s is not on the %s promotion row", dest.Coord, actor.Team)
	}
	if ev.promoteTo == nil || ev.promoteTo.IsKing() || ev.promoteTo.Promotable() {
		return validationErr(CodePromotionRankInvalid, "cannot promote to %s", rankName(ev.promoteTo))
	}
	return nil
}
