package move

import (
	"errors"
	"fmt"
)

// Kind tags which stage produced an error
type Kind int

const (
	// KindBuild rejects malformed or self-contradictory input; nothing was built.
	KindBuild Kind = iota
	// KindValidation rejects a well-formed event that is illegal right now.
	KindValidation
	// KindIntegrity reports state that contradicts itself, found before any mutation.
	KindIntegrity
	// KindRollback reports a failed step post-condition; prior state was restored.
	KindRollback
	// KindFatal reports a failed compensation; the board is flagged corrupted.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindValidation:
		return "validation"
	case KindIntegrity:
		return "integrity"
	case KindRollback:
		return "rollback"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Code is a machine-readable cause
type Code string

const (
	// Build
	CodeBoardMissing         Code = "BOARD_MISSING"
	CodeActorInvalid         Code = "ACTOR_INVALID"
	CodeDestinationInvalid   Code = "DESTINATION_INVALID"
	CodeSelfTarget           Code = "SELF_TARGET"
	CodeEnemyMissing         Code = "ENEMY_MISSING"
	CodeStaleEnemy           Code = "STALE_ENEMY_REFERENCE"
	CodeFriendlyFire         Code = "FRIENDLY_FIRE"
	CodeKingTarget           Code = "KING_TARGET"
	CodeWrongVariant         Code = "WRONG_VARIANT"
	CodeIllegalGeometry      Code = "ILLEGAL_GEOMETRY"
	CodePromotionRankInvalid Code = "PROMOTION_RANK_INVALID"
	CodeNotPromotable        Code = "NOT_PROMOTABLE"

	// Validation
	CodeMalformedEvent      Code = "MALFORMED_EVENT"
	CodeBoardCorrupted      Code = "BOARD_CORRUPTED"
	CodeActorNotOnOrigin    Code = "ACTOR_NOT_ON_ORIGIN"
	CodeForeignSquare       Code = "FOREIGN_SQUARE"
	CodeDestinationOccupied Code = "DESTINATION_OCCUPIED"
	CodeTargetMismatch      Code = "TARGET_MISMATCH"
	CodeNoOpMove            Code = "NO_OP_MOVE"
	CodeNotPromotionRow     Code = "NOT_ON_PROMOTION_ROW"
	CodeAlreadyPromoted     Code = "ALREADY_PROMOTED"

	// Integrity
	CodePromotionInconsistent Code = "PROMOTION_STATE_INCONSISTENT"

	// Rollback
	CodeStepFailed         Code = "STEP_FAILED"
	CodeVerificationFailed Code = "STEP_VERIFICATION_FAILED"

	// Fatal
	CodeCompensationFailed Code = "COMPENSATION_FAILED"

	// Game level
	CodeNotYourTurn    Code = "NOT_YOUR_TURN"
	CodeGameNotRunning Code = "GAME_NOT_RUNNING"
)

// ErrFaultInjected is the cause recorded when a FaultFunc forces a check to fail
var ErrFaultInjected = errors.New("fault injected")

// Error is the single error type of the move engine
type Error struct {
	Kind    Kind
	Code    Code
	Step    Step
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Kind, e.Code, e.Message)
	if e.Step != StepNone {
		msg += fmt.Sprintf(" [step %s]", e.Step)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates an error without a cause
func NewError(kind Kind, code Code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error around an inner cause
func Wrap(kind Kind, code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// AsError extracts the engine error from err, if any
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Sentinel returns a code-only error usable as an errors.Is target
func Sentinel(code Code) error { return &Error{Code: code} }

func buildErr(code Code, format string, args ...interface{}) *Error {
	return NewError(KindBuild, code, format, args...)
}

func validationErr(code Code, format string, args ...interface{}) *Error {
	return NewError(KindValidation, code, format, args...)
}
