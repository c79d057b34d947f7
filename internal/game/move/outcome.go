package move

import (
	"fmt"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// Status is the terminal state of one transaction
type Status int

// The zero value is StatusUnknown so that an empty Outcome never reads as
// a committed move
const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusRolledBack
	StatusValidationFailed
	StatusCorrupted
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusSuccess:
		return "success"
	case StatusRolledBack:
		return "rolled_back"
	case StatusValidationFailed:
		return "validation_failed"
	case StatusCorrupted:
		return "corrupted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result describes the committed move
type Result struct {
	Variant  Variant
	Actor    core.PieceID
	Enemy    core.PieceID
	From     core.Coordinate
	To       core.Coordinate
	Rank     string
	Promoted bool
}

// Outcome is what Execute returns. Exactly one of Result or Cause is set.
type Outcome struct {
	status Status
	result *Result
	cause  *Error
}

func (o Outcome) Status() Status { return o.status }
func (o Outcome) Cause() *Error  { return o.cause }

// Result returns the committed move on success
func (o Outcome) Result() (Result, bool) {
	if o.result == nil {
		return Result{}, false
	}
	return *o.result, true
}

// Restored reports whether the board is known to be in its pre-move state
// after a failure: nothing was touched, or every compensation verified.
func (o Outcome) Restored() bool {
	return o.status == StatusRolledBack || o.status == StatusValidationFailed
}

// Err returns the cause as an error, or nil on success
func (o Outcome) Err() error {
	if o.cause == nil {
		return nil
	}
	return o.cause
}

func (o Outcome) String() string {
	if o.cause != nil {
		return fmt.Sprintf("%s: %v", o.status, o.cause)
	}
	return o.status.String()
}

func succeeded(r Result) Outcome {
	return Outcome{status: StatusSuccess, result: &r}
}

// ValidationFailed wraps a rejection that happened before any mutation
func ValidationFailed(cause *Error) Outcome {
	return Outcome{status: StatusValidationFailed, cause: cause}
}

func rolledBack(cause *Error) Outcome {
	return Outcome{status: StatusRolledBack, cause: cause}
}

func corrupted(cause *Error) Outcome {
	return Outcome{status: StatusCorrupted, cause: cause}
}
