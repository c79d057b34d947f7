package move

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FaultFunc lets tests force the post-condition of a step to fail. It is
// asked once per check; compensating is true while undoing.
type FaultFunc func(step Step, compensating bool) bool

// Executor validates and applies events as all-or-nothing transactions
type Executor struct {
	validator *Validator
	logger    zerolog.Logger
	fault     FaultFunc
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithLogger replaces the component logger
func WithLogger(l zerolog.Logger) ExecutorOption {
	return func(x *Executor) { x.logger = l }
}

// WithFaults installs a fault injector
func WithFaults(f FaultFunc) ExecutorOption {
	return func(x *Executor) { x.fault = f }
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	x := &Executor{
		validator: NewValidator(),
		logger:    log.With().Str("component", "move_executor").Logger(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute validates ev and, if it is legal, applies it step by step. A step
// whose post-condition fails is compensated together with every earlier
// step, newest first. A compensation that cannot be verified marks the
// board corrupted and stops.
func (x *Executor) Execute(ev *Event) Outcome {
	if verr := x.validator.Validate(ev); verr != nil {
		x.logger.Debug().
			Str("code", string(verr.Code)).
			Str("kind", verr.Kind.String()).
			Msg("Move rejected")
		return ValidationFailed(verr)
	}

	board := ev.board
	moveLog := x.logger.With().
		Str("variant", ev.variant.String()).
		Int("actor", int(ev.actor)).
		Int("origin", int(ev.origin)).
		Int("destination", int(ev.destination)).
		Logger()

	result := x.describe(ev)

	steps := plan(ev)
	for i, st := range steps {
		err := st.forward()
		code := CodeStepFailed
		if err == nil {
			code = CodeVerificationFailed
			err = x.check(st.step, false, st.verify)
		}
		if err == nil {
			moveLog.Trace().Str("step", st.step.String()).Msg("Step verified")
			continue
		}

		cause := Wrap(KindRollback, code, err, "move rolled back")
		cause.Step = st.step
		moveLog.Warn().Err(err).Str("step", st.step.String()).Msg("Rolling back move")

		if ferr := x.compensate(steps[:i+1], moveLog); ferr != nil {
			ferr.Cause = &compensationChain{fatal: ferr.Cause, original: cause}
			board.MarkCorrupted(ferr)
			moveLog.Error().Err(ferr).Msg("Compensation failed, board marked corrupted")
			return corrupted(ferr)
		}
		return rolledBack(cause)
	}

	if p, ok := board.Piece(ev.actor); ok {
		result.Rank = p.Rank().Name()
		result.Promoted = p.Promoted()
	}
	moveLog.Debug().Msg("Move committed")
	return succeeded(result)
}

// compensate undoes applied steps newest first and stops at the first
// compensation whose post-condition fails.
func (x *Executor) compensate(applied []action, logger zerolog.Logger) *Error {
	for i := len(applied) - 1; i >= 0; i-- {
		st := applied[i]
		err := st.inverse()
		if err == nil {
			err = x.check(st.step, true, st.verifyInverse)
		}
		if err != nil {
			fatal := Wrap(KindFatal, CodeCompensationFailed, err, "compensation failed")
			fatal.Step = st.step
			return fatal
		}
		logger.Trace().Str("step", st.step.String()).Msg("Step compensated")
	}
	return nil
}

func (x *Executor) check(step Step, compensating bool, verify func() error) error {
	if x.fault != nil && x.fault(step, compensating) {
		return ErrFaultInjected
	}
	return verify()
}

func (x *Executor) describe(ev *Event) Result {
	board := ev.board
	r := Result{Variant: ev.variant, Actor: ev.actor, Enemy: ev.enemy}
	if sq, ok := board.SquareByID(ev.origin); ok {
		r.From = sq.Coord
	}
	if sq, ok := board.SquareByID(ev.destination); ok {
		r.To = sq.Coord
	}
	return r
}

// compensationChain keeps both the compensation failure and the step
// failure that triggered the rollback reachable through errors.Is.
type compensationChain struct {
	fatal    error
	original *Error
}

func (c *compensationChain) Error() string {
	return c.fatal.Error() + " (while rolling back: " + c.original.Error() + ")"
}

func (c *compensationChain) Unwrap() []error { return []error{c.fatal, c.original} }
