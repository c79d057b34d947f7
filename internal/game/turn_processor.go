package game

import (
	"context"
	"fmt"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/game/events"
	"github.com/mitchelldurbincs/chesstx/internal/game/move"
	"github.com/mitchelldurbincs/chesstx/internal/game/states"
)

// Submit builds a move from req and runs it as one transaction. Rejections,
// rollbacks and corruption are reported through the outcome; the error is
// only set when the game cannot take moves at all.
func (g *Game) Submit(ctx context.Context, req move.Request) (move.Outcome, error) {
	if err := g.checkContext(ctx, "submit"); err != nil {
		return move.Outcome{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	phase := g.stateMachine.CurrentPhase()
	side := g.toMove
	if p, ok := g.board.Piece(req.Actor); ok {
		side = p.Team
	}
	meta := events.EventMetadata{Side: side.String(), Move: g.moves + 1}
	moveLog := g.logger.With().
		Int("move", meta.Move).
		Str("side", meta.Side).
		Str("variant", req.Variant.String()).
		Logger()

	switch {
	case phase == states.PhaseCorrupted:
		cause := move.Wrap(move.KindValidation, move.CodeBoardCorrupted, g.stateMachine.GetContext().Corruption,
			"game is waiting for recovery")
		return g.reject(req, meta, cause), nil
	case !phase.CanReceiveMoves():
		moveLog.Warn().Str("current_phase", phase.String()).Msg("Move submitted outside of play")
		return move.Outcome{}, core.WrapGameStateError(g.moves, phase.String(), ErrNotRunning)
	}

	if g.enforceTurnOrder && side != g.toMove {
		cause := move.NewError(move.KindValidation, move.CodeNotYourTurn, "%s to move", g.toMove)
		return g.reject(req, meta, cause), nil
	}

	ev, err := move.Build(g.board, req)
	if err != nil {
		cause, ok := move.AsError(err)
		if !ok {
			cause = move.Wrap(move.KindBuild, move.CodeMalformedEvent, err, "build %s", req.Variant)
		}
		return g.reject(req, meta, cause), nil
	}

	before := g.board.Snapshot()
	outcome := g.executor.Execute(ev)

	switch outcome.Status() {
	case move.StatusSuccess:
		res, _ := outcome.Result()
		g.commit(res, meta)
		moveLog.Info().Str("move_desc", ev.String()).Msg("Move executed")
	case move.StatusRolledBack:
		g.eventBus.Publish(events.NewMoveRolledBackEvent(g.id, meta, failureOf(req, outcome.Cause())))
	case move.StatusValidationFailed:
		g.eventBus.Publish(events.NewMoveRejectedEvent(g.id, meta, failureOf(req, outcome.Cause())))
	case move.StatusCorrupted:
		g.lastGood = &before
		g.eventBus.Publish(events.NewBoardCorruptedEvent(g.id, meta, failureOf(req, outcome.Cause())))
		g.stateMachine.GetContext().Corruption = outcome.Err()
		if terr := g.stateMachine.TransitionTo(states.PhaseCorrupted, "compensation failed"); terr != nil {
			moveLog.Error().Err(terr).Msg("Failed to enter corrupted phase")
		}
	}
	return outcome, nil
}

func (g *Game) reject(req move.Request, meta events.EventMetadata, cause *move.Error) move.Outcome {
	g.logger.Debug().
		Int("move", meta.Move).
		Str("code", string(cause.Code)).
		Msg("Move rejected before execution")
	g.eventBus.Publish(events.NewMoveRejectedEvent(g.id, meta, failureOf(req, cause)))
	return move.ValidationFailed(cause)
}

// commit must be called with g.mu held
func (g *Game) commit(res move.Result, meta events.EventMetadata) {
	g.moves++
	mover := g.toMove
	if p, ok := g.board.Piece(res.Actor); ok {
		mover = p.Team
	}
	g.toMove = mover.Opponent()
	g.refreshPieceCounts()

	executed := events.NewMoveExecutedEvent(g.id, meta, res.Variant.String(), res.Actor, res.Enemy, res.From, res.To)
	executed.Rank = res.Rank
	executed.Promoted = res.Promoted
	g.eventBus.Publish(executed)

	if res.Variant != move.Attack {
		return
	}
	if t, ok := g.board.Team(mover.Opponent()); ok && len(t.Roster()) == 0 {
		if err := g.end(mover, fmt.Sprintf("%s has no pieces left", mover.Opponent())); err != nil {
			g.logger.Error().Err(err).Msg("Failed to end game")
		}
	}
}

func failureOf(req move.Request, cause *move.Error) events.MoveFailure {
	f := events.MoveFailure{
		Variant: req.Variant.String(),
		Actor:   req.Actor,
	}
	if cause == nil {
		return f
	}
	f.Kind = cause.Kind.String()
	f.Code = string(cause.Code)
	f.Reason = cause.Error()
	if cause.Step != move.StepNone {
		f.Step = cause.Step.String()
	}
	return f
}
