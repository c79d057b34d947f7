package httpapi

import (
	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/game/move"
)

type placeRequest struct {
	Side string `json:"side"`
	Rank string `json:"rank"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

type moveRequest struct {
	Variant   string          `json:"variant"`
	Actor     int             `json:"actor"`
	Enemy     *int            `json:"enemy,omitempty"`
	To        core.Coordinate `json:"to"`
	PromoteTo string          `json:"promote_to,omitempty"`
}

type resignRequest struct {
	Side string `json:"side"`
}

type recoverRequest struct {
	Reason string `json:"reason"`
}

// toRequest resolves names into an engine request. Unknown promotion ranks
// are passed on as nil so the builder reports them with its own code.
func (r moveRequest) toRequest() (move.Request, error) {
	variant, err := move.ParseVariant(r.Variant)
	if err != nil {
		return move.Request{}, err
	}
	req := move.Request{
		Variant: variant,
		Actor:   core.PieceID(r.Actor),
		Enemy:   core.NoPiece,
		To:      r.To,
	}
	if r.Enemy != nil {
		req.Enemy = core.PieceID(*r.Enemy)
	}
	if r.PromoteTo != "" {
		if rank, err := core.ParseRank(r.PromoteTo); err == nil {
			req.PromoteTo = rank
		}
	}
	return req, nil
}

type resultResponse struct {
	Variant  string          `json:"variant"`
	Actor    core.PieceID    `json:"actor"`
	Enemy    *core.PieceID   `json:"enemy,omitempty"`
	From     core.Coordinate `json:"from"`
	To       core.Coordinate `json:"to"`
	Rank     string          `json:"rank"`
	Promoted bool            `json:"promoted"`
}

type outcomeResponse struct {
	Status   string          `json:"status"`
	Kind     string          `json:"kind,omitempty"`
	Code     string          `json:"code,omitempty"`
	Step     string          `json:"step,omitempty"`
	Message  string          `json:"message,omitempty"`
	Restored bool            `json:"restored"`
	Result   *resultResponse `json:"result,omitempty"`
}

func outcomeOf(o move.Outcome) outcomeResponse {
	resp := outcomeResponse{
		Status:   o.Status().String(),
		Restored: o.Restored(),
	}
	if cause := o.Cause(); cause != nil {
		resp.Kind = cause.Kind.String()
		resp.Code = string(cause.Code)
		resp.Message = cause.Error()
		if cause.Step != move.StepNone {
			resp.Step = cause.Step.String()
		}
	}
	if res, ok := o.Result(); ok {
		rr := &resultResponse{
			Variant:  res.Variant.String(),
			Actor:    res.Actor,
			From:     res.From,
			To:       res.To,
			Rank:     res.Rank,
			Promoted: res.Promoted,
		}
		if res.Enemy != core.NoPiece {
			enemy := res.Enemy
			rr.Enemy = &enemy
		}
		resp.Result = rr
	}
	return resp
}
