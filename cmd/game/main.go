package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/chesstx/internal/game"
	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/game/move"
)

type scenario struct {
	name string
	run  func(ctx context.Context) error
}

var (
	color   = flag.Bool("color", true, "Render boards with ANSI colors")
	verbose = flag.Bool("v", false, "Log every transaction step")
)

func main() {
	only := flag.String("scenario", "", "Run a single scenario (capture, rollback, kings, corruption)")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	scenarios := []scenario{
		{"capture", captureDemo},
		{"rollback", rollbackDemo},
		{"kings", kingsDemo},
		{"corruption", corruptionDemo},
	}

	ctx := context.Background()
	for _, s := range scenarios {
		if *only != "" && *only != s.name {
			continue
		}
		fmt.Printf("=== %s ===\n", s.name)
		if err := s.run(ctx); err != nil {
			log.Fatal().Err(err).Str("scenario", s.name).Msg("Scenario failed")
		}
		fmt.Println()
	}
}

// newRookGame sets up white rook (0,0) against black knight (0,5) on 8x8
func newRookGame(ctx context.Context, opts ...move.ExecutorOption) (*game.Game, core.PieceID, core.PieceID, error) {
	g, err := game.NewGame(ctx, game.GameConfig{
		Rows:             8,
		Cols:             8,
		EnforceTurnOrder: true,
		Logger:           log.Logger,
		ExecutorOptions:  opts,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	rook, err := g.PlacePiece(core.White, core.Rook, core.NewCoordinate(0, 0))
	if err != nil {
		return nil, 0, 0, err
	}
	knight, err := g.PlacePiece(core.Black, core.Knight, core.NewCoordinate(0, 5))
	if err != nil {
		return nil, 0, 0, err
	}
	return g, rook, knight, g.Start(ctx)
}

func attack(actor, enemy core.PieceID) move.Request {
	return move.Request{Variant: move.Attack, Actor: actor, Enemy: enemy, To: core.NewCoordinate(0, 5)}
}

func report(g *game.Game, out move.Outcome) {
	fmt.Printf("outcome: %s\nphase: %s\n%s", out, g.Phase(), g.Render(*color))
}

func captureDemo(ctx context.Context) error {
	g, rook, knight, err := newRookGame(ctx)
	if err != nil {
		return err
	}
	fmt.Print(g.Render(*color))
	out, err := g.Submit(ctx, attack(rook, knight))
	if err != nil {
		return err
	}
	report(g, out)
	return nil
}

func rollbackDemo(ctx context.Context) error {
	failSquares := move.WithFaults(func(s move.Step, compensating bool) bool {
		return !compensating && s == move.StepSquares
	})
	g, rook, knight, err := newRookGame(ctx, failSquares)
	if err != nil {
		return err
	}
	before := g.Snapshot()
	out, err := g.Submit(ctx, attack(rook, knight))
	if err != nil {
		return err
	}
	report(g, out)
	if !reflect.DeepEqual(before, g.Snapshot()) {
		return fmt.Errorf("board differs after rollback")
	}
	fmt.Println("board restored to its pre-move state")
	return nil
}

func kingsDemo(ctx context.Context) error {
	g, err := game.NewGame(ctx, game.GameConfig{Rows: 8, Cols: 8, EnforceTurnOrder: true, Logger: log.Logger})
	if err != nil {
		return err
	}
	white, err := g.PlacePiece(core.White, core.King, core.NewCoordinate(3, 3))
	if err != nil {
		return err
	}
	black, err := g.PlacePiece(core.Black, core.King, core.NewCoordinate(3, 4))
	if err != nil {
		return err
	}
	if err := g.Start(ctx); err != nil {
		return err
	}
	out, err := g.Submit(ctx, move.Request{Variant: move.Attack, Actor: white, Enemy: black, To: core.NewCoordinate(3, 4)})
	if err != nil {
		return err
	}
	report(g, out)
	return nil
}

func corruptionDemo(ctx context.Context) error {
	faulty := true
	faults := move.WithFaults(func(s move.Step, compensating bool) bool {
		return faulty && ((!compensating && s == move.StepSquares) || (compensating && s == move.StepHostages))
	})
	g, rook, knight, err := newRookGame(ctx, faults)
	if err != nil {
		return err
	}
	out, err := g.Submit(ctx, attack(rook, knight))
	if err != nil {
		return err
	}
	report(g, out)

	faulty = false
	if err := g.Recover("demo recovery"); err != nil {
		return err
	}
	fmt.Printf("recovered, phase: %s\n", g.Phase())
	out, err = g.Submit(ctx, attack(rook, knight))
	if err != nil {
		return err
	}
	report(g, out)
	return nil
}
