// Package httpapi exposes game management and move submission over HTTP.
package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/chesstx/internal/game"
	"github.com/mitchelldurbincs/chesstx/internal/game/core"
	"github.com/mitchelldurbincs/chesstx/internal/gameserver"
	"github.com/mitchelldurbincs/chesstx/internal/journal"
	"github.com/mitchelldurbincs/chesstx/internal/monitoring"
)

// IdempotencyHeader carries the client's key for a move submission
const IdempotencyHeader = "Idempotency-Key"

// ReplayHeader is set to "true" when a move response came from the cache
const ReplayHeader = "Idempotent-Replay"

// Server holds the HTTP handlers
type Server struct {
	manager *gameserver.GameManager
	journal *journal.Store
	monitor *monitoring.Monitor
	logger  zerolog.Logger
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithMonitor reports the monitor's last sample on the health route
func WithMonitor(m *monitoring.Monitor) ServerOption {
	return func(s *Server) { s.monitor = m }
}

// NewServer creates the handlers. store may be nil.
func NewServer(manager *gameserver.GameManager, store *journal.Store, logger zerolog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		manager: manager,
		journal: store,
		logger:  logger.With().Str("component", "http_api").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// App builds a fiber app with every route registered
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "chesstx",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(s.requestLogger())
	s.Register(app)
	return app
}

// Register adds the API routes to r
func (s *Server) Register(r fiber.Router) {
	api := r.Group("/api")
	api.Get("/health", s.Health)

	games := api.Group("/games")
	games.Post("/", s.CreateGame)
	games.Get("/:id", s.GetGame)
	games.Delete("/:id", s.DeleteGame)
	games.Get("/:id/board", s.GetBoard)
	games.Post("/:id/pieces", s.PlacePiece)
	games.Post("/:id/start", s.StartGame)
	games.Post("/:id/moves", s.SubmitMove)
	games.Post("/:id/resign", s.Resign)
	games.Post("/:id/recover", s.Recover)
	games.Get("/:id/journal", s.GetJournal)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		s.logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
		return err
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (s *Server) Health(c *fiber.Ctx) error {
	body := fiber.Map{
		"status": "ok",
		"games":  s.manager.GetActiveGames(),
	}
	if s.monitor != nil {
		body["metrics"] = s.monitor.GetMetrics()
	}
	return c.JSON(body)
}

func (s *Server) CreateGame(c *fiber.Ctx) error {
	var opts gameserver.CreateOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
	}

	inst, err := s.manager.CreateGame(c.UserContext(), opts)
	switch {
	case errors.Is(err, gameserver.ErrAtCapacity):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(inst.View())
}

func (s *Server) GetGame(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(inst.View())
}

func (s *Server) DeleteGame(c *fiber.Ctx) error {
	if !s.manager.RemoveGame(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, gameserver.ErrGameNotFound.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) GetBoard(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.SendString(inst.Render(false))
}

func (s *Server) PlacePiece(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	var body placeRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	side, err := core.ParseColor(body.Side)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	rank, err := core.ParseRank(body.Rank)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	id, err := inst.PlacePiece(side, rank, core.NewCoordinate(body.Row, body.Col))
	switch {
	case errors.Is(err, game.ErrNotInSetup):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"piece_id": id,
	})
}

func (s *Server) StartGame(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	if err := inst.Start(c.UserContext()); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(inst.View())
}

// SubmitMove runs one move transaction. Every outcome, including rejection
// and corruption, is a 200 with the outcome body; only a game that cannot
// take moves is an HTTP error.
func (s *Server) SubmitMove(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	var body moveRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	req, err := body.toRequest()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	outcome, cached, err := inst.SubmitMove(c.UserContext(), c.Get(IdempotencyHeader), req)
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	if cached {
		c.Set(ReplayHeader, "true")
	}
	return c.JSON(outcomeOf(outcome))
}

func (s *Server) Resign(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	var body resignRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	side, err := core.ParseColor(body.Side)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := inst.Resign(side); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(inst.View())
}

func (s *Server) Recover(c *fiber.Ctx) error {
	inst, err := s.lookup(c)
	if err != nil {
		return err
	}
	body := recoverRequest{Reason: "operator recovery"}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
		}
	}
	if err := inst.Recover(body.Reason); err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.JSON(inst.View())
}

func (s *Server) GetJournal(c *fiber.Ctx) error {
	if s.journal == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, journal.ErrNotConfigured.Error())
	}
	limit := 0
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}
	entries, err := s.journal.List(c.UserContext(), c.Params("id"), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return c.JSON(entries)
}

func (s *Server) lookup(c *fiber.Ctx) (*gameserver.GameInstance, error) {
	inst, ok := s.manager.GetGame(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, gameserver.ErrGameNotFound.Error())
	}
	return inst, nil
}
