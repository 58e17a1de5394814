package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/drawing-game-demo/domain/game"
	"github.com/example/drawing-game-demo/modules/game"
	"github.com/example/drawing-game-demo/modules/history"
)

// Response messages not shared with the live channel.
const (
	messageRoom         = "Game Room"
	messageRoundHistory = "Round History"
	messageHealthy      = "healthy"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	if m.live != nil {
		m.live.RegisterRoutes(app)
	}

	api := app.Group("/api/v1")
	api.Post("/rooms", m.createRoom)
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:id", m.getRoom)
	api.Post("/rooms/:id/join", m.joinRoom)
	api.Get("/rooms/:id/rounds", m.listRounds)
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// respondError maps a game error to its HTTP status.
func (m *APIModule) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch game.KindOf(err) {
	case game.KindValidation:
		status = fiber.StatusBadRequest
	case game.KindNotFound:
		status = fiber.StatusNotFound
	case game.KindConflict:
		status = fiber.StatusConflict
	default:
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return respond(c, status, game.UserMessage(err), nil)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, messageHealthy, HealthResponse{
		Status: messageHealthy,
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// createRoom handles POST /api/v1/rooms.
func (m *APIModule) createRoom(c *fiber.Ctx) error {
	room, err := m.gameAdapter.CreateRoom(c.UserContext())
	if err != nil {
		return m.respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, game.MessageRoomCreated, room)
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.gameAdapter.ListRooms(c.UserContext())
	if err != nil {
		return m.respondError(c, err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return respond(c, fiber.StatusOK, game.MessageRoomList, rooms)
}

// getRoom handles GET /api/v1/rooms/:id.
func (m *APIModule) getRoom(c *fiber.Ctx) error {
	room, err := m.gameAdapter.GetRoom(c.UserContext(), c.Params("id"))
	if err != nil {
		return m.respondError(c, err)
	}
	return respond(c, fiber.StatusOK, messageRoom, room)
}

// joinRoom handles POST /api/v1/rooms/:id/join?username=. It only checks
// that the username could join; the live channel performs the join.
func (m *APIModule) joinRoom(c *fiber.Ctx) error {
	room, err := m.gameAdapter.ValidateJoin(c.UserContext(), c.Params("id"), c.Query("username"))
	if err != nil {
		return m.respondError(c, err)
	}
	return respond(c, fiber.StatusOK, game.MessageCanJoin, room)
}

// listRounds handles GET /api/v1/rooms/:id/rounds.
func (m *APIModule) listRounds(c *fiber.Ctx) error {
	roomID := c.Params("id")
	limit := c.QueryInt("limit", history.DefaultLimit)

	rounds, total, err := m.historyAdapter.ListRounds(c.UserContext(), roomID, limit)
	if err != nil {
		return m.respondError(c, err)
	}
	if rounds == nil {
		rounds = []domain.Round{}
	}
	return respond(c, fiber.StatusOK, messageRoundHistory, RoundHistoryResponse{
		RoomID: roomID,
		Rounds: rounds,
		Total:  total,
	})
}

// customErrorHandler renders Fiber errors in the response envelope.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := game.MessageSomethingWrong

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return respond(c, code, message, nil)
}
