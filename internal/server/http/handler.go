package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gobblet/internal/core"
	"gobblet/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler serves the game protocol on top of the service.
type HTTPHandler struct {
	svc *service.Service
}

func NewHTTPHandler(svc *service.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func NewFiberApp(svc *service.Service, devMode bool) *fiber.App {
	h := NewHTTPHandler(svc)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health needs neither auth nor rate limiting
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Get("/health", h.Health)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.CodeRateLimit,
				Message: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(BasicAuth(svc))
	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	api.Get("/games", h.ListGames)
	api.Post("/game", h.StartGame)
	api.Get("/game/:id", h.GetGame)
	api.Put("/play", h.PlayMove)

	return app
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.CodeInternalError,
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		response.Error = fe.Message
		response.Message = fe.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.CodeGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.CodeInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.CodeRateLimit
		}
	}

	return c.Status(code).JSON(response)
}

// reject maps a service error onto the protocol. Every refusal the
// player can act on is a 406 with a message.
func reject(c *fiber.Ctx, err error) error {
	resp := core.ErrorResponse{Error: "rejected", Message: err.Error()}
	var (
		illegal *core.IllegalMoveError
		invalid *core.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		resp.Code = core.CodeGameNotFound
	case errors.Is(err, service.ErrGameOver):
		resp.Code = core.CodeGameOver
	case errors.Is(err, service.ErrTooManyGames):
		resp.Code = core.CodeRateLimit
	case errors.As(err, &illegal):
		resp.Code = core.CodeInvalidMove
	case errors.As(err, &invalid):
		resp.Code = core.CodeInvalidRequest
	default:
		return err
	}
	return c.Status(fiber.StatusNotAcceptable).JSON(resp)
}

// Health reports liveness and storage status.
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(core.HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Unix(),
		Storage: h.svc.GetStorageHealth(),
	})
}

func (h *HTTPHandler) ListGames(c *fiber.Ctx) error {
	games, err := h.svc.ListGames(playerName(c))
	if err != nil {
		return err
	}
	if games == nil {
		games = []core.GameSummary{}
	}
	return c.JSON(core.GameListResponse{Games: games})
}

func (h *HTTPHandler) StartGame(c *fiber.Ctx) error {
	resp, err := h.svc.StartGame(playerName(c))
	if err != nil {
		return reject(c, err)
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("id")
	if !isValidUUID(gameID) {
		return reject(c, fmt.Errorf("%w: %q", service.ErrGameNotFound, gameID))
	}
	resp, err := h.svc.GetGame(playerName(c), gameID)
	if err != nil {
		return reject(c, err)
	}
	return c.JSON(resp)
}

// PlayMove applies the player's move and returns the position after the
// server's reply, or the declared winner.
func (h *HTTPHandler) PlayMove(c *fiber.Ctx) error {
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation bypass detected",
			Code:  core.CodeInternalError,
		})
	}
	req, ok := c.Locals("validatedBody").(*core.MoveRequest)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
			Error: "validation data missing",
			Code:  core.CodeInternalError,
		})
	}

	if !isValidUUID(req.ID) {
		return reject(c, fmt.Errorf("%w: %q", service.ErrGameNotFound, req.ID))
	}
	resp, err := h.svc.Play(playerName(c), *req)
	if err != nil {
		return reject(c, err)
	}
	return c.JSON(resp)
}
