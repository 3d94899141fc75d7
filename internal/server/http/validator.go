package http

import (
	"strings"

	"gobblet/internal/core"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// validationMiddleware decodes and validates request bodies before they
// reach a handler. The decoded body is left in Locals("validatedBody").
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	var requestType any
	switch {
	case strings.HasSuffix(c.Path(), "/play") && method == fiber.MethodPut:
		requestType = &core.MoveRequest{}
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusNotAcceptable).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.CodeInvalidRequest,
			Message: err.Error(),
		})
	}

	if err := core.ValidateRequest(requestType); err != nil {
		return c.Status(fiber.StatusNotAcceptable).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.CodeInvalidRequest,
			Message: err.Error(),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)
	return c.Next()
}

// contentTypeValidator ensures bodies are sent as JSON.
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get(fiber.HeaderContentType)
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.CodeInvalidContent,
				Message: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
