package http

import (
	"gobblet/internal/core"
	"gobblet/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

const realm = "gobblet"

// BasicAuth checks every request's credentials with the service and
// stores the player name in Locals("username").
func BasicAuth(svc *service.Service) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm: realm,
		Authorizer: func(name, secret string) bool {
			return svc.Authenticate(name, secret) == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="`+realm+`"`)
			return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
				Error:   "unauthorized",
				Code:    core.CodeUnauthorized,
				Message: "invalid player name or secret",
			})
		},
	})
}

func playerName(c *fiber.Ctx) string {
	name, _ := c.Locals("username").(string)
	return name
}
