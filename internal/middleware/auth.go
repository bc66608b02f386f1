package middleware

import (
	authsvc "wastecert-backend/internal/application/auth"
	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	userLocal      = "user"
	requesterLocal = "requester"
)

// RequireAuth ensures a valid user is in the session and attaches the requester for handlers.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authsvc.VerifyUser(c.Locals(userLocal))
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		req, err := user.Requester()
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(requesterLocal, req)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentRequester returns the requester set by RequireAuth.
func CurrentRequester(c *fiber.Ctx) (domain.Requester, bool) {
	req, ok := c.Locals(requesterLocal).(domain.Requester)
	return req, ok
}
