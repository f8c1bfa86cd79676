package middleware

import (
	"strings"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

// SSEAuthMiddleware authenticates EventSource requests, which cannot set
// headers, from the `token` query parameter.
//
// Usage:
//
//	api.Get("/notifications/stream", middleware.SSEAuthMiddleware(authService), handler)
func SSEAuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			return WriteError(c, services.ErrUnauthorized.WithMessage("missing token in query"))
		}

		acct, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return WriteError(c, err)
		}
		setUser(c, acct)
		return c.Next()
	}
}
