package middleware

import (
	"crypto/subtle"
	"strings"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ServiceTokenMiddleware guards internal endpoints (metrics scraping) with a
// shared bearer token. An empty expected token disables the check.
func ServiceTokenMiddleware(expectedToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if expectedToken == "" {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Warnf("🚫 Invalid service token for %s", c.Path())
			return WriteError(c, services.ErrUnauthorized.WithMessage("invalid service token"))
		}
		return c.Next()
	}
}
