package middleware

import (
	"context"
	"strings"

	"faberlic-mining/models"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

// JWTAuthMiddleware requires "Authorization: Bearer <token>" and attaches
// user_id, user_role and account to the request locals.
func JWTAuthMiddleware(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == "" || token == header {
			return WriteError(c, services.ErrUnauthorized.WithMessage("missing bearer token"))
		}

		acct, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return WriteError(c, err)
		}
		setUser(c, acct)
		return c.Next()
	}
}

func setUser(c *fiber.Ctx, acct *models.Account) {
	c.Locals("user_id", acct.ID)
	c.Locals("user_role", string(acct.Role))
	c.Locals("account", acct)
	log.WithFields(log.Fields{"user_id": acct.ID, "role": acct.Role, "path": c.Path()}).Debug("👤 request authenticated")
}

// RequireAdmin must run after JWTAuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("user_role").(string); role != string(models.RoleAdmin) {
			return WriteError(c, services.ErrForbidden)
		}
		return c.Next()
	}
}

// UserID returns the authenticated account id set by the auth middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
