package middleware

import (
	"errors"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const errorKindLocal = "error_kind"

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	case services.KindInvalidInput:
		return fiber.StatusBadRequest
	case services.KindRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// WriteError renders err as {"error", "kind"}. Anything that is not an
// AppError is logged and hidden behind a 500.
func WriteError(c *fiber.Ctx, err error) error {
	var appErr *services.AppError
	if errors.As(err, &appErr) {
		c.Locals(errorKindLocal, string(appErr.Kind))
		return c.Status(StatusFor(appErr.Kind)).JSON(fiber.Map{
			"error": appErr.Message,
			"kind":  appErr.Kind,
		})
	}

	c.Locals(errorKindLocal, "internal")
	log.WithError(err).WithFields(log.Fields{"method": c.Method(), "path": c.Path()}).Error("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"kind":  "internal",
	})
}
