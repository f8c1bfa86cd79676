package middleware

import (
	"time"

	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records latency per route and failures per error kind.
func MetricsMiddleware(metrics *services.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		metrics.ObserveRequest(c.Method(), route, status, time.Since(start))
		if kind, ok := c.Locals(errorKindLocal).(string); ok {
			metrics.ObserveFailure(kind)
		}
		return err
	}
}
