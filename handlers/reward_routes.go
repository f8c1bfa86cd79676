package handlers

import (
	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRewardRoutes registers mining taps and the daily spin.
func SetupRewardRoutes(api fiber.Router, miningService *services.MiningService, spinService *services.SpinService, requireUser fiber.Handler) {
	api.Get("/mining/status", requireUser, func(c *fiber.Ctx) error {
		status, err := miningService.Status(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(status)
	})

	api.Post("/mining/tap", requireUser, func(c *fiber.Ctx) error {
		result, err := miningService.Tap(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"tap_count":      result.TapCount,
			"reward":         result.Reward,
			"new_balance":    result.NewBalance,
			"remaining_taps": result.Remaining,
		})
	})

	api.Post("/spin/daily", requireUser, func(c *fiber.Ctx) error {
		result, err := spinService.Spin(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":     true,
			"reward":      result.Reward,
			"new_balance": result.NewBalance,
			"total_spins": result.TotalSpins,
		})
	})
}
