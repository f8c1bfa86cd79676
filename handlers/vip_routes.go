package handlers

import (
	"errors"
	"fmt"

	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

func SetupVIPRoutes(api fiber.Router, vipService *services.VIPService, requireUser fiber.Handler) {
	api.Get("/vip/levels", func(c *fiber.Ctx) error {
		tiers, err := vipService.ListTiers(c.UserContext())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(tiers)
	})

	// An insufficient deposit is an expected answer for the client, not an error.
	api.Post("/vip/upgrade", requireUser, func(c *fiber.Ctx) error {
		level, err := vipService.Upgrade(c.UserContext(), middleware.UserID(c))
		if errors.Is(err, services.ErrInsufficientDeposit) {
			return c.JSON(fiber.Map{
				"success": false,
				"message": services.ErrInsufficientDeposit.Message,
			})
		}
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"new_level": level,
			"message":   fmt.Sprintf("Upgraded to VIP %d", level),
		})
	})
}
