package handlers

import (
	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

func SetupOrderRoutes(api fiber.Router, orderService *services.OrderService, requireUser fiber.Handler) {
	orders := api.Group("/orders", requireUser)

	orders.Get("/available", func(c *fiber.Ctx) error {
		listing, err := orderService.ListAvailable(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(listing)
	})

	orders.Post("/accept/:id", func(c *fiber.Ctx) error {
		result, err := orderService.Accept(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"cashback":       result.Cashback,
			"new_balance":    result.NewBalance,
			"daily_earnings": result.DailyEarnings,
			"message":        "Order accepted",
		})
	})

	orders.Post("/reject/:id", func(c *fiber.Ctx) error {
		result, err := orderService.Reject(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"wait_time": result.WaitSeconds,
			"message":   "Order rejected, new orders will be available shortly",
		})
	})
}
