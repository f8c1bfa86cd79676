package handlers

import (
	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router, authService *services.AuthService, requireUser, limiter fiber.Handler) {
	auth := api.Group("/auth")

	credentials := func(c *fiber.Ctx) (string, string, error) {
		in, err := readInput(c)
		if err != nil {
			return "", "", err
		}
		return in.String("login"), in.String("password"), nil
	}

	auth.Post("/register", limiter, func(c *fiber.Ctx) error {
		login, password, err := credentials(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		result, err := authService.Register(c.UserContext(), login, password)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(result)
	})

	auth.Post("/login", limiter, func(c *fiber.Ctx) error {
		login, password, err := credentials(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		result, err := authService.Login(c.UserContext(), login, password)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(result)
	})

	auth.Get("/me", requireUser, func(c *fiber.Ctx) error {
		acct, err := authService.Profile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(acct)
	})
}
