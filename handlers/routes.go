package handlers

import (
	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth          *services.AuthService
	VIP           *services.VIPService
	Mining        *services.MiningService
	Spin          *services.SpinService
	Orders        *services.OrderService
	Transactions  *services.TransactionService
	Notifications *services.NotificationService
	Admin         *services.AdminService
}

type RouteOptions struct {
	AuthRatePerMinute int
	MetricsToken      string
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// SetupRoutes mounts /health, /metrics and the /api surface.
func SetupRoutes(app *fiber.App, svc Services, opts RouteOptions) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if opts.Gatherer != nil {
		app.Get("/metrics",
			middleware.ServiceTokenMiddleware(opts.MetricsToken),
			adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})),
		)
	}

	api := app.Group("/api")
	requireUser := middleware.JWTAuthMiddleware(svc.Auth)
	limiter := middleware.RateLimitMiddleware(opts.AuthRatePerMinute)

	SetupAuthRoutes(api, svc.Auth, requireUser, limiter)
	SetupVIPRoutes(api, svc.VIP, requireUser)
	SetupRewardRoutes(api, svc.Mining, svc.Spin, requireUser)
	SetupOrderRoutes(api, svc.Orders, requireUser)
	SetupTransactionRoutes(api, svc.Transactions, requireUser)
	SetupNotificationRoutes(api, svc.Notifications, svc.Auth, requireUser)
	SetupAdminRoutes(api, AdminServices{
		Admin:         svc.Admin,
		VIP:           svc.VIP,
		Transactions:  svc.Transactions,
		Notifications: svc.Notifications,
	}, requireUser)
}
