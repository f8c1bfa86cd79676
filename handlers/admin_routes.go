package handlers

import (
	"strconv"

	"faberlic-mining/middleware"
	"faberlic-mining/models"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AdminServices struct {
	Admin         *services.AdminService
	VIP           *services.VIPService
	Transactions  *services.TransactionService
	Notifications *services.NotificationService
}

// tierRequest leaves absent fields nil so an update only touches what was sent.
type tierRequest struct {
	Level              int              `json:"level"`
	Name               *string          `json:"name"`
	DepositRequired    *decimal.Decimal `json:"deposit_required"`
	MaxDailyEarnings   *decimal.Decimal `json:"max_daily_earnings"`
	OrdersPerDay       *int             `json:"orders_per_day"`
	CommissionPerOrder *decimal.Decimal `json:"commission_per_order"`
	IsActive           *bool            `json:"is_active"`
}

func (r tierRequest) patch() services.TierPatch {
	return services.TierPatch{
		Name:               r.Name,
		DepositRequired:    r.DepositRequired,
		MaxDailyEarnings:   r.MaxDailyEarnings,
		OrdersPerDay:       r.OrdersPerDay,
		CommissionPerOrder: r.CommissionPerOrder,
		IsActive:           r.IsActive,
	}
}

func SetupAdminRoutes(api fiber.Router, svc AdminServices, requireUser fiber.Handler) {
	admin := api.Group("/admin", requireUser, middleware.RequireAdmin())

	admin.Get("/users", func(c *fiber.Ctx) error {
		users, err := svc.Admin.ListUsers(c.UserContext())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(users)
	})

	admin.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := svc.Admin.Stats(c.UserContext())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(stats)
	})

	// --- VIP tiers ---
	admin.Post("/vip-levels", func(c *fiber.Ctx) error {
		var req tierRequest
		if err := c.BodyParser(&req); err != nil {
			return middleware.WriteError(c, services.ErrInvalidInput.WithMessage("invalid tier payload"))
		}
		tier, err := svc.VIP.CreateTier(c.UserContext(), req.Level, req.patch())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tier)
	})

	admin.Put("/vip-levels/:level", func(c *fiber.Ctx) error {
		level, err := strconv.Atoi(c.Params("level"))
		if err != nil {
			return middleware.WriteError(c, services.ErrInvalidInput.WithMessage("level must be an integer"))
		}
		var req tierRequest
		if err := c.BodyParser(&req); err != nil {
			return middleware.WriteError(c, services.ErrInvalidInput.WithMessage("invalid tier payload"))
		}
		tier, err := svc.VIP.UpdateTier(c.UserContext(), level, req.patch())
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(tier)
	})

	// --- Deposits / withdrawals ---
	listPending := func(kind models.TransactionKind) fiber.Handler {
		return func(c *fiber.Ctx) error {
			entries, err := svc.Transactions.ListPending(c.UserContext(), kind)
			if err != nil {
				return middleware.WriteError(c, err)
			}
			return c.JSON(entries)
		}
	}
	settled := func(c *fiber.Ctx, entry *models.Transaction, err error) error {
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "transaction": entry})
	}
	note := func(c *fiber.Ctx) (string, error) {
		in, err := readInput(c)
		if err != nil {
			return "", err
		}
		return in.String("note"), nil
	}

	admin.Get("/withdrawals", listPending(models.TransactionWithdraw))
	admin.Get("/deposits", listPending(models.TransactionDeposit))

	admin.Post("/withdrawals/:id/approve", func(c *fiber.Ctx) error {
		entry, err := svc.Transactions.ApproveWithdrawal(c.UserContext(), c.Params("id"))
		return settled(c, entry, err)
	})

	admin.Post("/withdrawals/:id/reject", func(c *fiber.Ctx) error {
		n, err := note(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		entry, err := svc.Transactions.RejectWithdrawal(c.UserContext(), c.Params("id"), n)
		return settled(c, entry, err)
	})

	admin.Post("/deposits/:id/approve", func(c *fiber.Ctx) error {
		entry, err := svc.Transactions.ApproveDeposit(c.UserContext(), c.Params("id"))
		return settled(c, entry, err)
	})

	admin.Post("/deposits/:id/reject", func(c *fiber.Ctx) error {
		n, err := note(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		entry, err := svc.Transactions.RejectDeposit(c.UserContext(), c.Params("id"), n)
		return settled(c, entry, err)
	})

	// --- Notifications ---
	admin.Post("/notifications", func(c *fiber.Ctx) error {
		in, err := readInput(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		n, err := svc.Notifications.Create(c.UserContext(), in.String("title"), in.String("message"))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(n)
	})
}
