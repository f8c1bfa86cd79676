package handlers

import (
	"faberlic-mining/middleware"
	"faberlic-mining/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTransactionRoutes(api fiber.Router, txService *services.TransactionService, requireUser fiber.Handler) {
	txs := api.Group("/transactions", requireUser)

	txs.Post("/deposit", func(c *fiber.Ctx) error {
		in, err := readInput(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		amount, err := in.Decimal("amount")
		if err != nil {
			return middleware.WriteError(c, err)
		}

		entry, err := txService.CreateDeposit(c.UserContext(), middleware.UserID(c), amount)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"transaction_id": entry.ID,
			"wallet_address": entry.WalletAddress,
			"amount":         entry.Amount,
			"status":         entry.Status,
			"message":        "Send the amount to the wallet address; the deposit is credited after confirmation",
		})
	})

	txs.Post("/withdraw", func(c *fiber.Ctx) error {
		in, err := readInput(c)
		if err != nil {
			return middleware.WriteError(c, err)
		}
		amount, err := in.Decimal("amount")
		if err != nil {
			return middleware.WriteError(c, err)
		}

		result, err := txService.CreateWithdrawal(c.UserContext(), middleware.UserID(c), amount, in.String("wallet_address"))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(fiber.Map{
			"success":        true,
			"transaction_id": result.Transaction.ID,
			"new_balance":    result.NewBalance,
			"status":         result.Transaction.Status,
			"message":        "Withdrawal request submitted",
		})
	})

	txs.Get("/history", func(c *fiber.Ctx) error {
		entries, err := txService.History(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return middleware.WriteError(c, err)
		}
		return c.JSON(entries)
	})
}
