// handlers/ledger.go
package handlers

import (
	"match-stake-system/middleware"
	"match-stake-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLedgerRoutes(app *fiber.App, ledgerService *services.LedgerService) {
	app.Get("/balances/:address", func(c *fiber.Ctx) error {
		balance, err := ledgerService.BalanceOf(c.Params("address"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"address": c.Params("address"), "balance": balance})
	})

	// External top-up: credits the caller and lands a purchase event on the log.
	app.Post("/purchase", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := ledgerService.Purchase(middleware.Caller(c), req.Amount); err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "credited", "amount": req.Amount})
	})

	app.Post("/withdraw", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if err := ledgerService.Withdraw(middleware.Caller(c), req.Amount); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"status": "withdrawn", "amount": req.Amount})
	})
}
