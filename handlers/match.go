// handlers/match.go
package handlers

import (
	"match-stake-system/middleware"
	"match-stake-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	// 🔓 Read-only match state
	app.Get("/matches/:id", func(c *fiber.Ctx) error {
		match, err := matchService.GetMatch(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(match)
	})

	app.Get("/matches/:id/can-refund", func(c *fiber.Ctx) error {
		ok, err := matchService.CanRefund(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"can_refund": ok})
	})

	// 🔐 Mutating operations require a forwarded caller address
	app.Post("/matches", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		var req struct {
			ID      string `json:"id"`
			Player1 string `json:"player1"`
			Player2 string `json:"player2"`
			Stake   int64  `json:"stake"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}
		match, err := matchService.CreateMatch(req.ID, req.Player1, req.Player2, req.Stake, middleware.Caller(c))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(match)
	})

	app.Post("/matches/:id/stake", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		match, err := matchService.StakePlayer(c.Params("id"), middleware.Caller(c))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(match)
	})

	app.Post("/matches/:id/result", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		var req struct {
			Winner string `json:"winner"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		match, err := matchService.CommitResult(c.Params("id"), req.Winner, middleware.Caller(c))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(match)
	})

	app.Post("/matches/:id/refund", middleware.RequireCaller(), func(c *fiber.Ctx) error {
		match, err := matchService.Refund(c.Params("id"), middleware.Caller(c))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(match)
	})
}
