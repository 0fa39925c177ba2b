// handlers/leaderboard.go
package handlers

import (
	"strconv"

	"match-stake-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		players, err := leaderboardService.Leaderboard(limit)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(players)
	})

	app.Get("/players/:address", func(c *fiber.Ctx) error {
		player, err := leaderboardService.PlayerStats(c.Params("address"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(player)
	})

	app.Get("/events/recent", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		events, err := leaderboardService.RecentEvents(limit)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(events)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		report, err := leaderboardService.Health()
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(report)
	})
}
