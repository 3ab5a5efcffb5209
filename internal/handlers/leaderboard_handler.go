package handlers

import (
	"lostfound/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LeaderboardHandler serves the public leaderboard.
type LeaderboardHandler struct {
	service *services.LeaderboardService
}

func NewLeaderboardHandler(service *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/leaderboard", h.HandleLeaderboard)
}

// HandleLeaderboard returns the top users; ?limit= defaults to 10 and is
// capped at 100.
func (h *LeaderboardHandler) HandleLeaderboard(c *fiber.Ctx) error {
	return leaderboard(c, h.service)
}

func leaderboard(c *fiber.Ctx, service *services.LeaderboardService) error {
	entries, err := service.Top(c.UserContext(), c.QueryInt("limit", services.DefaultLeaderboardLimit))
	if err != nil {
		return err
	}
	return ok(c, entries)
}
