package handlers

import (
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the moderation endpoints.
type AdminHandler struct {
	items        *services.ItemService
	claims       *services.ClaimService
	verification *services.VerificationService
	leaderboard  *services.LeaderboardService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(items *services.ItemService, claims *services.ClaimService, verification *services.VerificationService, leaderboard *services.LeaderboardService) *AdminHandler {
	return &AdminHandler{
		items:        items,
		claims:       claims,
		verification: verification,
		leaderboard:  leaderboard,
	}
}

// RegisterRoutes registers the admin routes behind requireAuth and the admin
// role check.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	adminRoutes := router.Group("/admin", requireAuth, middleware.RequireAdmin())
	adminRoutes.Get("/claims/pending", middleware.WithActor(h.HandlePendingClaims))
	adminRoutes.Put("/claims/:id/verify", middleware.WithActor(h.HandleVerifyClaim))
	adminRoutes.Get("/found/pending", middleware.WithActor(h.HandlePendingItems))
	adminRoutes.Put("/found/:id/approve", middleware.WithActor(h.HandleApproveItem))
	adminRoutes.Get("/leaderboard", h.HandleLeaderboard)
}

func (h *AdminHandler) HandlePendingClaims(c *fiber.Ctx, actor models.Actor) error {
	claims, err := h.claims.ListPending(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, claims)
}

// HandleVerifyClaim takes {"action": "approve"|"reject", "reason": "..."}.
func (h *AdminHandler) HandleVerifyClaim(c *fiber.Ctx, actor models.Actor) error {
	var req services.VerifyInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	claim, err := h.verification.Verify(c.UserContext(), actor, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Data:    claim,
		Message: "Claim " + string(claim.Status),
	})
}

func (h *AdminHandler) HandlePendingItems(c *fiber.Ctx, actor models.Actor) error {
	items, err := h.items.ListPending(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *AdminHandler) HandleApproveItem(c *fiber.Ctx, actor models.Actor) error {
	item, err := h.items.Approve(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: item, Message: "Item approved"})
}

func (h *AdminHandler) HandleLeaderboard(c *fiber.Ctx) error {
	return leaderboard(c, h.leaderboard)
}
