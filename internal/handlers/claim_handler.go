package handlers

import (
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ClaimHandler handles HTTP requests for ownership claims.
type ClaimHandler struct {
	service *services.ClaimService
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(service *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// RegisterRoutes registers the claim routes behind requireAuth.
func (h *ClaimHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	claimRoutes := router.Group("/claims", requireAuth)
	claimRoutes.Post("/", middleware.WithActor(h.HandleCreateClaim))
	claimRoutes.Get("/my", middleware.WithActor(h.HandleGetMyClaims))
	claimRoutes.Get("/:id", middleware.WithActor(h.HandleGetClaim))
}

func (h *ClaimHandler) HandleCreateClaim(c *fiber.Ctx, actor models.Actor) error {
	var req services.CreateClaimInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	claim, err := h.service.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return created(c, claim, "Claim submitted")
}

func (h *ClaimHandler) HandleGetMyClaims(c *fiber.Ctx, actor models.Actor) error {
	claims, err := h.service.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, claims)
}

func (h *ClaimHandler) HandleGetClaim(c *fiber.Ctx, actor models.Actor) error {
	claim, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, claim)
}
