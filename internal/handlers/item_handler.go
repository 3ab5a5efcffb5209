package handlers

import (
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ItemHandler handles HTTP requests for item reports.
type ItemHandler struct {
	service *services.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers the item routes behind requireAuth.
func (h *ItemHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	itemRoutes := router.Group("/items", requireAuth)
	itemRoutes.Get("/", middleware.WithActor(h.HandleListItems))
	itemRoutes.Post("/", middleware.WithActor(h.HandleCreateItem))
	itemRoutes.Get("/mine", middleware.WithActor(h.HandleListMyItems))
	itemRoutes.Get("/:id", middleware.WithActor(h.HandleGetItem))
	itemRoutes.Put("/:id", middleware.WithActor(h.HandleUpdateItem))
	itemRoutes.Delete("/:id", middleware.WithActor(h.HandleDeleteItem))
}

// HandleListItems lists public items, filtered by ?status= and ?category=.
func (h *ItemHandler) HandleListItems(c *fiber.Ctx, actor models.Actor) error {
	items, err := h.service.List(c.UserContext(), actor, services.ItemQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
	})
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *ItemHandler) HandleListMyItems(c *fiber.Ctx, actor models.Actor) error {
	items, err := h.service.ListMine(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *ItemHandler) HandleGetItem(c *fiber.Ctx, actor models.Actor) error {
	item, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *ItemHandler) HandleCreateItem(c *fiber.Ctx, actor models.Actor) error {
	var req services.CreateItemInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return created(c, item, "Item submitted for approval")
}

func (h *ItemHandler) HandleUpdateItem(c *fiber.Ctx, actor models.Actor) error {
	var req services.UpdateItemInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	item, err := h.service.Update(c.UserContext(), actor, c.Params("id"), req)
	if err != nil {
		return err
	}
	return ok(c, item)
}

func (h *ItemHandler) HandleDeleteItem(c *fiber.Ctx, actor models.Actor) error {
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return message(c, "Item deleted")
}
