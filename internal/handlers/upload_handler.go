package handlers

import (
	"lostfound/internal/services"
	"lostfound/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler accepts item images.
type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// RegisterRoutes registers POST /upload behind requireAuth.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/upload", requireAuth, h.HandleUpload)
}

// HandleUpload stores the multipart "file" field.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.Validation("No file uploaded")
	}
	stored, err := h.service.Save(c.UserContext(), fh)
	if err != nil {
		return err
	}
	return created(c, stored, "File uploaded")
}
