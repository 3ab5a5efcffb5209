package handlers

import (
	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication and profiles.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. Profile routes run
// behind requireAuth.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/profile", requireAuth, middleware.WithActor(h.HandleGetProfile))
	authRoutes.Put("/profile", requireAuth, middleware.WithActor(h.HandleUpdateProfile))
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return created(c, result, "User registered successfully")
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, result)
}

func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx, actor models.Actor) error {
	user, err := h.authService.Profile(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx, actor models.Actor) error {
	var req services.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.authService.UpdateProfile(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return ok(c, user)
}
