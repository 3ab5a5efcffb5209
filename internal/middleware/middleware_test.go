package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lostfound/internal/middleware"
	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	tokens map[string]models.Actor
}

func (f fakeAuthenticator) ValidateToken(token string) (*services.TokenClaims, error) {
	actor, ok := f.tokens[token]
	if !ok {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	return &services.TokenClaims{UserID: actor.UserID, Role: actor.Role}, nil
}

func (f fakeAuthenticator) ResolveActor(_ context.Context, userID string) (models.Actor, error) {
	for _, actor := range f.tokens {
		if actor.UserID == userID {
			return actor, nil
		}
	}
	return models.Actor{}, apperror.Unauthenticated("Account no longer exists")
}

func newApp() *fiber.App {
	auth := fakeAuthenticator{tokens: map[string]models.Actor{
		"user-token":  {UserID: "u1", Role: models.RoleUser},
		"admin-token": {UserID: "a1", Role: models.RoleAdmin},
	}}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperror.HTTPStatus(apperror.CodeOf(err))).SendString(apperror.As(err).PublicMessage())
		},
	})
	app.Use(middleware.RequestLogger(logger.Nop()))
	requireAuth := middleware.AuthRequired(auth, logger.Nop())

	app.Get("/me", requireAuth, middleware.WithActor(func(c *fiber.Ctx, actor models.Actor) error {
		return c.SendString(actor.UserID)
	}))
	app.Get("/admin", requireAuth, middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/open", middleware.WithActor(func(c *fiber.Ctx, actor models.Actor) error {
		return errors.New("unreachable")
	}))
	return app
}

func get(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	app := newApp()

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "Token user-token"))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "Bearer "))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "Bearer forged"))
	assert.Equal(t, http.StatusOK, get(t, app, "/me", "Bearer user-token"))
	assert.Equal(t, http.StatusOK, get(t, app, "/me", "bearer user-token"))
}

func TestRequireAdmin(t *testing.T) {
	app := newApp()

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/admin", ""))
	assert.Equal(t, http.StatusForbidden, get(t, app, "/admin", "Bearer user-token"))
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", "Bearer admin-token"))
}

func TestWithActorWithoutAuth(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, get(t, newApp(), "/open", ""))
}
