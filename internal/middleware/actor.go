package middleware

import (
	"lostfound/internal/models"
	"lostfound/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

type actorKey struct{}

// CurrentActor returns the actor stored by AuthRequired.
func CurrentActor(c *fiber.Ctx) (models.Actor, bool) {
	actor, ok := c.Locals(actorKey{}).(models.Actor)
	return actor, ok
}

// WithActor adapts a handler that needs the authenticated actor. Routes
// mounted without AuthRequired answer 401.
func WithActor(fn func(c *fiber.Ctx, actor models.Actor) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return apperror.Unauthenticated("Authentication required")
		}
		return fn(c, actor)
	}
}

// RequireAdmin rejects authenticated non-admins with 403. It must run after
// AuthRequired.
func RequireAdmin() fiber.Handler {
	return WithActor(func(c *fiber.Ctx, actor models.Actor) error {
		if !actor.IsAdmin() {
			return apperror.Forbidden("Admin access required")
		}
		return c.Next()
	})
}
