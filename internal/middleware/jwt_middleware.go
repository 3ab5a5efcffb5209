package middleware

import (
	"context"
	"strings"

	"lostfound/internal/models"
	"lostfound/internal/services"
	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// TokenAuthenticator validates bearer tokens and resolves their account.
type TokenAuthenticator interface {
	ValidateToken(tokenString string) (*services.TokenClaims, error)
	ResolveActor(ctx context.Context, userID string) (models.Actor, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// resolved actor is stored for WithActor and CurrentActor.
func AuthRequired(auth TokenAuthenticator, logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Unauthenticated("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperror.Unauthenticated("Authorization header format must be 'Bearer <token>'")
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if logg != nil {
				logg.Debug(logg.WithField(c.UserContext(), "reason", err.Error()), "jwt validation failed")
			}
			return err
		}

		actor, err := auth.ResolveActor(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}

		c.Locals(actorKey{}, actor)
		if logg != nil {
			c.SetUserContext(logg.WithUserID(c.UserContext(), actor.UserID))
		}
		return c.Next()
	}
}
