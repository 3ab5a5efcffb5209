package middleware

import (
	"errors"
	"time"

	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestLogger binds a request-scoped logger to the user context and logs
// one line per request once the chain has run.
func RequestLogger(logg *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx := c.UserContext()
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
			ctx = logg.WithRequestID(ctx, id)
		}
		c.SetUserContext(ctx)

		chainErr := c.Next()

		fields := map[string]any{
			"method":     c.Method(),
			"path":       c.Path(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}
		status := c.Response().StatusCode()
		if chainErr != nil {
			// the error handler has not written the response yet
			var fe *fiber.Error
			if errors.As(chainErr, &fe) {
				status = fe.Code
			} else {
				status = apperror.HTTPStatus(apperror.CodeOf(chainErr))
			}
		}
		fields["status"] = status
		logCtx := logg.WithFields(c.UserContext(), fields)
		switch {
		case status >= fiber.StatusInternalServerError:
			logg.Error(logCtx, "request failed", chainErr)
		case chainErr != nil:
			logg.Warn(logCtx, "request rejected", chainErr)
		default:
			logg.Info(logCtx, "request completed")
		}
		return chainErr
	}
}
