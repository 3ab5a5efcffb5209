package handlers

import (
	"errors"

	"lostfound/pkg/apperror"
	"lostfound/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func ok(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data, Message: message})
}

func message(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Message: msg})
}

// parseBody decodes the JSON body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Wrap(apperror.CodeValidation, err, "Invalid request body")
	}
	return nil
}

// ErrorHandler renders errors returned by handlers and middleware as an
// Envelope. Internal errors are logged and their detail withheld.
func ErrorHandler(logg *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Envelope{Success: false, Message: fe.Message})
		}

		appErr := apperror.As(err)
		if appErr == nil {
			appErr = apperror.Internal(err, "unhandled error")
		}
		if appErr.Code() == apperror.CodeInternal && logg != nil {
			logg.Error(c.UserContext(), "request failed", err)
		}
		return c.Status(apperror.HTTPStatus(appErr.Code())).JSON(Envelope{
			Success: false,
			Message: appErr.PublicMessage(),
			Errors:  appErr.Fields(),
		})
	}
}

// NotFound answers requests that matched no route.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(Envelope{Success: false, Message: "Route not found"})
}
