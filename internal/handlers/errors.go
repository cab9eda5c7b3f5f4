package handlers

import (
	"errors"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"socialapp/internal/apperr"
	"socialapp/internal/logger"
)

// ErrorHandler renders errors returned by handlers as JSON. Typed errors
// keep their status, anything else is logged and reported as a 500.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperr.As(err); ok {
			status := e.Status()
			if status >= fiber.StatusInternalServerError {
				log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
				return c.Status(status).JSON(fiber.Map{"message": "Internal server error"})
			}
			if e.Kind == apperr.KindLocked && e.RetryAfter > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(e.RetryAfter.Seconds()))))
			}
			body := fiber.Map{"message": e.Error()}
			if len(e.Fields) > 0 {
				body["errors"] = e.Fields
			}
			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
		}

		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

// badBody reports an unparsable request body.
func badBody(err error) error {
	return apperr.ValidationFields("Invalid request body", map[string]string{"body": err.Error()})
}

// currentUserID returns the user id stored by the auth middleware.
func currentUserID(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals("user_id").(string)
	if !ok || id == "" {
		return "", apperr.Unauthorized("authentication credentials were not provided")
	}
	return id, nil
}
