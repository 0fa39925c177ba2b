// handlers/respond.go
package handlers

import (
	"errors"

	"match-stake-system/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse maps the service error taxonomy onto HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidArgument):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrTimeoutNotReached),
		errors.Is(err, services.ErrDuplicate):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrInsufficientBalance):
		status = fiber.StatusPaymentRequired
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
