package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/repositories"
	"bazaar/internal/services"
)

// respondError maps a service or repository error to the matching HTTP
// status and error body. Unknown errors become a generic 500 so internals
// never leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	var kind string

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status, kind = fiber.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrConflict):
		status, kind = fiber.StatusConflict, "conflict"
	case errors.Is(err, services.ErrUnauthorized):
		status, kind = fiber.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrForbidden):
		status, kind = fiber.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrBadRequest):
		status, kind = fiber.StatusBadRequest, "bad_request"
	default:
		log.Printf("Unhandled error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal",
			"message": "An unexpected error occurred",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   kind,
		"message": err.Error(),
	})
}

// respondBadBody reports an unparseable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": "Invalid request body",
		"details": []fiber.Map{{"field": "body", "message": err.Error()}},
	})
}

// respondValidation reports validator violations as a single 400 carrying
// every field-level detail.
func respondValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "validation_error",
		"message": "Validation failed",
		"details": validationDetails(err),
	})
}

// validationDetails converts validator errors into {field, message} pairs,
// collecting every violation rather than stopping at the first.
func validationDetails(err error) []fiber.Map {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []fiber.Map{{"field": "body", "message": err.Error()}}
	}

	details := make([]fiber.Map, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, fiber.Map{
			"field":   e.Field(),
			"message": fieldMessage(e),
		})
	}
	return details
}

// fieldMessage renders a human message for a single violation.
func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters or elements", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters or elements", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "alphanum":
		return fmt.Sprintf("%s may only contain letters and digits", e.Field())
	case "strongpass":
		return fmt.Sprintf("%s must contain at least one letter and one digit", e.Field())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", e.Field(), e.Tag())
	}
}

// parseID reads a positive integer route parameter. Anything else is a bad
// request, distinct from not found.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", services.ErrBadRequest, name)
	}
	return uint(id), nil
}
