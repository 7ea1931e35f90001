package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bazaar/internal/models"
	"bazaar/internal/services"
)

// userKey is the Locals key the resolved user is stored under.
const userKey = "user"

// AuthRequired is a Fiber middleware that gates a route behind a valid
// bearer token. It verifies the token, resolves it to an active user, and
// attaches the user to the request context. It never mutates state.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.ResolveUser(parts[1])
		if err != nil {
			log.Printf("Auth rejected: %v", err)
			status := fiber.StatusUnauthorized
			kind := "unauthorized"
			if errors.Is(err, services.ErrForbidden) {
				status = fiber.StatusForbidden
				kind = "forbidden"
			}
			return c.Status(status).JSON(fiber.Map{
				"error":   kind,
				"message": err.Error(),
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// AdminRequired gates a route behind the admin role. It must run after
// AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user attached by AuthRequired, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
