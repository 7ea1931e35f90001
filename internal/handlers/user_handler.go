package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/middleware"
	"bazaar/internal/services"
)

// UserHandler handles the admin-only user management and statistics routes.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user management routes. Everything here is
// admin-gated.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth, admin fiber.Handler) {
	userRoutes := router.Group("/users", auth, admin)
	userRoutes.Get("/", h.HandleList)
	userRoutes.Put("/:id/status", h.HandleSetStatus)

	router.Get("/stats", auth, admin, h.HandleStats)
}

// HandleList retrieves all users without password hashes.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.service.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

// StatusRequest represents the request body for a status update.
type StatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// HandleSetStatus toggles an account's active flag. Self-deactivation is
// rejected as a bad request.
func (h *UserHandler) HandleSetStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	user, err := h.service.SetActive(id, *req.IsActive, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    user,
	})
}

// HandleStats returns store-wide aggregates.
func (h *UserHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
