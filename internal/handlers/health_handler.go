package handlers

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves the API index and the liveness endpoint.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// RegisterRoutes registers the index on the app root and health under the
// API group.
func (h *HealthHandler) RegisterRoutes(app *fiber.App, api fiber.Router) {
	app.Get("/", h.HandleIndex)
	api.Get("/health", h.HandleHealth)
}

// HandleIndex returns a map of the API surface.
func (h *HealthHandler) HandleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name": "bazaar",
		"endpoints": fiber.Map{
			"auth":       []string{"POST /api/auth/register", "POST /api/auth/login", "GET /api/auth/me"},
			"items":      []string{"GET /api/items", "GET /api/items/:id", "POST /api/items", "POST /api/items/bulk", "PUT /api/items/:id", "DELETE /api/items/:id", "DELETE /api/items/bulk"},
			"categories": []string{"GET /api/categories", "POST /api/categories"},
			"admin":      []string{"GET /api/users", "PUT /api/users/:id/status", "GET /api/stats"},
			"health":     []string{"GET /api/health"},
		},
	})
}

// HandleHealth reports liveness with an uptime and memory snapshot.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"uptime": time.Since(h.startedAt).String(),
		"memory": fiber.Map{
			"allocBytes": mem.Alloc,
			"sysBytes":   mem.Sys,
			"numGC":      mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	})
}
