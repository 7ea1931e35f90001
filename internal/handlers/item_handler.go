package handlers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/middleware"
	"bazaar/internal/models"
	"bazaar/internal/query"
	"bazaar/internal/services"
)

// ItemHandler handles HTTP requests for items.
type ItemHandler struct {
	service  *services.ItemService
	validate *validator.Validate
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service *services.ItemService) *ItemHandler {
	return &ItemHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the item routes. Reads are public; mutations run
// behind the auth middleware. Bulk routes must precede the :id routes.
func (h *ItemHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	itemRoutes := router.Group("/items")
	itemRoutes.Get("/", h.HandleList)
	itemRoutes.Get("/:id", h.HandleGet)
	itemRoutes.Post("/bulk", auth, h.HandleBulkCreate)
	itemRoutes.Post("/", auth, h.HandleCreate)
	itemRoutes.Put("/:id", auth, h.HandleUpdate)
	itemRoutes.Delete("/bulk", auth, h.HandleBulkDelete)
	itemRoutes.Delete("/:id", auth, h.HandleDelete)
}

// ItemRequest represents the mutable fields of an item in create and update
// bodies.
type ItemRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"required,max=500"`
	Price       float64  `json:"price" validate:"gte=0"`
	CategoryID  *uint    `json:"categoryId" validate:"omitempty,gt=0"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,min=1,max=30"`
	Stock       int      `json:"stock" validate:"gte=0"`
	IsActive    *bool    `json:"isActive"`
}

// toItem builds the item record. Items are visible by default.
func (r ItemRequest) toItem() models.Item {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return models.Item{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		Tags:        r.Tags,
		Stock:       r.Stock,
		IsActive:    active,
	}
}

// HandleList runs the query pipeline and returns a page of enriched items.
func (h *ItemHandler) HandleList(c *fiber.Ctx) error {
	params := query.Parse(c.Queries())
	items, pagination, err := h.service.List(params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       items,
		"pagination": pagination,
		"filters":    params.Filters(),
		"sort":       params.Sort(),
	})
}

// HandleGet returns a single enriched item.
func (h *ItemHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// HandleCreate creates a new item owned by the authenticated user.
func (h *ItemHandler) HandleCreate(c *fiber.Ctx) error {
	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	item := req.toItem()
	if err := h.service.Create(&item, middleware.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// BulkCreateRequest carries 1 to 50 item drafts.
type BulkCreateRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,max=50"`
}

// HandleBulkCreate creates each draft independently with partial-success
// semantics: invalid drafts are reported in errors, the rest are created.
func (h *ItemHandler) HandleBulkCreate(c *fiber.Ctx) error {
	var req BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	// Field validation runs per draft so one bad draft never aborts the batch.
	drafts := make([]models.Item, 0, len(req.Items))
	errs := make([]string, 0)
	for i, draft := range req.Items {
		if err := h.validate.Struct(draft); err != nil {
			errs = append(errs, fmt.Sprintf("items[%d]: %s", i, joinedMessages(err)))
			continue
		}
		drafts = append(drafts, draft.toItem())
	}

	created, createErrs := h.service.BulkCreate(drafts, middleware.CurrentUser(c))
	errs = append(errs, createErrs...)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"created": created,
		"errors":  errs,
	})
}

// HandleUpdate replaces the mutable fields of an item.
func (h *ItemHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req ItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	item, err := h.service.Update(id, req.toItem(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// HandleDelete removes an item and returns the removed record.
func (h *ItemHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	item, err := h.service.Delete(id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// BulkDeleteRequest carries 1 to 50 item ids.
type BulkDeleteRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=50,dive,gt=0"`
}

// HandleBulkDelete removes each id independently with partial-success
// semantics.
func (h *ItemHandler) HandleBulkDelete(c *fiber.Ctx) error {
	var req BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	deleted, errs := h.service.BulkDelete(req.IDs, middleware.CurrentUser(c))
	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
		"errors":  errs,
	})
}

// joinedMessages flattens every violation of a draft into one message.
func joinedMessages(err error) string {
	details := validationDetails(err)
	messages := make([]string, 0, len(details))
	for _, d := range details {
		messages = append(messages, fmt.Sprint(d["message"]))
	}
	return strings.Join(messages, "; ")
}
