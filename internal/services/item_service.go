package services

import (
	"fmt"
	"log"

	"bazaar/internal/models"
	"bazaar/internal/query"
	"bazaar/internal/repositories"
	"bazaar/pkg/events"
)

// ItemService handles business logic related to items: CRUD with
// ownership checks, bulk operations with partial-success semantics, and the
// list pipeline with response enrichment.
type ItemService struct {
	itemRepo     repositories.ItemRepository
	categoryRepo repositories.CategoryRepository
	userRepo     repositories.UserRepository
	mqClient     *events.Client
}

// NewItemService creates a new ItemService.
func NewItemService(itemRepo repositories.ItemRepository, categoryRepo repositories.CategoryRepository, userRepo repositories.UserRepository, mqClient *events.Client) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
		mqClient:     mqClient,
	}
}

// canModify implements the ownership policy: the owner or an admin.
func canModify(requester *models.User, item *models.Item) bool {
	return requester.Role == models.RoleAdmin || requester.ID == item.UserID
}

// List runs the query pipeline over the full item set and enriches the
// resulting page.
func (s *ItemService) List(params query.Params) ([]models.EnrichedItem, query.Pagination, error) {
	items, err := s.itemRepo.GetAll()
	if err != nil {
		return nil, query.Pagination{}, err
	}
	page, pagination := params.Apply(items)
	return s.enrichAll(page), pagination, nil
}

// Get retrieves a single item by id, enriched.
func (s *ItemService) Get(id uint) (*models.EnrichedItem, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	enriched := s.enrich(*item)
	return &enriched, nil
}

// Create stores a new item owned by owner. A category reference, if present,
// must resolve.
func (s *ItemService) Create(item *models.Item, owner *models.User) error {
	if err := s.checkCategoryRef(item.CategoryID); err != nil {
		return err
	}
	item.UserID = owner.ID

	if err := s.itemRepo.Create(item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	if err := s.mqClient.Publish(events.ItemCreated, item); err != nil {
		log.Printf("Warning: failed to publish %s event for item %d: %v", events.ItemCreated, item.ID, err)
	}
	return nil
}

// BulkCreate stores each draft independently. A draft with a dangling
// category reference is skipped with a collected error message; the batch
// never aborts.
func (s *ItemService) BulkCreate(drafts []models.Item, owner *models.User) ([]models.Item, []string) {
	created := make([]models.Item, 0, len(drafts))
	errs := make([]string, 0)

	for i := range drafts {
		draft := drafts[i]
		if err := s.Create(&draft, owner); err != nil {
			errs = append(errs, fmt.Sprintf("item '%s': %v", draft.Name, err))
			continue
		}
		created = append(created, draft)
	}
	return created, errs
}

// Update replaces the mutable fields of an item. Only the owner or an admin
// may update; identity, ownership and creation time are preserved.
func (s *ItemService) Update(id uint, patch models.Item, requester *models.User) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(requester, item) {
		return nil, fmt.Errorf("%w: only the owner or an admin may modify item %d", ErrForbidden, id)
	}
	if err := s.checkCategoryRef(patch.CategoryID); err != nil {
		return nil, err
	}

	item.Name = patch.Name
	item.Description = patch.Description
	item.Price = patch.Price
	item.CategoryID = patch.CategoryID
	item.Tags = patch.Tags
	item.Stock = patch.Stock
	item.IsActive = patch.IsActive

	if err := s.itemRepo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if err := s.mqClient.Publish(events.ItemUpdated, item); err != nil {
		log.Printf("Warning: failed to publish %s event for item %d: %v", events.ItemUpdated, item.ID, err)
	}
	return item, nil
}

// Delete removes an item permanently. Only the owner or an admin may delete.
// The removed record is returned.
func (s *ItemService) Delete(id uint, requester *models.User) (*models.Item, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canModify(requester, item) {
		return nil, fmt.Errorf("%w: only the owner or an admin may delete item %d", ErrForbidden, id)
	}
	if err := s.itemRepo.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	if err := s.mqClient.Publish(events.ItemDeleted, item); err != nil {
		log.Printf("Warning: failed to publish %s event for item %d: %v", events.ItemDeleted, id, err)
	}
	return item, nil
}

// BulkDelete removes each id independently with the same per-id
// partial-success policy as BulkCreate.
func (s *ItemService) BulkDelete(ids []uint, requester *models.User) ([]models.Item, []string) {
	deleted := make([]models.Item, 0, len(ids))
	errs := make([]string, 0)

	for _, id := range ids {
		item, err := s.Delete(id, requester)
		if err != nil {
			errs = append(errs, fmt.Sprintf("item %d: %v", id, err))
			continue
		}
		deleted = append(deleted, *item)
	}
	return deleted, errs
}

// checkCategoryRef verifies an optional category reference resolves.
func (s *ItemService) checkCategoryRef(categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(*categoryID); err != nil {
		return fmt.Errorf("%w: category %d not found", ErrBadRequest, *categoryID)
	}
	return nil
}

// enrich attaches reduced category and owner views by lookup. Dangling
// references produce null views, never errors.
func (s *ItemService) enrich(item models.Item) models.EnrichedItem {
	enriched := models.EnrichedItem{Item: item}
	if item.CategoryID != nil {
		if category, err := s.categoryRepo.GetByID(*item.CategoryID); err == nil {
			enriched.Category = category.Ref()
		}
	}
	if owner, err := s.userRepo.GetByID(item.UserID); err == nil {
		enriched.Owner = owner.Ref()
	}
	return enriched
}

func (s *ItemService) enrichAll(items []models.Item) []models.EnrichedItem {
	enriched := make([]models.EnrichedItem, 0, len(items))
	for _, item := range items {
		enriched = append(enriched, s.enrich(item))
	}
	return enriched
}
