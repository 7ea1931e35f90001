package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"bazaar/internal/models"
)

// MockItemRepository is an in-memory implementation of ItemRepository.
// IDs are allocated from a monotonic counter under the write lock.
type MockItemRepository struct {
	items  map[uint]models.Item
	nextID uint
	mu     sync.RWMutex
}

// NewMockItemRepository creates a new instance of MockItemRepository.
func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[uint]models.Item),
	}
}

// GetAll returns all items in id order.
func (r *MockItemRepository) GetAll() ([]models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemList := make([]models.Item, 0, len(r.items))
	for _, item := range r.items {
		itemList = append(itemList, item)
	}
	sort.Slice(itemList, func(i, j int) bool { return itemList[i].ID < itemList[j].ID })
	return itemList, nil
}

// GetByID returns an item by its ID.
func (r *MockItemRepository) GetByID(id uint) (*models.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("item with ID %d: %w", id, ErrNotFound)
	}
	return &item, nil
}

// Create adds a new item, assigning the next id if none is set.
func (r *MockItemRepository) Create(item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		r.nextID++
		item.ID = r.nextID
	} else if item.ID > r.nextID {
		r.nextID = item.ID
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.items[item.ID] = *item
	return nil
}

// Update modifies an existing item.
func (r *MockItemRepository) Update(item *models.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return fmt.Errorf("item with ID %d: %w", item.ID, ErrNotFound)
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	r.items[item.ID] = *item
	return nil
}

// Delete removes an item by its ID.
func (r *MockItemRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("item with ID %d: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

// Count returns the number of stored items.
func (r *MockItemRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}
