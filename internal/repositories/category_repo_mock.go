package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bazaar/internal/models"
)

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
type MockCategoryRepository struct {
	categories map[uint]models.Category
	nextID     uint
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[uint]models.Category),
	}
}

// GetAll returns all categories in id order.
func (r *MockCategoryRepository) GetAll() ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categoryList := make([]models.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categoryList = append(categoryList, category)
	}
	sort.Slice(categoryList, func(i, j int) bool { return categoryList[i].ID < categoryList[j].ID })
	return categoryList, nil
}

// GetByID returns a category by its ID.
func (r *MockCategoryRepository) GetByID(id uint) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with ID %d: %w", id, ErrNotFound)
	}
	return &category, nil
}

// GetByName returns a category by name, matched case-insensitively.
func (r *MockCategoryRepository) GetByName(name string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, category := range r.categories {
		if strings.EqualFold(category.Name, name) {
			c := category
			return &c, nil
		}
	}
	return nil, fmt.Errorf("category with name %s: %w", name, ErrNotFound)
}

// Create adds a new category, assigning the next id if none is set.
func (r *MockCategoryRepository) Create(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == 0 {
		r.nextID++
		category.ID = r.nextID
	} else if category.ID > r.nextID {
		r.nextID = category.ID
	}
	category.CreatedAt = time.Now()
	r.categories[category.ID] = *category
	return nil
}

// Count returns the number of stored categories.
func (r *MockCategoryRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.categories)), nil
}
