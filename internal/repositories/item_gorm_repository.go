package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bazaar/internal/models"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// GetAll retrieves all items from the database in id order.
func (r *GORMItemRepository) GetAll() ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID from the database.
func (r *GORMItemRepository) GetByID(id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %d: %w", id, err)
	}
	return &item, nil
}

// Create creates a new item in the database.
func (r *GORMItemRepository) Create(item *models.Item) error {
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update updates an existing item in the database.
func (r *GORMItemRepository) Update(item *models.Item) error {
	res := r.db.Save(item) // Save updates all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %d: %w", item.ID, ErrNotFound)
	}
	return nil
}

// Delete removes an item by its ID from the database.
func (r *GORMItemRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of stored items.
func (r *GORMItemRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Item{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}
