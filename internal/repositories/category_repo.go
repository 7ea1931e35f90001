package repositories

import "bazaar/internal/models"

// CategoryRepository defines the interface for category data access.
// GetByName matches case-insensitively.
type CategoryRepository interface {
	GetAll() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	Create(category *models.Category) error
	Count() (int64, error)
}
