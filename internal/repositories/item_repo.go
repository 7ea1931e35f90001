package repositories

import "bazaar/internal/models"

// ItemRepository defines the interface for item data access. GetAll returns
// items in id order; the query pipeline relies on that as the stable-sort
// tie-break order.
type ItemRepository interface {
	GetAll() ([]models.Item, error)
	GetByID(id uint) (*models.Item, error)
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(id uint) error
	Count() (int64, error)
}
