package models

import "time"

// Category is a taxonomy record items may reference. Names are unique
// case-insensitively; enforcement happens in the category service.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryRef is the reduced view of a category attached to enriched responses.
type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Ref returns the reduced view used for response enrichment.
func (c *Category) Ref() *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{ID: c.ID, Name: c.Name}
}
