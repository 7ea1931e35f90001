package models

import "time"

// Item represents a catalog entry owned by a user. CategoryID is optional;
// when set it must reference an existing category. IsActive controls default
// list visibility only, deletion is a hard removal.
type Item struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string    `json:"description" validate:"required,max=500"`
	Price       float64   `json:"price" validate:"gte=0"`
	CategoryID  *uint     `json:"categoryId"`
	UserID      uint      `json:"userId"`
	Tags        []string  `json:"tags" gorm:"serializer:json" validate:"omitempty,max=10,dive,min=1,max=30"`
	Stock       int       `json:"stock" validate:"gte=0"`
	IsActive    bool      `json:"isActive" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EnrichedItem is an item plus reduced views of its referenced category and
// owner, looked up at response time. Either view may be null if the reference
// is absent or dangling.
type EnrichedItem struct {
	Item
	Category *CategoryRef `json:"category"`
	Owner    *UserRef     `json:"owner"`
}
