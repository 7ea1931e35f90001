package models

import "time"

// Roles a user can hold. Admins bypass ownership checks and may manage
// categories, users and statistics.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an account in the store.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=30,alphanum"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role      string    `json:"role" gorm:"type:varchar(16);default:user" validate:"omitempty,oneof=admin user"`
	IsActive  bool      `json:"isActive" gorm:"default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// UserRef is the reduced view of a user attached to enriched responses.
type UserRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Ref returns the reduced view used for response enrichment.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Username: u.Username}
}
