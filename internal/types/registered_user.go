package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisteredUser is the login account. The recommendation side keys its
// own User row by the string form of this ID.
type RegisteredUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FullName  string    `gorm:"column:full_name" json:"full_name"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	IsStaff   bool      `gorm:"not null;default:false;column:is_staff" json:"is_staff"`
	CreatedAt time.Time `gorm:"not null" json:"date_joined"`
}

func (RegisteredUser) TableName() string {
	return "registered_user"
}
