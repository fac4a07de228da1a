package types

import "time"

// User is the recommendation-side user record. UserKey is the stable
// natural key; the dense embedding index is assigned at runtime by the
// index mapping and never stored here.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserKey   string    `gorm:"uniqueIndex;not null;column:user_key" json:"user_id"`
	Age       *int      `gorm:"column:age" json:"age,omitempty"`
	Location  *string   `gorm:"column:location" json:"location,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "ml_user"
}
