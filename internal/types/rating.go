package types

import "time"

// Rating holds at most one row per (user, book) pair. Implicit marks
// ratings inferred from views rather than given by the user.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_book;column:user_id" json:"user_id"`
	BookID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_book;column:book_id" json:"book_id"`
	Value     float64   `gorm:"not null;column:rating" json:"rating"`
	Implicit  bool      `gorm:"not null;default:false;column:implicit" json:"implicit"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Rating) TableName() string {
	return "rating"
}
