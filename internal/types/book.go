package types

import "time"

type Book struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ISBN              string    `gorm:"uniqueIndex;not null;column:isbn" json:"book_isbn"`
	Title             string    `gorm:"not null;column:title" json:"book_title"`
	Author            string    `gorm:"column:author" json:"book_author"`
	YearOfPublication *int      `gorm:"column:year_of_publication" json:"year_of_publication,omitempty"`
	Publisher         string    `gorm:"column:publisher" json:"publisher"`
	ImageURLS         string    `gorm:"column:image_url_s" json:"image_url_s"`
	ImageURLM         string    `gorm:"column:image_url_m" json:"image_url_m"`
	ImageURLL         string    `gorm:"column:image_url_l" json:"image_url_l"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (Book) TableName() string {
	return "book"
}

// CoverURL returns the best available cover image, preferring larger sizes.
func (b *Book) CoverURL() string {
	switch {
	case b.ImageURLL != "":
		return b.ImageURLL
	case b.ImageURLM != "":
		return b.ImageURLM
	default:
		return b.ImageURLS
	}
}
