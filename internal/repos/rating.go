package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/types"
)

type RatingRepo interface {
	GetByUserAndBook(ctx context.Context, tx *gorm.DB, userID, bookID uint) (*types.Rating, error)
	Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) error
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

func (rr *ratingRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rr.db
}

func (rr *ratingRepo) GetByUserAndBook(ctx context.Context, tx *gorm.DB, userID, bookID uint) (*types.Rating, error) {
	var rating types.Rating
	err := rr.conn(tx).WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Upsert keeps at most one rating per (user, book) pair.
func (rr *ratingRepo) Upsert(ctx context.Context, tx *gorm.DB, rating *types.Rating) error {
	rating.UpdatedAt = time.Now().UTC()
	return rr.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "implicit", "updated_at"}),
		}).
		Create(rating).Error
}
