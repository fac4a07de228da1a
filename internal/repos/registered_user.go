package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/types"
)

type RegisteredUserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *types.RegisteredUser) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RegisteredUser, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.RegisteredUser, error)
	UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type registeredUserRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegisteredUserRepo(db *gorm.DB, baseLog *logger.Logger) RegisteredUserRepo {
	return &registeredUserRepo{db: db, log: baseLog.With("repo", "RegisteredUserRepo")}
}

func (rr *registeredUserRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rr.db
}

func (rr *registeredUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.RegisteredUser) error {
	return rr.conn(tx).WithContext(ctx).Create(user).Error
}

func (rr *registeredUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RegisteredUser, error) {
	var user types.RegisteredUser
	err := rr.conn(tx).WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (rr *registeredUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.RegisteredUser, error) {
	var user types.RegisteredUser
	err := rr.conn(tx).WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (rr *registeredUserRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	if err := rr.conn(tx).WithContext(ctx).
		Model(&types.RegisteredUser{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (rr *registeredUserRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := rr.conn(tx).WithContext(ctx).
		Model(&types.RegisteredUser{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
