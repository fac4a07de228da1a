package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/types"
)

type UserRepo interface {
	GetByKey(ctx context.Context, tx *gorm.DB, userKey string) (*types.User, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, bool, error)
	ListKeys(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return ur.db
}

func (ur *userRepo) GetByKey(ctx context.Context, tx *gorm.DB, userKey string) (*types.User, error) {
	var user types.User
	err := ur.conn(tx).WithContext(ctx).Where("user_key = ?", userKey).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, bool, error) {
	res := ur.conn(tx).WithContext(ctx).
		Where(types.User{UserKey: user.UserKey}).
		Attrs(user).
		FirstOrCreate(user)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return user, res.RowsAffected > 0, nil
}

func (ur *userRepo) ListKeys(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var keys []string
	if err := ur.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Order("id ASC").
		Pluck("user_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}
