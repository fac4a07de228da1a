package repos

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/types"
)

type BookRepo interface {
	GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.Book, error)
	GetByISBNs(ctx context.Context, tx *gorm.DB, isbns []string) ([]*types.Book, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, bool, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Book, error)
	ListISBNs(ctx context.Context, tx *gorm.DB) ([]string, error)
	SearchAnyKeyword(ctx context.Context, tx *gorm.DB, keywords []string, excludeISBNs []string, limit int) ([]*types.Book, error)
	RandomSample(ctx context.Context, tx *gorm.DB, n int) ([]*types.Book, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return &bookRepo{db: db, log: baseLog.With("repo", "BookRepo")}
}

func (br *bookRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return br.db
}

func (br *bookRepo) GetByISBN(ctx context.Context, tx *gorm.DB, isbn string) (*types.Book, error) {
	var book types.Book
	err := br.conn(tx).WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (br *bookRepo) GetByISBNs(ctx context.Context, tx *gorm.DB, isbns []string) ([]*types.Book, error) {
	var results []*types.Book
	if len(isbns) == 0 {
		return results, nil
	}
	if err := br.conn(tx).WithContext(ctx).
		Where("isbn IN ?", isbns).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, book *types.Book) (*types.Book, bool, error) {
	res := br.conn(tx).WithContext(ctx).
		Where(types.Book{ISBN: book.ISBN}).
		Attrs(book).
		FirstOrCreate(book)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return book, res.RowsAffected > 0, nil
}

func (br *bookRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Book, error) {
	var results []*types.Book
	q := br.conn(tx).WithContext(ctx).Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListISBNs returns every ISBN in insertion order. The index mapping is
// rebuilt from this scan, so the order must be deterministic between two
// rebuilds over an unchanged catalog.
func (br *bookRepo) ListISBNs(ctx context.Context, tx *gorm.DB) ([]string, error) {
	var isbns []string
	if err := br.conn(tx).WithContext(ctx).
		Model(&types.Book{}).
		Order("id ASC").
		Pluck("isbn", &isbns).Error; err != nil {
		return nil, err
	}
	return isbns, nil
}

func (br *bookRepo) SearchAnyKeyword(ctx context.Context, tx *gorm.DB, keywords []string, excludeISBNs []string, limit int) ([]*types.Book, error) {
	var results []*types.Book
	if len(keywords) == 0 {
		return results, nil
	}
	var conds []string
	var args []interface{}
	for _, kw := range keywords {
		like := "%" + strings.ToLower(kw) + "%"
		conds = append(conds, "(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(publisher) LIKE ?)")
		args = append(args, like, like, like)
	}
	q := br.conn(tx).WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...)
	if len(excludeISBNs) > 0 {
		q = q.Where("isbn NOT IN ?", excludeISBNs)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) RandomSample(ctx context.Context, tx *gorm.DB, n int) ([]*types.Book, error) {
	var results []*types.Book
	if n <= 0 {
		return results, nil
	}
	// RANDOM() is understood by both postgres and the sqlite test driver.
	if err := br.conn(tx).WithContext(ctx).
		Order("RANDOM()").
		Limit(n).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *bookRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := br.conn(tx).WithContext(ctx).
		Model(&types.Book{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
