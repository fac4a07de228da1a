package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

type BookService interface {
	List(ctx context.Context, limit, offset int) ([]*types.Book, int64, error)
	Get(ctx context.Context, isbn string) (*types.Book, error)
	Search(ctx context.Context, query string, limit int) ([]*types.Book, error)
}

type bookService struct {
	log      *logger.Logger
	bookRepo repos.BookRepo
}

func NewBookService(baseLog *logger.Logger, bookRepo repos.BookRepo) BookService {
	return &bookService{
		log:      baseLog.With("service", "BookService"),
		bookRepo: bookRepo,
	}
}

func (s *bookService) List(ctx context.Context, limit, offset int) ([]*types.Book, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	books, err := s.bookRepo.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookRepo.Count(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (s *bookService) Get(ctx context.Context, isbn string) (*types.Book, error) {
	return s.bookRepo.GetByISBN(ctx, nil, isbn)
}

func (s *bookService) Search(ctx context.Context, query string, limit int) ([]*types.Book, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return nil, nil
	}
	return s.bookRepo.SearchAnyKeyword(ctx, nil, terms, nil, limit)
}
