package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
)

// IndexMapping is an immutable snapshot of the bijections between natural
// keys and dense embedding indices. Item indices start at 1 because index
// 0 is the padding sentinel; user indices start at 0. A snapshot goes
// stale when the catalog changes and is replaced wholesale by Rebuild,
// never patched.
type IndexMapping struct {
	itemIndex map[string]int64
	indexItem map[int64]string
	userIndex map[string]int64
	indexUser map[int64]string
}

func (m *IndexMapping) ItemIndex(isbn string) (int64, bool) {
	idx, ok := m.itemIndex[isbn]
	return idx, ok
}

func (m *IndexMapping) ItemKey(idx int64) (string, bool) {
	isbn, ok := m.indexItem[idx]
	return isbn, ok
}

func (m *IndexMapping) UserIndex(userKey string) (int64, bool) {
	idx, ok := m.userIndex[userKey]
	return idx, ok
}

func (m *IndexMapping) UserKey(idx int64) (string, bool) {
	key, ok := m.indexUser[idx]
	return key, ok
}

func (m *IndexMapping) NumItems() int { return len(m.itemIndex) }
func (m *IndexMapping) NumUsers() int { return len(m.userIndex) }

// MapSequence converts item keys to dense indices, silently dropping keys
// the mapping does not know.
func (m *IndexMapping) MapSequence(isbns []string) []int64 {
	out := make([]int64, 0, len(isbns))
	for _, isbn := range isbns {
		if idx, ok := m.itemIndex[isbn]; ok {
			out = append(out, idx)
		}
	}
	return out
}

type IndexMapService interface {
	// Rebuild scans the whole catalog and atomically replaces the current
	// snapshot. Readers holding the old snapshot keep a consistent view.
	Rebuild(ctx context.Context) (*IndexMapping, error)
	Current() *IndexMapping
}

type indexMapService struct {
	log      *logger.Logger
	bookRepo repos.BookRepo
	userRepo repos.UserRepo
	current  atomic.Pointer[IndexMapping]
}

func NewIndexMapService(baseLog *logger.Logger, bookRepo repos.BookRepo, userRepo repos.UserRepo) IndexMapService {
	return &indexMapService{
		log:      baseLog.With("service", "IndexMapService"),
		bookRepo: bookRepo,
		userRepo: userRepo,
	}
}

func (s *indexMapService) Rebuild(ctx context.Context) (*IndexMapping, error) {
	var isbns, userKeys []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		isbns, err = s.bookRepo.ListISBNs(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		userKeys, err = s.userRepo.ListKeys(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mapping := &IndexMapping{
		itemIndex: make(map[string]int64, len(isbns)),
		indexItem: make(map[int64]string, len(isbns)),
		userIndex: make(map[string]int64, len(userKeys)),
		indexUser: make(map[int64]string, len(userKeys)),
	}
	for i, isbn := range isbns {
		idx := int64(i) + 1 // 0 stays the padding sentinel
		mapping.itemIndex[isbn] = idx
		mapping.indexItem[idx] = isbn
	}
	for i, key := range userKeys {
		mapping.userIndex[key] = int64(i)
		mapping.indexUser[int64(i)] = key
	}

	s.current.Store(mapping)
	s.log.Info("Rebuilt index mappings", "books", len(isbns), "users", len(userKeys))
	return mapping, nil
}

func (s *indexMapService) Current() *IndexMapping {
	return s.current.Load()
}
