package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

type InteractionOutcome struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Skipped bool   `json:"skipped,omitempty"`
}

// InteractionService applies the rating merge rules and feeds the session
// store. Storage writes are conditional on the rules; the session append
// happens on every successful call, including the skipped-implicit path.
type InteractionService interface {
	Record(ctx context.Context, userKey, isbn string, value *float64, implicit bool) (*InteractionOutcome, error)
	// EnsureUser creates the recommendation-side user row if needed and
	// starts it with an empty session.
	EnsureUser(ctx context.Context, userKey string) error
	// EnsureBook creates a book row if needed, keeping provided fields
	// for the first sighting only.
	EnsureBook(ctx context.Context, book *types.Book) (*types.Book, bool, error)
}

type interactionService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	bookRepo       repos.BookRepo
	ratingRepo     repos.RatingRepo
	sessions       SessionService
	implicitRating float64
}

func NewInteractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	bookRepo repos.BookRepo,
	ratingRepo repos.RatingRepo,
	sessions SessionService,
	implicitRating float64,
) InteractionService {
	return &interactionService{
		db:             db,
		log:            baseLog.With("service", "InteractionService"),
		userRepo:       userRepo,
		bookRepo:       bookRepo,
		ratingRepo:     ratingRepo,
		sessions:       sessions,
		implicitRating: implicitRating,
	}
}

// Record rules:
//   - implicit with no stored rating: insert the configured neutral value
//   - implicit with any stored rating: storage untouched, reported skipped
//   - explicit: always upsert the given value
func (s *interactionService) Record(ctx context.Context, userKey, isbn string, value *float64, implicit bool) (*InteractionOutcome, error) {
	if userKey == "" || isbn == "" {
		return nil, fmt.Errorf("user_id and book_isbn are required")
	}
	if !implicit && value == nil {
		return nil, fmt.Errorf("explicit interaction requires a rating value")
	}

	var outcome InteractionOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, _, err := s.userRepo.CreateIfAbsent(ctx, tx, &types.User{UserKey: userKey})
		if err != nil {
			return fmt.Errorf("ensure user %s: %w", userKey, err)
		}
		book, _, err := s.bookRepo.CreateIfAbsent(ctx, tx, &types.Book{ISBN: isbn})
		if err != nil {
			return fmt.Errorf("ensure book %s: %w", isbn, err)
		}

		existing, err := s.ratingRepo.GetByUserAndBook(ctx, tx, user.ID, book.ID)
		if err != nil {
			return err
		}

		if implicit {
			if existing != nil {
				outcome = InteractionOutcome{
					Status:  "ok",
					Message: fmt.Sprintf("skipped implicit rating, one already exists for %s", isbn),
					Skipped: true,
				}
				return nil
			}
			if err := s.ratingRepo.Upsert(ctx, tx, &types.Rating{
				UserID:   user.ID,
				BookID:   book.ID,
				Value:    s.implicitRating,
				Implicit: true,
			}); err != nil {
				return err
			}
			outcome = InteractionOutcome{
				Status:  "ok",
				Message: fmt.Sprintf("implicit rating recorded for %s", isbn),
			}
			return nil
		}

		if err := s.ratingRepo.Upsert(ctx, tx, &types.Rating{
			UserID:   user.ID,
			BookID:   book.ID,
			Value:    *value,
			Implicit: false,
		}); err != nil {
			return err
		}
		outcome = InteractionOutcome{
			Status:  "ok",
			Message: fmt.Sprintf("explicit rating %.1f recorded for %s", *value, isbn),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Session append happens regardless of which storage branch ran.
	s.sessions.Append(userKey, isbn)
	return &outcome, nil
}

func (s *interactionService) EnsureUser(ctx context.Context, userKey string) error {
	if userKey == "" {
		return fmt.Errorf("user_id is required")
	}
	_, created, err := s.userRepo.CreateIfAbsent(ctx, nil, &types.User{UserKey: userKey})
	if err != nil {
		return err
	}
	if created {
		s.sessions.Reset(userKey)
	}
	return nil
}

func (s *interactionService) EnsureBook(ctx context.Context, book *types.Book) (*types.Book, bool, error) {
	if book.ISBN == "" {
		return nil, false, fmt.Errorf("book_isbn is required")
	}
	return s.bookRepo.CreateIfAbsent(ctx, nil, book)
}
