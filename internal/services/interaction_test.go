package services

import (
	"context"
	"testing"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

func newInteractionFixture(t *testing.T) (InteractionService, SessionService, repos.UserRepo, repos.BookRepo, repos.RatingRepo) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.Nop()
	userRepo := repos.NewUserRepo(gdb, log)
	bookRepo := repos.NewBookRepo(gdb, log)
	ratingRepo := repos.NewRatingRepo(gdb, log)
	sessions := NewSessionService(10)
	svc := NewInteractionService(gdb, log, userRepo, bookRepo, ratingRepo, sessions, 3.0)
	return svc, sessions, userRepo, bookRepo, ratingRepo
}

func lookupRating(t *testing.T, userRepo repos.UserRepo, bookRepo repos.BookRepo, ratingRepo repos.RatingRepo, userKey, isbn string) *types.Rating {
	t.Helper()
	ctx := context.Background()
	user, err := userRepo.GetByKey(ctx, nil, userKey)
	if err != nil || user == nil {
		t.Fatalf("lookup user %s: %v", userKey, err)
	}
	book, err := bookRepo.GetByISBN(ctx, nil, isbn)
	if err != nil || book == nil {
		t.Fatalf("lookup book %s: %v", isbn, err)
	}
	rating, err := ratingRepo.GetByUserAndBook(ctx, nil, user.ID, book.ID)
	if err != nil {
		t.Fatalf("lookup rating: %v", err)
	}
	return rating
}

func TestRecordImplicitInsertsNeutralRating(t *testing.T) {
	svc, sessions, userRepo, bookRepo, ratingRepo := newInteractionFixture(t)
	ctx := context.Background()

	outcome, err := svc.Record(ctx, "u1", "isbn-1", nil, true)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if outcome.Skipped {
		t.Fatal("first implicit interaction must not be skipped")
	}

	rating := lookupRating(t, userRepo, bookRepo, ratingRepo, "u1", "isbn-1")
	if rating == nil {
		t.Fatal("no rating stored")
	}
	if rating.Value != 3.0 || !rating.Implicit {
		t.Fatalf("got value %v implicit %v, want 3.0 true", rating.Value, rating.Implicit)
	}

	if sess := sessions.Read("u1"); len(sess) != 1 || sess[0] != "isbn-1" {
		t.Fatalf("session %v, want [isbn-1]", sess)
	}
}

func TestRecordImplicitSkipsExistingRating(t *testing.T) {
	svc, sessions, userRepo, bookRepo, ratingRepo := newInteractionFixture(t)
	ctx := context.Background()

	value := 8.0
	if _, err := svc.Record(ctx, "u1", "isbn-1", &value, false); err != nil {
		t.Fatalf("explicit Record: %v", err)
	}

	outcome, err := svc.Record(ctx, "u1", "isbn-1", nil, true)
	if err != nil {
		t.Fatalf("implicit Record: %v", err)
	}
	if !outcome.Skipped {
		t.Fatal("implicit interaction over an existing rating must report skipped")
	}

	rating := lookupRating(t, userRepo, bookRepo, ratingRepo, "u1", "isbn-1")
	if rating.Value != 8.0 || rating.Implicit {
		t.Fatalf("stored rating changed: value %v implicit %v", rating.Value, rating.Implicit)
	}

	// The skipped path still feeds the session.
	if sess := sessions.Read("u1"); len(sess) != 2 {
		t.Fatalf("session %v, want two entries", sess)
	}
}

func TestRecordExplicitOverwritesImplicit(t *testing.T) {
	svc, _, userRepo, bookRepo, ratingRepo := newInteractionFixture(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "u1", "isbn-1", nil, true); err != nil {
		t.Fatalf("implicit Record: %v", err)
	}
	value := 9.0
	if _, err := svc.Record(ctx, "u1", "isbn-1", &value, false); err != nil {
		t.Fatalf("explicit Record: %v", err)
	}

	rating := lookupRating(t, userRepo, bookRepo, ratingRepo, "u1", "isbn-1")
	if rating.Value != 9.0 || rating.Implicit {
		t.Fatalf("got value %v implicit %v, want 9.0 false", rating.Value, rating.Implicit)
	}
}

func TestRecordExplicitRequiresValue(t *testing.T) {
	svc, _, _, _, _ := newInteractionFixture(t)
	if _, err := svc.Record(context.Background(), "u1", "isbn-1", nil, false); err == nil {
		t.Fatal("expected error for explicit interaction without a value")
	}
}

func TestRecordValidatesInputs(t *testing.T) {
	svc, _, _, _, _ := newInteractionFixture(t)
	if _, err := svc.Record(context.Background(), "", "isbn-1", nil, true); err == nil {
		t.Fatal("expected error for empty user key")
	}
	if _, err := svc.Record(context.Background(), "u1", "", nil, true); err == nil {
		t.Fatal("expected error for empty isbn")
	}
}

func TestRecordCreatesUserAndBookRows(t *testing.T) {
	svc, _, userRepo, bookRepo, _ := newInteractionFixture(t)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "fresh-user", "fresh-isbn", nil, true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	user, err := userRepo.GetByKey(ctx, nil, "fresh-user")
	if err != nil || user == nil {
		t.Fatalf("user row not created: %v", err)
	}
	book, err := bookRepo.GetByISBN(ctx, nil, "fresh-isbn")
	if err != nil || book == nil {
		t.Fatalf("book row not created: %v", err)
	}
}

func TestEnsureUserResetsSessionOnlyOnCreate(t *testing.T) {
	svc, sessions, _, _, _ := newInteractionFixture(t)
	ctx := context.Background()

	if err := svc.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	sessions.Append("u1", "isbn-1")

	// The user already exists, so the session survives.
	if err := svc.EnsureUser(ctx, "u1"); err != nil {
		t.Fatalf("second EnsureUser: %v", err)
	}
	if sess := sessions.Read("u1"); len(sess) != 1 {
		t.Fatalf("session %v, want one entry", sess)
	}
}
