package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

func TestIndexMapRebuild(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.Nop()
	bookRepo := repos.NewBookRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, _, err := bookRepo.CreateIfAbsent(ctx, nil, &types.Book{ISBN: fmt.Sprintf("isbn-%d", i)}); err != nil {
			t.Fatalf("seed book: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, _, err := userRepo.CreateIfAbsent(ctx, nil, &types.User{UserKey: fmt.Sprintf("user-%d", i)}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	svc := NewIndexMapService(log, bookRepo, userRepo)
	mapping, err := svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if mapping.NumItems() != 5 || mapping.NumUsers() != 3 {
		t.Fatalf("got %d items / %d users, want 5 / 3", mapping.NumItems(), mapping.NumUsers())
	}

	// Item indices form a bijection over 1..N, never touching the padding
	// sentinel at 0.
	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		isbn := fmt.Sprintf("isbn-%d", i)
		idx, ok := mapping.ItemIndex(isbn)
		if !ok {
			t.Fatalf("missing index for %s", isbn)
		}
		if idx < 1 || idx > 5 {
			t.Fatalf("item index %d for %s out of range 1..5", idx, isbn)
		}
		if seen[idx] {
			t.Fatalf("index %d assigned twice", idx)
		}
		seen[idx] = true
		back, ok := mapping.ItemKey(idx)
		if !ok || back != isbn {
			t.Fatalf("reverse lookup of %d gave %q, want %q", idx, back, isbn)
		}
	}
	if _, ok := mapping.ItemKey(0); ok {
		t.Fatal("index 0 must stay unassigned")
	}

	// User indices run 0..M-1.
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("user-%d", i)
		idx, ok := mapping.UserIndex(key)
		if !ok || idx < 0 || idx > 2 {
			t.Fatalf("user index %d for %s out of range 0..2", idx, key)
		}
	}

	if svc.Current() != mapping {
		t.Fatal("Current does not return the rebuilt snapshot")
	}
}

func TestIndexMapRebuildIsDeterministic(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.Nop()
	bookRepo := repos.NewBookRepo(gdb, log)
	userRepo := repos.NewUserRepo(gdb, log)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, _, err := bookRepo.CreateIfAbsent(ctx, nil, &types.Book{ISBN: fmt.Sprintf("isbn-%d", i)}); err != nil {
			t.Fatalf("seed book: %v", err)
		}
	}

	svc := NewIndexMapService(log, bookRepo, userRepo)
	first, err := svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}
	second, err := svc.Rebuild(ctx)
	if err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	for i := 0; i < 4; i++ {
		isbn := fmt.Sprintf("isbn-%d", i)
		a, _ := first.ItemIndex(isbn)
		b, _ := second.ItemIndex(isbn)
		if a != b {
			t.Fatalf("index for %s changed between rebuilds of an unchanged catalog: %d vs %d", isbn, a, b)
		}
	}
}

func TestMapSequenceDropsUnknown(t *testing.T) {
	mapping := &IndexMapping{
		itemIndex: map[string]int64{"a": 1, "b": 2},
		indexItem: map[int64]string{1: "a", 2: "b"},
	}
	got := mapping.MapSequence([]string{"a", "ghost", "b"})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}
