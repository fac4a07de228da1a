package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

func TestGenerateEmptyCatalog(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCandidateService(logger.Nop(), repos.NewBookRepo(gdb, logger.Nop()), 2000, 25)

	got, err := svc.Generate(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("Generate on empty catalog: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d books from an empty catalog", len(got))
	}
}

func TestGenerateColdStartSamplesCatalog(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.Nop()
	bookRepo := repos.NewBookRepo(gdb, log)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		if _, _, err := bookRepo.CreateIfAbsent(ctx, nil, &types.Book{ISBN: fmt.Sprintf("isbn-%d", i), Title: fmt.Sprintf("Title %d", i)}); err != nil {
			t.Fatalf("seed book: %v", err)
		}
	}

	svc := NewCandidateService(log, bookRepo, 2000, 25)
	got, err := svc.Generate(ctx, nil, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d books, want 5", len(got))
	}
	seen := make(map[string]bool)
	for _, b := range got {
		if seen[b.ISBN] {
			t.Fatalf("duplicate isbn %s in sample", b.ISBN)
		}
		seen[b.ISBN] = true
	}
}

func TestGenerateRanksKeywordMatchesFirst(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.Nop()
	bookRepo := repos.NewBookRepo(gdb, log)
	ctx := context.Background()

	seed := []*types.Book{
		{ISBN: "anchor", Title: "Dragons of Winter", Author: "A. Author"},
		{ISBN: "both", Title: "Winter Dragons Return", Author: "B. Author"},
		{ISBN: "one", Title: "Dragons at Sea", Author: "C. Author"},
		{ISBN: "none", Title: "Cooking at Home", Author: "D. Author"},
	}
	for _, b := range seed {
		if _, _, err := bookRepo.CreateIfAbsent(ctx, nil, b); err != nil {
			t.Fatalf("seed book: %v", err)
		}
	}

	svc := NewCandidateService(log, bookRepo, 2000, 25)
	anchors := []*types.Book{seed[0]}
	got, err := svc.Generate(ctx, anchors, 5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no candidates generated")
	}
	if got[0].ISBN != "both" {
		t.Fatalf("top candidate is %s, want the two-keyword title match", got[0].ISBN)
	}
}

func TestGenerateRespectsLimitAndDedupes(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.Nop()
	bookRepo := repos.NewBookRepo(gdb, log)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		if _, _, err := bookRepo.CreateIfAbsent(ctx, nil, &types.Book{
			ISBN:  fmt.Sprintf("isbn-%d", i),
			Title: fmt.Sprintf("Mystery Story %d", i),
		}); err != nil {
			t.Fatalf("seed book: %v", err)
		}
	}

	svc := NewCandidateService(log, bookRepo, 2000, 25)
	anchors := []*types.Book{{ISBN: "ext", Title: "Mystery Story Collection"}}
	got, err := svc.Generate(ctx, anchors, 10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) > 10 {
		t.Fatalf("got %d candidates, limit was 10", len(got))
	}
	seen := make(map[string]bool)
	for _, b := range got {
		if seen[b.ISBN] {
			t.Fatalf("duplicate isbn %s", b.ISBN)
		}
		seen[b.ISBN] = true
	}
}

func TestGenerateZeroLimit(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewCandidateService(logger.Nop(), repos.NewBookRepo(gdb, logger.Nop()), 2000, 25)
	got, err := svc.Generate(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d books for zero limit", len(got))
	}
}
