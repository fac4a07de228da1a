package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
)

// RecommenderService produces top-K next-book recommendations from the
// user's short-term session.
type RecommenderService interface {
	Recommend(ctx context.Context, userKey string, topK int) ([]string, error)
}

type recommenderService struct {
	log           *logger.Logger
	bookRepo      repos.BookRepo
	sessions      SessionService
	candidates    CandidateService
	registry      *ModelRegistry
	maxSeqLen     int
	candidatePool int
	defaultTopK   int
}

func NewRecommenderService(
	baseLog *logger.Logger,
	bookRepo repos.BookRepo,
	sessions SessionService,
	candidates CandidateService,
	registry *ModelRegistry,
	maxSeqLen, candidatePool, defaultTopK int,
) RecommenderService {
	if maxSeqLen <= 0 {
		maxSeqLen = 50
	}
	if candidatePool <= 0 {
		candidatePool = 200
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &recommenderService{
		log:           baseLog.With("service", "RecommenderService"),
		bookRepo:      bookRepo,
		sessions:      sessions,
		candidates:    candidates,
		registry:      registry,
		maxSeqLen:     maxSeqLen,
		candidatePool: candidatePool,
		defaultTopK:   defaultTopK,
	}
}

func (s *recommenderService) Recommend(ctx context.Context, userKey string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	snap, err := s.registry.Current()
	if err != nil {
		return nil, err
	}

	seq := s.sessions.Read(userKey)
	if len(seq) == 0 {
		// No session yet: serve a catalog sample instead of nothing.
		books, err := s.candidates.Generate(ctx, nil, topK)
		if err != nil {
			return nil, fmt.Errorf("cold start sample: %w", err)
		}
		isbns := make([]string, 0, len(books))
		for _, b := range books {
			isbns = append(isbns, b.ISBN)
		}
		return isbns, nil
	}

	seqIdx := snap.Mapping.MapSequence(seq)
	if len(seqIdx) == 0 {
		// Every session item is unknown to the current mapping; the model
		// cannot be asked anything meaningful.
		return []string{}, nil
	}
	if len(seqIdx) > s.maxSeqLen {
		seqIdx = seqIdx[len(seqIdx)-s.maxSeqLen:]
	}

	anchors, err := s.bookRepo.GetByISBNs(ctx, nil, dedupeStrings(seq))
	if err != nil {
		return nil, fmt.Errorf("load anchor books: %w", err)
	}

	candBooks, err := s.candidates.Generate(ctx, anchors, s.candidatePool)
	if err != nil {
		return nil, fmt.Errorf("generate candidates: %w", err)
	}

	candIdx := make([]int64, 0, len(candBooks))
	candISBN := make([]string, 0, len(candBooks))
	for _, b := range candBooks {
		if idx, ok := snap.Mapping.ItemIndex(b.ISBN); ok {
			candIdx = append(candIdx, idx)
			candISBN = append(candISBN, b.ISBN)
		}
	}

	if len(candIdx) > 0 {
		scores := snap.Model.Forward([][]int64{seqIdx}, [][]int64{candIdx})[0]
		order := sortedOrder(scores)
		if len(order) > topK {
			order = order[:topK]
		}
		out := make([]string, 0, len(order))
		for _, i := range order {
			out = append(out, candISBN[i])
		}
		return out, nil
	}

	// Candidate generation came up empty; score the whole catalog,
	// skipping the padding row.
	scores := snap.Model.Forward([][]int64{seqIdx}, nil)[0]
	type scored struct {
		idx   int64
		score float32
	}
	ranked := make([]scored, 0, len(scores)-1)
	for i := 1; i < len(scores); i++ {
		ranked = append(ranked, scored{idx: int64(i), score: scores[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	out := make([]string, 0, topK)
	for _, r := range ranked {
		isbn, ok := snap.Mapping.ItemKey(r.idx)
		if !ok {
			continue
		}
		out = append(out, isbn)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// sortedOrder returns candidate positions ordered by score descending,
// stable so equal scores keep their candidate-pool order.
func sortedOrder(scores []float32) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	return order
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
