package services

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/repos"
	"github.com/bookwise/backend/internal/types"
)

// CandidateService narrows the catalog to a bounded pool worth scoring.
// Keyword overlap with the anchor books supplies relevance; a random
// slice of the catalog supplies novelty. Pure relevance starves discovery
// and breaks on sparse metadata, pure randomness ignores the anchors, so
// the pool is split 80/20 between the two.
type CandidateService interface {
	Generate(ctx context.Context, anchors []*types.Book, limit int) ([]*types.Book, error)
}

type candidateService struct {
	log         *logger.Logger
	bookRepo    repos.BookRepo
	scanLimit   int
	maxKeywords int
}

func NewCandidateService(baseLog *logger.Logger, bookRepo repos.BookRepo, scanLimit, maxKeywords int) CandidateService {
	if scanLimit <= 0 {
		scanLimit = 2000
	}
	if maxKeywords <= 0 {
		maxKeywords = 25
	}
	return &candidateService{
		log:         baseLog.With("service", "CandidateService"),
		bookRepo:    bookRepo,
		scanLimit:   scanLimit,
		maxKeywords: maxKeywords,
	}
}

// Words too generic to narrow a book search, all four letters or longer
// since shorter tokens are discarded before this filter.
var keywordStopwords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"were": {}, "they": {}, "them": {}, "then": {}, "than": {},
	"when": {}, "what": {}, "your": {}, "will": {}, "would": {},
	"there": {}, "their": {}, "about": {}, "which": {}, "while": {},
	"where": {}, "also": {}, "been": {}, "being": {}, "into": {},
	"over": {}, "under": {}, "some": {}, "such": {}, "only": {},
	"other": {}, "more": {}, "most": {}, "very": {}, "like": {},
	"just": {}, "book": {}, "books": {}, "edition": {}, "press": {},
	"publisher": {}, "publishers": {}, "publishing": {}, "paperback": {},
}

func (s *candidateService) Generate(ctx context.Context, anchors []*types.Book, limit int) ([]*types.Book, error) {
	if limit <= 0 {
		return nil, nil
	}

	keywords := s.extractKeywords(anchors)
	if len(anchors) == 0 || len(keywords) == 0 {
		// Cold start: nothing to anchor on, sample the catalog.
		return s.bookRepo.RandomSample(ctx, nil, limit)
	}

	exclude := make([]string, 0, len(anchors))
	for _, a := range anchors {
		exclude = append(exclude, a.ISBN)
	}

	matches, err := s.bookRepo.SearchAnyKeyword(ctx, nil, keywords, exclude, s.scanLimit)
	if err != nil {
		return nil, err
	}

	// Rank by how many keywords the title itself contains.
	scores := make(map[uint]int, len(matches))
	for _, b := range matches {
		title := strings.ToLower(b.Title)
		n := 0
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				n++
			}
		}
		scores[b.ID] = n
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return scores[matches[i].ID] > scores[matches[j].ID]
	})

	randN := limit / 5
	rankedN := limit - randN
	if rankedN > len(matches) {
		rankedN = len(matches)
	}
	pool := make([]*types.Book, 0, limit)
	pool = append(pool, matches[:rankedN]...)

	randBooks, err := s.bookRepo.RandomSample(ctx, nil, randN)
	if err != nil {
		return nil, err
	}
	pool = append(pool, randBooks...)

	// Dedup by ISBN; ranked entries came first and win.
	seen := make(map[string]struct{}, len(pool))
	out := make([]*types.Book, 0, limit)
	for _, b := range pool {
		if _, dup := seen[b.ISBN]; dup {
			continue
		}
		seen[b.ISBN] = struct{}{}
		out = append(out, b)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *candidateService) extractKeywords(anchors []*types.Book) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, b := range anchors {
		text := b.Title + " " + b.Author + " " + b.Publisher
		for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
			return !unicode.IsLetter(r)
		}) {
			if len(tok) < 4 {
				continue
			}
			tok = strings.ToLower(tok)
			if _, stop := keywordStopwords[tok]; stop {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			keywords = append(keywords, tok)
			if len(keywords) == s.maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}
