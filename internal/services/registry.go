package services

import (
	"sync/atomic"

	"github.com/bookwise/backend/internal/stamp"
)

// ScoringSnapshot pairs a model with the index mapping it was shaped
// against. The two are only ever published together so a reader cannot
// observe a model sized for N items next to a mapping sized for M.
type ScoringSnapshot struct {
	Model   *stamp.Model
	Mapping *IndexMapping
}

// ModelRegistry holds the single active scoring snapshot. Publish
// replaces it wholesale; Current never blocks.
type ModelRegistry struct {
	snap atomic.Pointer[ScoringSnapshot]
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{}
}

func (r *ModelRegistry) Publish(s *ScoringSnapshot) {
	r.snap.Store(s)
}

func (r *ModelRegistry) Current() (*ScoringSnapshot, error) {
	s := r.snap.Load()
	if s == nil {
		return nil, ErrModelNotReady
	}
	return s, nil
}

func (r *ModelRegistry) Ready() bool {
	return r.snap.Load() != nil
}
