package services

import (
	"sync"
)

// SessionService keeps each user's recent item keys in a bounded FIFO.
// State is process-local and lost on restart. Each user owns one lock;
// appends and reads for distinct users never contend.
type SessionService interface {
	Append(userKey, isbn string)
	// Read returns a copy of the current sequence, oldest first.
	Read(userKey string) []string
	Reset(userKey string)
}

type sessionService struct {
	capacity int
	sessions sync.Map // userKey -> *userSession
}

type userSession struct {
	mu    sync.Mutex
	items []string
}

func NewSessionService(capacity int) SessionService {
	if capacity <= 0 {
		capacity = 10
	}
	return &sessionService{capacity: capacity}
}

// get creates the per-user entry on first touch. LoadOrStore makes the
// lock creation itself race-free: two concurrent first appends agree on
// a single session.
func (s *sessionService) get(userKey string) *userSession {
	if v, ok := s.sessions.Load(userKey); ok {
		return v.(*userSession)
	}
	v, _ := s.sessions.LoadOrStore(userKey, &userSession{})
	return v.(*userSession)
}

func (s *sessionService) Append(userKey, isbn string) {
	sess := s.get(userKey)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.items = append(sess.items, isbn)
	if len(sess.items) > s.capacity {
		sess.items = sess.items[len(sess.items)-s.capacity:]
	}
}

func (s *sessionService) Read(userKey string) []string {
	v, ok := s.sessions.Load(userKey)
	if !ok {
		return nil
	}
	sess := v.(*userSession)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]string, len(sess.items))
	copy(out, sess.items)
	return out
}

func (s *sessionService) Reset(userKey string) {
	sess := s.get(userKey)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.items = nil
}
