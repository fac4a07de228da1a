package services

import (
	"fmt"
	"sync"
	"testing"
)

func TestSessionFIFOEviction(t *testing.T) {
	s := NewSessionService(3)

	for _, isbn := range []string{"a", "b", "c", "d", "e"} {
		s.Append("u1", isbn)
	}

	got := s.Read("u1")
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSessionReadUnknownUser(t *testing.T) {
	s := NewSessionService(3)
	if got := s.Read("nobody"); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSessionService(3)
	s.Append("u1", "a")
	s.Reset("u1")
	if got := s.Read("u1"); len(got) != 0 {
		t.Fatalf("got %v after reset, want empty", got)
	}
}

func TestSessionReadReturnsCopy(t *testing.T) {
	s := NewSessionService(3)
	s.Append("u1", "a")
	s.Append("u1", "b")

	got := s.Read("u1")
	got[0] = "mutated"

	again := s.Read("u1")
	if again[0] != "a" {
		t.Fatalf("stored session mutated through Read result: %v", again)
	}
}

func TestSessionConcurrentSameUser(t *testing.T) {
	const n = 100
	s := NewSessionService(n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("u1", fmt.Sprintf("isbn-%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(s.Read("u1")); got != n {
		t.Fatalf("lost appends: got %d items, want %d", got, n)
	}
}

func TestSessionConcurrentUserIsolation(t *testing.T) {
	s := NewSessionService(10)

	var wg sync.WaitGroup
	for u := 0; u < 8; u++ {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			key := fmt.Sprintf("user-%d", u)
			for i := 0; i < 5; i++ {
				s.Append(key, fmt.Sprintf("u%d-i%d", u, i))
			}
		}(u)
	}
	wg.Wait()

	for u := 0; u < 8; u++ {
		key := fmt.Sprintf("user-%d", u)
		items := s.Read(key)
		if len(items) != 5 {
			t.Fatalf("user %s has %d items, want 5", key, len(items))
		}
		for i, isbn := range items {
			want := fmt.Sprintf("u%d-i%d", u, i)
			if isbn != want {
				t.Fatalf("user %s item %d is %s, want %s", key, i, isbn, want)
			}
		}
	}
}
