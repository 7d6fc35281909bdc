// Package session holds ephemeral per-user game state for the turn-based
// games. Each game type keeps at most one live session per user; starting a
// new one force-settles the old one, never discards it.
package session

import (
	"sync"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
)

// Store is a keyed session store for one game type. Acquire gives a caller
// exclusive use of a user's slot; a second concurrent request is rejected
// with a state error instead of racing the first.
type Store[T any] struct {
	mu      sync.Mutex
	entries map[int64]*slot[T]
}

type slot[T any] struct {
	busy bool
	sess *T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{entries: make(map[int64]*slot[T])}
}

// Acquire reserves the user's slot for the duration of one operation. The
// returned release func must be called exactly once.
func (s *Store[T]) Acquire(userID int64) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &slot[T]{}
		s.entries[userID] = e
	}
	if e.busy {
		return nil, models.NewStateError("another operation is already in progress")
	}
	e.busy = true

	return func() {
		s.mu.Lock()
		e.busy = false
		if e.sess == nil {
			delete(s.entries, userID)
		}
		s.mu.Unlock()
	}, nil
}

// Get returns the live session for the user, if any. Callers must hold the
// slot via Acquire.
func (s *Store[T]) Get(userID int64) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || e.sess == nil {
		return nil, false
	}
	return e.sess, true
}

func (s *Store[T]) Set(userID int64, sess *T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &slot[T]{}
		s.entries[userID] = e
	}
	e.sess = sess
}

func (s *Store[T]) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[userID]; ok {
		e.sess = nil
	}
}
