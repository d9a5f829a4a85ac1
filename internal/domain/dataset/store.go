package dataset

import (
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for unknown or already-evicted sessions.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps uploaded sessions in memory. Sessions are ephemeral: they
// live for the process only and the oldest session is evicted once the
// capacity is exceeded.
type Store struct {
	mu       sync.RWMutex
	max      int
	sessions map[string]*Session
}

// NewStore creates a session store holding at most max sessions.
func NewStore(max int) *Store {
	if max <= 0 {
		max = 1
	}
	return &Store{max: max, sessions: make(map[string]*Session)}
}

// Put stores a session, evicting the oldest one when over capacity.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Summary.ID] = sess
	for len(s.sessions) > s.max {
		oldestID := ""
		for id, candidate := range s.sessions {
			if oldestID == "" || candidate.Summary.CreatedAt.Before(s.sessions[oldestID].Summary.CreatedAt) {
				oldestID = id
			}
		}
		delete(s.sessions, oldestID)
	}
}

// Get returns a session by id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
