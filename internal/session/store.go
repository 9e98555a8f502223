package session

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory session registry with idle eviction.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete drops a session. It reports whether one was present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes sessions idle for longer than the TTL and returns how
// many were evicted. Session locks are never taken under the store lock.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	candidates := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.Unlock()

	now := time.Now()
	var expired []*Session
	for _, sess := range candidates {
		if now.Sub(sess.Info().UsedAt) > s.ttl {
			expired = append(expired, sess)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for _, sess := range expired {
		// Skip entries replaced while the store was unlocked.
		if cur, ok := s.sessions[sess.ID]; ok && cur == sess {
			delete(s.sessions, sess.ID)
			evicted++
		}
	}
	return evicted
}
