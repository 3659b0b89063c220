// Package cache provides an in-memory store for GraphQL query responses.
// The store is scoped to the current identity: clearing auth state must
// invalidate it so a different or anonymous user never sees stale data.
package cache

import "sync"

// Store is a process-wide response cache keyed by operation + variables.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

// Get returns the cached raw response for the key, if present.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores a copy of the raw response under the key.
func (s *Store) Set(key string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cp
}

// Invalidate drops every cached entry. Called on logout and on any
// identity change.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
