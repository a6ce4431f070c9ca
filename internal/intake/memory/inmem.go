// internal/intake/memory/inmem.go
package memory

import (
	"context"
	"sync"
)

// InMemStore keeps the backlog in process memory. Nothing survives a restart,
// which is fine: the backlog is a fallback, not a system of record.
type InMemStore struct {
	mu    sync.RWMutex
	lines map[string][]string
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		lines: make(map[string][]string),
	}
}

func (s *InMemStore) Get(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.lines[userID]
	out := make([]string, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *InMemStore) Append(_ context.Context, userID, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines[userID] = append(s.lines[userID], line)
	return nil
}

func (s *InMemStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, userID)
	return nil
}
