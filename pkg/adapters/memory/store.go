// Package memory provides an in-process ports.StateStore, the default for
// single-instance deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/evanfield/guidepost/pkg/domain"
)

// Store implements ports.StateStore in memory. Safe for concurrent use.
type Store struct {
	data map[string]*domain.Session
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Session),
	}
}

// Save persists a snapshot of the session. The snapshot isolates the stored
// state from later mutations of the live session.
func (s *Store) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	snap := sess.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = snap
	return nil
}

// Load retrieves a copy of the stored session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the stored session ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
