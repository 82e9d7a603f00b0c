package ports

import (
	"context"

	"github.com/evanfield/guidepost/pkg/domain"
)

// StateStore persists session snapshots by id. This enables a session to
// survive across service restarts or be shared between instances; the engine
// core itself never touches a store.
type StateStore interface {
	// Save persists the session snapshot under its id.
	Save(ctx context.Context, sessionID string, s *domain.Session) error

	// Load retrieves a session snapshot.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the ids of stored sessions.
	List(ctx context.Context) ([]string, error)
}
