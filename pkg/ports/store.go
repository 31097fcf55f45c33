package ports

import (
	"context"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

// StateStore persists conversation state keyed by session ID.
// Implementations own eviction: entries may disappear after an idle TTL or
// when a capacity bound is reached, and must then behave as never saved.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.State) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.State, error)

	// Delete removes the state for a given session ID. Deleting an unknown
	// session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the live sessions.
	List(ctx context.Context) ([]string, error)
}
