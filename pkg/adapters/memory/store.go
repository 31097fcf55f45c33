package memory

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/aretw0/aidbuddy/internal/logging"
	"github.com/aretw0/aidbuddy/pkg/domain"
)

// Defaults applied when no option overrides them.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 2 * time.Hour
)

// Store implements ports.StateStore in process memory. It holds at most
// Capacity sessions, dropping the least recently used one when full, and
// forgets a session once it has not been saved for TTL.
// Safe for concurrent use.
type Store struct {
	cache    *expirable.LRU[string, *domain.State]
	capacity int
	ttl      time.Duration
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity bounds the number of live sessions.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTTL sets the idle lifetime of a session.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used to report dropped sessions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = expirable.NewLRU[string, *domain.State](s.capacity, s.onEvict, s.ttl)
	return s
}

func (s *Store) onEvict(sessionID string, _ *domain.State) {
	s.logger.Debug("session dropped from memory store", "session_id", sessionID)
}

// Save persists a copy of the state and restarts its idle timer.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	s.cache.Add(sessionID, state.Clone())
	return nil
}

// Load returns a copy so callers cannot mutate stored state by pointer.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

// List returns the live sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	sessions := s.cache.Keys()
	sort.Strings(sessions)
	return sessions, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Capacity returns the configured session bound.
func (s *Store) Capacity() int {
	return s.capacity
}

// TTL returns the configured idle lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
