// Package testutils holds fixtures shared by adapter tests.
package testutils

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy"
	"github.com/aretw0/aidbuddy/internal/logging"
	"github.com/aretw0/aidbuddy/pkg/adapters/redis"
)

// NewEngine builds an engine with a quiet logger and the in-memory store.
// It fails the test immediately on error.
func NewEngine(t *testing.T, opts ...aidbuddy.Option) *aidbuddy.Engine {
	t.Helper()
	opts = append([]aidbuddy.Option{aidbuddy.WithLogger(logging.NewNop())}, opts...)
	eng, err := aidbuddy.New(opts...)
	require.NoError(t, err, "Failed to build engine")
	return eng
}

// NewRedisStore starts a miniredis server and returns a store bound to it
// under the "test:" prefix. Both are closed when the test ends.
func NewRedisStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err, "Failed to create redis client")

	opts = append([]redis.Option{redis.WithPrefix("test:")}, opts...)
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

// Converse feeds inputs to one session in order and returns the last payload.
func Converse(t *testing.T, eng *aidbuddy.Engine, sessionID string, inputs ...string) *aidbuddy.Payload {
	t.Helper()
	var p *aidbuddy.Payload
	for _, in := range inputs {
		var err error
		p, err = eng.HandleTurn(context.Background(), sessionID, in)
		require.NoError(t, err, "turn %q", in)
	}
	return p
}
