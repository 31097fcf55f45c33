package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy/pkg/adapters/memory"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/ports"
	"github.com/aretw0/aidbuddy/pkg/ports/tests"
)

var _ ports.StateStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Defaults(t *testing.T) {
	store := memory.NewStore(memory.WithCapacity(-1), memory.WithTTL(0))
	assert.Equal(t, memory.DefaultCapacity, store.Capacity())
	assert.Equal(t, memory.DefaultTTL, store.TTL())
}

func TestMemoryStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	store := memory.NewStore(memory.WithCapacity(3))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("s%d", i)
		require.NoError(t, store.Save(ctx, id, domain.NewState(id)))
	}

	// Touch s1 so that s2 becomes the oldest entry.
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "s4", domain.NewState("s4")))

	assert.Equal(t, 3, store.Len())
	_, err = store.Load(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3", "s4"}, ids)
}

func TestMemoryStore_IdleTTL(t *testing.T) {
	store := memory.NewStore(memory.WithTTL(200 * time.Millisecond))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "idle", domain.NewState("idle")))
	require.NoError(t, store.Save(ctx, "busy", domain.NewState("busy")))

	time.Sleep(120 * time.Millisecond)
	require.NoError(t, store.Save(ctx, "busy", domain.NewState("busy")))
	time.Sleep(120 * time.Millisecond)

	_, err := store.Load(ctx, "idle")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "idle session must expire")

	_, err = store.Load(ctx, "busy")
	assert.NoError(t, err, "saving restarts the idle timer")
}
