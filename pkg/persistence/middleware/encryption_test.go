package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy/internal/testutils"
	"github.com/aretw0/aidbuddy/pkg/adapters/memory"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/persistence/middleware"
	"github.com/aretw0/aidbuddy/pkg/ports"
	"github.com/aretw0/aidbuddy/pkg/ports/tests"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, next ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func answered(id string) *domain.State {
	s := domain.NewState(id)
	s.Flow = domain.FlowEstimate()
	s.Independent = domain.Bool(false)
	s.HouseholdSize = domain.Int(4)
	s.IncomeRange = domain.String("under_20k")
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := secure(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	tests.RunStateStoreContract(t, store)
}

func TestEncryptionMiddleware_RedisContract(t *testing.T) {
	underlying, _ := testutils.NewRedisStore(t)
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	tests.RunStateStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	original := answered("s1")
	require.NoError(t, store.Save(ctx, "s1", original))
	assert.NotNil(t, original.IncomeRange, "Save must not modify the caller's state")

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Nil(t, raw.Independent)
	assert.Nil(t, raw.HouseholdSize)
	assert.Nil(t, raw.IncomeRange)
	assert.Equal(t, domain.FlowEstimate(), raw.Flow, "flow stays readable")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Sealed)
	assert.Equal(t, original.Snapshot(), loaded.Snapshot())
}

func TestEncryptionMiddleware_EnvelopeBoundToSession(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "victim", answered("victim")))
	require.NoError(t, store.Save(ctx, "attacker", domain.NewState("attacker")))

	sealed, err := underlying.Load(ctx, "victim")
	require.NoError(t, err)
	forged, err := underlying.Load(ctx, "attacker")
	require.NoError(t, err)
	forged.Sealed = sealed.Sealed
	require.NoError(t, underlying.Save(ctx, "attacker", forged))

	_, err = store.Load(ctx, "attacker")
	assert.Error(t, err, "answers sealed for one session must not open under another")

	loaded, err := store.Load(ctx, "victim")
	require.NoError(t, err)
	assert.Equal(t, "under_20k", *loaded.IncomeRange)
}

func TestEncryptionMiddleware_NoAnswersNoEnvelope(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "fresh", domain.NewState("fresh")))
	raw, err := underlying.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, raw.Sealed)

	_, err = store.Load(ctx, "fresh")
	assert.NoError(t, err)
}

func TestEncryptionMiddleware_RejectsPlaintextAnswers(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "legacy", answered("legacy")))

	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "legacy")
	assert.ErrorIs(t, err, middleware.ErrUnsealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, "r1", answered("r1")))

	newStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "under_20k", *loaded.IncomeRange)

	loaded.AssetRange = domain.String("1_5k")
	require.NoError(t, newStore.Save(ctx, "r1", loaded))

	_, err = oldStore.Load(ctx, "r1")
	assert.Error(t, err, "old key alone cannot read data sealed with the new key")
}

func TestEncryptionConfig(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)

	key := generateKey(t)
	cfg, err := middleware.ParseKeys(base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(generateKey(t)))
	require.NoError(t, err)
	assert.Equal(t, key, cfg.ActiveKey)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.StateStore) ports.StateStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
