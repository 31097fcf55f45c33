package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/ports"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Flow = domain.FlowApply(domain.ApplyTaxInfo)
		state.Independent = domain.Bool(true)
		state.HouseholdSize = domain.Int(3)
		state.IncomeRange = domain.String("20_40k")
		state.AwardYear = "2025-26"
		state.Enrollment = domain.HalfTime
		state.Turns = 7

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Snapshot(), loaded.Snapshot())
		assert.Equal(t, domain.FlowApply(domain.ApplyTaxInfo), loaded.Flow)
		assert.Equal(t, 7, loaded.Turns)
		assert.Nil(t, loaded.AssetRange)
		assert.Nil(t, loaded.HasTaxInfo)
	})

	t.Run("Load Returns A Copy", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.HouseholdSize = domain.Int(2)
		require.NoError(t, store.Save(ctx, sessionID, state))

		*state.HouseholdSize = 9
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, *loaded.HouseholdSize, "store must not alias caller state")

		*loaded.HouseholdSize = 11
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, *again.HouseholdSize)
	})

	t.Run("Overwrite", func(t *testing.T) {
		state := domain.NewState(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Flow = domain.FlowEstimate()
		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.ModeEstimate, loaded.Mode())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1)))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)

		require.NoError(t, store.Delete(ctx, id1))
		sessions, err = store.List(ctx)
		require.NoError(t, err)
		assert.NotContains(t, sessions, id1)
	})
}
