package session_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/ports"
	"github.com/aretw0/aidbuddy/pkg/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]*domain.State
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.State)
	}
	s.data[sessionID] = state.Clone()
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.data[sessionID]; ok {
		return state.Clone(), nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func TestManager_UpdateSerialisesTurns(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	concurrentTurns := 20

	for i := 0; i < concurrentTurns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, id, func(s *domain.State) error {
				s.Turns++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, concurrentTurns, state.Turns, "read-modify-write must not lose turns")
}

func TestManager_LoadOrStart(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	created := make([]time.Time, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, err := manager.LoadOrStart(ctx, id)
			assert.NoError(t, err)
			if assert.NotNil(t, state) {
				created[i] = state.CreatedAt
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, created[0], created[1], "both callers must see the same session")

	state, err := manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, state.SessionID)
	assert.Equal(t, domain.ModeInitial, state.Mode())
	assert.Equal(t, domain.DefaultAwardYear, state.AwardYear)
	assert.Equal(t, domain.FullTime, state.Enrollment)
}

func TestManager_GetUnknown(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	_, err := manager.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_UpdateErrorDoesNotPersist(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	boom := errors.New("boom")

	_, err := manager.Update(ctx, "s1", func(s *domain.State) error {
		s.Flow = domain.FlowEstimate()
		s.Independent = domain.Bool(true)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	state, err := manager.Get(ctx, "s1")
	require.NoError(t, err, "the session itself is created before fn runs")
	assert.Equal(t, domain.ModeInitial, state.Mode())
	assert.Nil(t, state.Independent)
}

func TestManager_UpdateDoesNotAliasStore(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	state, err := manager.Update(ctx, "s1", func(s *domain.State) error {
		s.HouseholdSize = domain.Int(3)
		return nil
	})
	require.NoError(t, err)

	*state.HouseholdSize = 99
	again, err := manager.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, *again.HouseholdSize)
}

func TestManager_Reset(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	_, err := manager.Update(ctx, "s1", func(s *domain.State) error {
		s.Flow = domain.FlowApply(domain.ApplyBankInfo)
		s.AwardYear = "2025-26"
		s.HasTaxInfo = domain.Bool(true)
		return nil
	})
	require.NoError(t, err)

	state, err := manager.Reset(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.NewState("s1").Snapshot(), state.Snapshot())

	stored, err := manager.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.NewState("s1").Snapshot(), stored.Snapshot())
}

func TestManager_EvictAndList(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := manager.LoadOrStart(ctx, id)
		require.NoError(t, err)
	}

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	require.NoError(t, manager.Evict(ctx, "b"))
	require.NoError(t, manager.Evict(ctx, "never-existed"))

	ids, err = manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids)

	_, err = manager.Get(ctx, "b")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

type recordingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	ttl      time.Duration
	failWith error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(&SlowStore{},
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	_, err := manager.Update(ctx, "s1", func(*domain.State) error { return nil })
	require.NoError(t, err)
	_, err = manager.Reset(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockerFailure(t *testing.T) {
	boom := errors.New("redis down")
	manager := session.NewManager(&SlowStore{}, session.WithLocker(&recordingLocker{failWith: boom}))

	_, err := manager.Update(context.Background(), "s1", func(*domain.State) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
