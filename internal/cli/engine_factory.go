package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/aidbuddy"
	"github.com/aretw0/aidbuddy/internal/config"
	"github.com/aretw0/aidbuddy/pkg/adapters/memory"
	"github.com/aretw0/aidbuddy/pkg/adapters/redis"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
	"github.com/aretw0/aidbuddy/pkg/persistence/middleware"
	"github.com/aretw0/aidbuddy/pkg/ports"
)

// Closer releases what NewEngine opened.
type Closer func() error

// NewEngine builds an engine from cfg: the award-year table, the session
// store (memory or redis, optionally encrypted) and, for redis, the
// distributed locker.
func NewEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*aidbuddy.Engine, Closer, error) {
	table, err := estimate.LoadTable(cfg.AwardYearsFile)
	if err != nil {
		return nil, nil, err
	}

	store, locker, closer, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Encryption.Enabled() {
		keys, err := cfg.Encryption.Keys()
		if err != nil {
			_ = closer()
			return nil, nil, fmt.Errorf("encryption keys: %w", err)
		}
		sealer, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		store = middleware.Chain(store, sealer)
		logger.Debug("answers sealed at rest", "fallback_keys", len(keys.FallbackKeys))
	}

	opts := []aidbuddy.Option{
		aidbuddy.WithLogger(logger),
		aidbuddy.WithStore(store),
		aidbuddy.WithAwardYears(table),
		aidbuddy.WithMaxInputSize(cfg.MaxInputSize),
	}
	if locker != nil {
		opts = append(opts, aidbuddy.WithLocker(locker), aidbuddy.WithLockTTL(cfg.Redis.LockTTL))
	}
	for _, h := range hooks {
		opts = append(opts, aidbuddy.WithLifecycleHooks(h))
	}

	engine, err := aidbuddy.New(opts...)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, closer, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.StateStore, ports.DistributedLocker, Closer, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := redis.NewClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := redis.NewFromClient(client,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.SessionTTL),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		logger.Debug("session store ready", "store", config.StoreRedis, "prefix", cfg.Redis.Prefix, "ttl", cfg.SessionTTL)
		return store, redis.NewLocker(client, cfg.Redis.Prefix), store.Close, nil

	default:
		store := memory.NewStore(
			memory.WithCapacity(cfg.SessionCapacity),
			memory.WithTTL(cfg.SessionTTL),
			memory.WithLogger(logger),
		)
		logger.Debug("session store ready", "store", config.StoreMemory, "capacity", store.Capacity(), "ttl", store.TTL())
		return store, nil, func() error { return nil }, nil
	}
}
