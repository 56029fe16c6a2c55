package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/pkg/adapters/redis"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/observability"
	"github.com/aretw0/turing/pkg/persistence/middleware"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// NewService initializes a Service with standard CLI conventions: Redis stores
// and locking when redis.url is set, logging hooks, and Prometheus hooks when
// reg is not nil. The returned closer releases the Redis client and is never nil.
func NewService(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*turing.Service, func() error, error) {
	hooks := []domain.LifecycleHooks{observability.LogHooks(logger)}
	if reg != nil {
		hooks = append(hooks, observability.NewMetrics(reg).Hooks())
	}

	opts := []turing.Option{
		turing.WithLogger(logger),
		turing.WithLifecycleHooks(domain.MergeHooks(hooks...)),
		turing.WithHistory(cfg.History.Enabled, cfg.History.Limit),
		turing.WithLimits(cfg.Limits.MaxTapeLength, cfg.Limits.MaxRunSteps),
	}

	closer := func() error { return nil }
	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing redis: %w", err)
		}
		store := redis.NewFromClient(client,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL.Duration),
		)
		instances, err := sealInstances(cfg.Redis, store)
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		opts = append(opts,
			turing.WithInstanceStore(instances),
			turing.WithDefinitionStore(redis.NewDefinitionStore(client, cfg.Redis.Prefix)),
			turing.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix), session.DefaultLockTTL),
		)
		closer = store.Close
		logger.Info("Using Redis stores", "prefix", cfg.Redis.Prefix, "ttl", cfg.Redis.TTL.Duration)
	}

	return turing.New(opts...), closer, nil
}

// sealInstances wraps store with the encryption middleware when a key is configured.
func sealInstances(cfg config.RedisConfig, store ports.InstanceStore) (ports.InstanceStore, error) {
	active, fallback, err := cfg.Keys()
	if err != nil || active == nil {
		return store, err
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	})
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}
