package cache

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
)

// IdempotencyStoreFactory picks the idempotency backend for the HTTP surface
type IdempotencyStoreFactory struct {
	redis    RedisConfig
	logger   *zap.Logger
	clock    clockwork.Clock
	fallback bool
}

// FactoryOption configures an IdempotencyStoreFactory
type FactoryOption func(*IdempotencyStoreFactory)

func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Enabled by default.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.fallback = allow
	}
}

// WithClock sets the clock driving in-memory expiry
func WithClock(clock clockwork.Clock) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		if clock != nil {
			f.clock = clock
		}
	}
}

func NewIdempotencyStoreFactory(cfg RedisConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redis:    cfg,
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
		fallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the Redis store when an address is configured and
// reachable, otherwise the in-memory store. With fallback disabled an
// unreachable Redis is an error.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	if f.redis.Addr == "" {
		f.logger.Info("Idempotency keys kept in memory")
		return NewInMemoryIdempotencyStoreWithClock(f.clock), nil
	}

	store, err := NewRedisIdempotencyStore(f.redis)
	switch {
	case err == nil:
		f.logger.Info("Idempotency keys kept in Redis", zap.String("addr", f.redis.Addr), zap.Int("db", f.redis.DB))
		return store, nil
	case !f.fallback:
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unreachable, idempotency keys kept in memory",
		zap.String("addr", f.redis.Addr),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStoreWithClock(f.clock), nil
}
