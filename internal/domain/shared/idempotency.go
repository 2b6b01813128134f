package shared

import (
	"context"
	"time"
)

// IdempotentResponse is a recorded answer replayed for a repeated idempotency key
type IdempotentResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore records responses keyed by client-supplied idempotency keys
type IdempotencyStore interface {
	// Reserve claims key for ttl.
	// Returns true if the key was newly claimed, false if it is completed or in flight
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Get returns the recorded response for key, or nil while the key is in flight or absent
	Get(ctx context.Context, key string) (*IdempotentResponse, error)

	// Complete stores the response for a reserved key
	Complete(ctx context.Context, key string, resp IdempotentResponse, ttl time.Duration) error

	// Release drops a reservation so the key can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a recorded response is replayed
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency keys are honoured
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
