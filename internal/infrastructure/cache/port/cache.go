package port

import (
	"context"
	"time"
)

// Cache defines the minimal contract for a key-value counter store used by the
// application. Implementations should be concurrency-safe.
// All methods must be context-aware to allow caller-driven timeouts/cancellation.
//
// Note: Values are stored as strings to keep the port generic and avoid coupling
// to serialization concerns. Adapters may add helper methods in their own packages
// if needed, but this is the stable port exposed to the rest of the app.
type Cache interface {
	// Get fetches the value for key. Cache misses are returned as ("", ErrMiss);
	// a non-nil error other than ErrMiss indicates a transport or server error.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL means
	// no expiration (persist until evicted).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Incr atomically increments the integer at key and returns the new value.
	// A missing key counts from zero. The TTL is applied when the key is
	// created so windowed counters expire on their own. Atomicity is required:
	// concurrent increments of the same key must never lose updates.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Del removes one or more keys and returns the number of keys removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss should be used by adapters to signal a cache miss in a typed way.
// This allows callers to differentiate misses from transport errors if desired.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
