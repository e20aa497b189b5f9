package cache

import (
	"context"
	"time"
)

// KeySerializer builds a cache key from a method name + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// State is the outcome of a cache lookup.
type State int

const (
	// Miss means nothing usable is cached under the key. Store failures
	// and decode failures are reported as misses.
	Miss State = iota
	// Empty means the key holds the explicit empty sentinel, i.e. the
	// source of truth answered with an empty result.
	Empty
	// Hit means a value was found and decoded into the destination.
	Hit
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Hit:
		return "hit"
	default:
		return "miss"
	}
}

// Accessor exposes the cache-aside operations used by the domain services.
// None of its methods surface errors: a cache that is down behaves like an
// always-missing, write-discarding cache.
type Accessor interface {
	Fetch(ctx context.Context, key string, dest any) State
	Store(ctx context.Context, key string, value any)
	StoreWithTTL(ctx context.Context, key string, value any, ttl time.Duration)
	StoreEmpty(ctx context.Context, key string)
	Invalidate(ctx context.Context, key string)
}

// Store is the raw key/value backend behind an Accessor.
// Implementations must be safe for concurrent use and are expected to be
// created once per process.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Lookup is a type-safe wrapper around Accessor.Fetch.
func Lookup[T any](ctx context.Context, accessor Accessor, key string) (T, State) {
	var value T
	state := accessor.Fetch(ctx, key, &value)
	if state != Hit {
		var zero T
		return zero, state
	}
	return value, Hit
}
