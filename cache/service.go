package cache

import "context"

// FetchFn loads a value from the source of truth on a cache miss.
type FetchFn[V any] func(ctx context.Context) (V, error)

// Service exposes the read-through operations the store decorators need for
// one value family. Implementations must be safe for concurrent use.
// Concurrent misses for the same key may each run the fetch and populate the
// entry last-write-wins; values are always reconstructable from the store, so
// single-flight behavior is a load optimization, never a correctness
// requirement.
type Service[V any] interface {
	// GetOrFetch returns the cached value for key, or runs fetch, stores the
	// result with the service's TTL, and returns it. Fetch errors propagate
	// and are never cached.
	GetOrFetch(ctx context.Context, key string, fetch FetchFn[V]) (V, error)

	// Delete removes the entry for key. Deleting an absent key is not an
	// error. A failed delete must be reported to the caller: after a
	// successful store write it leaves a stale entry in place.
	Delete(ctx context.Context, key string) error
}
