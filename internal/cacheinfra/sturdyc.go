package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"

	"github.com/shelfd/shelfd/cache"
)

// SturdycService is the in-process cache backend. sturdyc's TTL is fixed per
// client, so each value family gets its own client carrying the family TTL.
//
// Version compatibility note: this adapter assumes sturdyc v1.x, where
// capacity, shard count, TTL and eviction percentage are constructor
// arguments rather than options.
type SturdycService[V any] struct {
	client *sturdyc.Client[V]
}

// NewSturdycService validates cfg and builds a client for one value family.
func NewSturdycService[V any](cfg cache.Config) (*SturdycService[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[V](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage)
	return &SturdycService[V]{client: client}, nil
}

// GetOrFetch returns the cached value or runs fetch and populates the entry
// with the client TTL. sturdyc deduplicates concurrent fetches for the same
// key; the contract does not rely on that, only on the returned value.
func (s *SturdycService[V]) GetOrFetch(ctx context.Context, key string, fetch cache.FetchFn[V]) (V, error) {
	return s.client.GetOrFetch(ctx, key, sturdyc.FetchFn[V](fetch))
}

// Delete removes the entry so the next read repopulates from the store.
func (s *SturdycService[V]) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}
