package cacheinfra

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shelfd/shelfd/cache"
)

var ErrNilRedisClient = errors.New("cacheinfra: nil redis client")

// RedisService is the shared-backend variant of a cache service. Values are
// serialized through a Codec and stored with the family TTL on every SET, so
// a freshly populated entry's remaining TTL is always within the family
// ceiling.
type RedisService[V any] struct {
	rdb   goredis.UniversalClient
	codec Codec[V]
	ttl   time.Duration
}

// NewRedisService validates cfg and wraps the given client for one value
// family. The client is owned by the caller; the service never closes it.
func NewRedisService[V any](client goredis.UniversalClient, codec Codec[V], cfg cache.Config) (*RedisService[V], error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RedisService[V]{rdb: client, codec: codec, ttl: cfg.TTL}, nil
}

func (s *RedisService[V]) GetOrFetch(ctx context.Context, key string, fetch cache.FetchFn[V]) (V, error) {
	var zero V

	b, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == goredis.Nil:
		// miss
	case err != nil:
		return zero, err
	default:
		v, decErr := s.codec.Decode(b)
		if decErr == nil {
			return v, nil
		}
		// self-heal corrupt payloads and fall through to the store
		_ = s.rdb.Del(ctx, key).Err()
	}

	v, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	// Population is best-effort and last-write-wins: the value was already
	// served from the store, and a failed SET only costs the next read a
	// refetch.
	if payload, encErr := s.codec.Encode(v); encErr == nil {
		_ = s.rdb.Set(ctx, key, payload, s.ttl).Err()
	}
	return v, nil
}

// Delete removes the entry. Unlike population, a delete failure propagates:
// it is issued after a confirmed store write, and swallowing it would leave
// a stale entry in place.
func (s *RedisService[V]) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
