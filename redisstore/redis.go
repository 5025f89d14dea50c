// Package redisstore implements remote.Store on top of go-redis.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	rs "github.com/unkn0wn-root/tagcache/remote"
)

// Redis counters are created implicitly by INCRBY/DECRBY, but remote.Store
// requires counter ops to fail on absent keys (that failure is how new tags
// are detected). Both scripts gate on EXISTS to get memcached-style
// semantics.
var incrIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return false
end
return redis.call("INCRBY", KEYS[1], ARGV[1])
`)

// Decrement floors at zero. The floor is restored with INCRBY rather than
// SET so the key keeps its TTL.
var decrFloorZero = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return false
end
local v = redis.call("DECRBY", KEYS[1], ARGV[1])
if v < 0 then
  redis.call("INCRBY", KEYS[1], -v)
  return 0
end
return v
`)

// Store is a redis-backed remote.Store. It works with any UniversalClient
// (single node, sentinel, cluster).
type Store struct {
	rdb redis.UniversalClient
}

var _ rs.Store = (*Store)(nil)

func New(client redis.UniversalClient) *Store {
	return &Store{rdb: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Increment(ctx context.Context, key string, delta uint64) (uint64, error) {
	v, err := incrIfExists.Run(ctx, s.rdb, []string{key}, delta).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, rs.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func (s *Store) Decrement(ctx context.Context, key string, delta uint64) (uint64, error) {
	v, err := decrFloorZero.Run(ctx, s.rdb, []string{key}, delta).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, rs.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		switch vv := v.(type) {
		case nil:
			// absent keys are omitted
		case string:
			out[keys[i]] = []byte(vv)
		case []byte:
			out[keys[i]] = vv
		}
	}
	return out, nil
}

// SetMulti pipelines per-key SETs in a single round-trip. MSET cannot carry
// a TTL, so it is not used.
func (s *Store) SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range items {
			p.Set(ctx, k, v, ttl)
		}
		return nil
	})
	return err
}

func (s *Store) Close(ctx context.Context) error { return s.rdb.Close() }
