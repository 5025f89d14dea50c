// Package memstore implements remote.Store in process memory, backed by
// patrickmn/go-cache. It exists for development and tests; it honors the
// same counter and TTL semantics as the networked stores, including
// ErrNotFound on counter ops against absent keys and the zero floor on
// decrement.
package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	rs "github.com/unkn0wn-root/tagcache/remote"
)

type Store struct {
	// go-cache is safe per operation; mu makes the counters'
	// read-modify-write atomic
	mu sync.Mutex
	c  *gocache.Cache
}

var _ rs.Store = (*Store)(nil)

// New creates an in-process store. Expired entries are swept every minute.
func New() *Store {
	return &Store{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func toExpiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("memstore: non-byte value at %q", key)
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.c.Set(key, value, toExpiration(ttl))
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *Store) Increment(_ context.Context, key string, delta uint64) (uint64, error) {
	return s.addSigned(key, int64(delta))
}

func (s *Store) Decrement(_ context.Context, key string, delta uint64) (uint64, error) {
	return s.addSigned(key, -int64(delta))
}

// addSigned applies a counter delta to the ASCII-decimal value at key,
// flooring at zero and preserving the entry's remaining TTL.
func (s *Store) addSigned(key string, delta int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exp, ok := s.c.GetWithExpiration(key)
	if !ok {
		return 0, rs.ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return 0, fmt.Errorf("memstore: non-byte value at %q", key)
	}
	cur, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("memstore: non-numeric value at %q: %w", key, err)
	}
	next := cur + delta
	if next < 0 {
		next = 0
	}
	ttl := gocache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
	}
	s.c.Set(key, []byte(strconv.FormatInt(next, 10)), ttl)
	return uint64(next), nil
}

func (s *Store) GetMulti(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, ok := s.c.Get(k)
		if !ok {
			continue
		}
		if b, ok := v.([]byte); ok {
			out[k] = b
		}
	}
	return out, nil
}

func (s *Store) SetMulti(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	exp := toExpiration(ttl)
	for k, v := range items {
		s.c.Set(k, v, exp)
	}
	return nil
}

// Flush drops everything. Test helper.
func (s *Store) Flush() { s.c.Flush() }

func (s *Store) Close(_ context.Context) error {
	s.c.Flush()
	return nil
}
