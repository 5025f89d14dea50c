package local

import (
	"context"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCache wraps allegro/bigcache as a bounded local value cache. Writes are
// synchronous, so a Set is visible to the next Get - useful when the cache
// must behave deterministically within one request.
type BigCache struct {
	c *bigcache.BigCache
}

var _ Store = (*BigCache)(nil)

// NewBigCache creates a BigCache-backed Store. life bounds how long local
// entries may serve before bigcache evicts them; 0 uses 10 minutes.
func NewBigCache(life time.Duration) (*BigCache, error) {
	if life <= 0 {
		life = 10 * time.Minute
	}
	c, err := bigcache.New(context.Background(), bigcache.DefaultConfig(life))
	if err != nil {
		return nil, err
	}
	return &BigCache{c: c}, nil
}

func (s *BigCache) Get(key string) ([]byte, bool) {
	v, err := s.c.Get(key)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (s *BigCache) Set(key string, value []byte) {
	// bigcache refuses entries larger than a shard; treat as not cached
	_ = s.c.Set(key, value)
}

func (s *BigCache) Del(key string) {
	// ErrEntryNotFound included; local deletes are best effort
	_ = s.c.Delete(key)
}

func (s *BigCache) Reset() {
	_ = s.c.Reset()
}

func (s *BigCache) Close() error { return s.c.Close() }
