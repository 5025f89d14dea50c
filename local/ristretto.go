package local

import (
	"github.com/dgraph-io/ristretto"
)

// Ristretto wraps dgraph-io/ristretto as a cost-aware local value cache.
// Sets are admitted asynchronously and may be dropped by the admission
// policy; a dropped entry is just a future remote read.
type Ristretto struct {
	c *ristretto.Cache
}

var _ Store = (*Ristretto)(nil)

// NewRistretto creates a ristretto-backed Store bounded by maxBytes of
// cached value payload. maxBytes <= 0 uses 64 MiB.
func NewRistretto(maxBytes int64) (*Ristretto, error) {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxBytes / 64 * 10, // ~10x expected entries
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (s *Ristretto) Get(key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (s *Ristretto) Set(key string, value []byte) {
	s.c.Set(key, value, int64(len(value)))
}

func (s *Ristretto) Del(key string) {
	s.c.Del(key)
}

func (s *Ristretto) Reset() {
	s.c.Clear()
}

func (s *Ristretto) Close() error {
	s.c.Close()
	return nil
}

// Wait blocks until buffered writes have been applied. Intended for tests
// and warmup paths that need read-your-write visibility.
func (s *Ristretto) Wait() { s.c.Wait() }
