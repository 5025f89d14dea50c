// Package local provides the in-process value cache used by tagcache to
// memoize remote reads within a client's lifetime. The remote store stays
// authoritative: every implementation here is best-effort and may drop or
// refuse entries without affecting correctness.
package local

import "sync"

// Store is a process-local byte cache keyed by derived storage key.
// Implementations must be safe for concurrent use. Operations are
// infallible by design - a local cache that cannot store an entry simply
// forgets it.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
	// Reset drops every entry unconditionally.
	Reset()
	Close() error
}

// Memory is the default Store: a mutex-guarded map with no bounds beyond
// the number of distinct keys ever touched. Suitable for request-scoped or
// short-lived clients; long-running processes with large keyspaces should
// prefer the bigcache or ristretto implementations.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{m: make(map[string][]byte)}
}

func (s *Memory) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

func (s *Memory) Set(key string, value []byte) {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
}

func (s *Memory) Del(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

func (s *Memory) Reset() {
	s.mu.Lock()
	s.m = make(map[string][]byte)
	s.mu.Unlock()
}

func (s *Memory) Close() error { return nil }
