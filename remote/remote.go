// Package remote defines the backend key-value abstraction used by tagcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). Counter operations (Increment,
// Decrement) act on values stored as ASCII decimal; tagcache relies on this
// for its per-tag version counters.
//
// Important: the keyspaces "item:<ns>:" and "tag:<ns>:" are owned by tagcache.
// External code MUST NOT write values under these prefixes.
package remote

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a counter operation against an absent key. It is the
// only error a Store may return that callers are expected to branch on;
// check it with errors.Is.
var ErrNotFound = errors.New("remote: key not found")

// Store is a minimal remote key-value backend with TTLs and atomic counters.
// Implementations must be safe for concurrent use. A ttl of 0 means no
// expiration.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Increment atomically adds delta to the ASCII-decimal value stored at
	// key and returns the new value. Returns ErrNotFound when the key is
	// absent; the store never creates it implicitly.
	Increment(ctx context.Context, key string, delta uint64) (uint64, error)

	// Decrement atomically subtracts delta, flooring at zero. Returns
	// ErrNotFound when the key is absent.
	Decrement(ctx context.Context, key string, delta uint64) (uint64, error)

	// GetMulti fetches many keys in one round-trip. Absent keys are omitted
	// from the result; a transport failure fails the whole call.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMulti stores many entries in one round-trip with a shared TTL.
	SetMulti(ctx context.Context, items map[string][]byte, ttl time.Duration) error

	// Close releases resources.
	Close(ctx context.Context) error
}
