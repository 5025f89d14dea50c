package tagcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/tagcache/codec"
	lc "github.com/unkn0wn-root/tagcache/local"
	rs "github.com/unkn0wn-root/tagcache/remote"
)

// LoadFunc computes a value on a confirmed cache miss. The result is stored
// under the derived key and returned to the caller.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// Cache is the tag-aware caching API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
//
// Tags group entries for invalidation: every write folds the current
// version of each attached tag into the storage key, and ClearTags bumps
// those versions, instantly orphaning everything stored under the old ones.
// Callers never enumerate keys to invalidate a tag.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Single
	Get(ctx context.Context, id string, tags []string) (v V, ok bool, err error)
	Set(ctx context.Context, id string, value V, tags []string, ttl time.Duration) error
	Delete(ctx context.Context, id string, tags []string) error
	Increment(ctx context.Context, id string, tags []string, delta uint64) (uint64, error)
	Decrement(ctx context.Context, id string, tags []string, delta uint64) (uint64, error)

	// Remember is read-through Get: on a miss, load computes the value,
	// which is stored with the given TTL and returned.
	Remember(ctx context.Context, id string, tags []string, ttl time.Duration, load LoadFunc[V]) (V, error)

	// Batch (one remote round-trip each; a transport failure fails the
	// whole call rather than returning partial results)
	GetMulti(ctx context.Context, items []Item) (map[string]Slot[V], error)
	SetMulti(ctx context.Context, items []SetItem[V], ttl time.Duration) error

	// Tag control
	ClearTags(ctx context.Context, tags []string, initializeMissing bool) error

	// ResetLocalCaches drops the tag-version mirror and the local value
	// cache. The remote store is untouched; subsequent resolutions
	// recompute the same versions from it.
	ResetLocalCaches()

	// DeriveKey exposes the derived storage key for diagnostics. It may
	// resolve tag versions remotely.
	DeriveKey(ctx context.Context, id string, tags []string) (string, error)
}

// Options tune the behavior of the cache client.
// Only Namespace, Remote and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "user", "profile", "order"
	Remote    rs.Store
	Codec     c.Codec[V]

	// Environment partitions keys between deployments sharing one remote
	// store (e.g. "staging", "prod"). Empty disables the prefix. It is
	// applied to every derived key, tagged or not, and to tag counters.
	Environment string

	Logger   Logger   // if nil, NopLogger is used
	Hooks    Hooks    // if nil, NopHooks is used
	Local    lc.Store // local value cache; nil => local.NewMemory()
	Disabled bool     // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
