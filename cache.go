package tagcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cd "github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/internal/keys"
	lc "github.com/unkn0wn-root/tagcache/local"
	rs "github.com/unkn0wn-root/tagcache/remote"
)

type cache[V any] struct {
	ns      string
	env     string
	remote  rs.Store
	codec   cd.Codec[V]
	log     Logger
	hk      Hooks
	local   lc.Store
	vers    *tagVersions
	enabled bool
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Remote == nil {
		return nil, fmt.Errorf("tagcache: remote store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("tagcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("tagcache: namespace is required")
	}

	c := &cache[V]{
		ns:      opts.Namespace,
		env:     opts.Environment,
		remote:  opts.Remote,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hk = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Local != nil {
		c.local = opts.Local
	} else {
		c.local = lc.NewMemory()
	}
	c.vers = newTagVersions(c.env, c.ns, c.remote, c.log, c.hk)
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	// Release the local cache first (best effort)
	if c.local != nil {
		_ = c.local.Close()
	}
	if c.remote != nil {
		return c.remote.Close(ctx)
	}
	return nil
}

func (c *cache[V]) Get(ctx context.Context, id string, tags []string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k, err := c.deriveKey(ctx, id, NormalizeTags(tags))
	if err != nil {
		return zero, false, err
	}
	if raw, ok := c.local.Get(k); ok {
		if v, derr := c.codec.Decode(raw); derr == nil {
			return v, true, nil
		}
		c.local.Del(k) // self-heal corrupt local entry
	}
	raw, ok, err := c.remote.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	v, derr := c.codec.Decode(raw)
	if derr != nil {
		_ = c.remote.Delete(ctx, k) // self-heal
		return zero, false, nil
	}
	c.local.Set(k, raw)
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, id string, value V, tags []string, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	k, err := c.deriveKey(ctx, id, NormalizeTags(tags))
	if err != nil {
		return err
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	// drop the local entry before the remote write so a failed write never
	// leaves a stale memo behind
	c.local.Del(k)
	if err := c.remote.Set(ctx, k, payload, ttl); err != nil {
		return err
	}
	c.local.Set(k, payload)
	return nil
}

func (c *cache[V]) Delete(ctx context.Context, id string, tags []string) error {
	if !c.enabled {
		return nil
	}
	k, err := c.deriveKey(ctx, id, NormalizeTags(tags))
	if err != nil {
		return err
	}
	c.local.Del(k)
	return c.remote.Delete(ctx, k)
}

func (c *cache[V]) Increment(ctx context.Context, id string, tags []string, delta uint64) (uint64, error) {
	if !c.enabled {
		return 0, nil
	}
	k, err := c.deriveKey(ctx, id, NormalizeTags(tags))
	if err != nil {
		return 0, err
	}
	// post-increment value is unknown locally without a round-trip
	c.local.Del(k)
	return c.remote.Increment(ctx, k, delta)
}

func (c *cache[V]) Decrement(ctx context.Context, id string, tags []string, delta uint64) (uint64, error) {
	if !c.enabled {
		return 0, nil
	}
	k, err := c.deriveKey(ctx, id, NormalizeTags(tags))
	if err != nil {
		return 0, err
	}
	c.local.Del(k)
	return c.remote.Decrement(ctx, k, delta)
}

func (c *cache[V]) Remember(ctx context.Context, id string, tags []string, ttl time.Duration, load LoadFunc[V]) (V, error) {
	v, ok, err := c.Get(ctx, id, tags)
	if err != nil || ok {
		return v, err
	}
	v, err = load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	// best effort: a failed store still returns the computed value
	if serr := c.Set(ctx, id, v, tags, ttl); serr != nil {
		c.log.Warn("remember: store after load failed", Fields{"id": id, "err": serr})
	}
	return v, nil
}

func (c *cache[V]) ClearTags(ctx context.Context, tags []string, initializeMissing bool) error {
	if !c.enabled {
		return nil
	}
	var errs []error
	for _, t := range NormalizeTags(tags) {
		if err := c.vers.bump(ctx, t, initializeMissing); err != nil {
			errs = append(errs, err)
		}
	}
	// bumps are independent remote operations; one failing does not undo
	// the others
	return errors.Join(errs...)
}

func (c *cache[V]) ResetLocalCaches() {
	c.vers.reset()
	c.local.Reset()
	c.hk.LocalCachesReset(c.ns)
	c.log.Debug("local caches reset", Fields{"ns": c.ns})
}

func (c *cache[V]) DeriveKey(ctx context.Context, id string, tags []string) (string, error) {
	return c.deriveKey(ctx, id, NormalizeTags(tags))
}

// deriveKey folds an id and its normalized tags into the storage key.
// The same id with the same tag set (any order, any case) derives the same
// key until one of the tags is bumped.
func (c *cache[V]) deriveKey(ctx context.Context, id string, norm []string) (string, error) {
	if len(norm) == 0 {
		return keys.Item(c.env, c.ns, keys.Digest(id)), nil
	}
	vers, err := c.vers.resolve(ctx, norm)
	if err != nil {
		return "", err
	}
	names := versionedNames(norm, vers)
	return keys.Item(c.env, c.ns, keys.Digest(id, strings.Join(names, ""))), nil
}
