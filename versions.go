package tagcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/unkn0wn-root/tagcache/internal/keys"
	"github.com/unkn0wn-root/tagcache/remote"
)

// tagVersions resolves per-tag version counters. The remote store is the
// source of truth; the in-process mirror is a read-through, write-through
// cache with no independent authority. Mirror entries live until
// ResetLocalCaches - there is no eviction.
type tagVersions struct {
	env string
	ns  string
	rs  remote.Store
	log Logger
	hk  Hooks

	mu sync.RWMutex
	m  map[string]uint64 // tag -> version
}

func newTagVersions(env, ns string, rs remote.Store, log Logger, hk Hooks) *tagVersions {
	return &tagVersions{
		env: env,
		ns:  ns,
		rs:  rs,
		log: log,
		hk:  hk,
		m:   make(map[string]uint64),
	}
}

// resolve returns the current version of every tag in tags (normalized).
// Versions absent from the mirror are fetched from the remote store in one
// batched read; tags unknown remotely are minted at version 0 with one
// batched write. A failed mint aborts the call with VersionInitError.
func (tv *tagVersions) resolve(ctx context.Context, tags []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(tags))

	var missed []string
	tv.mu.RLock()
	for _, t := range tags {
		if v, ok := tv.m[t]; ok {
			out[t] = v
		} else {
			missed = append(missed, t)
		}
	}
	tv.mu.RUnlock()

	if len(missed) == 0 {
		return out, nil
	}
	tv.hk.TagVersionFetch(tv.ns, len(missed))

	storageKey := make(map[string]string, len(missed))
	fetch := make([]string, 0, len(missed))
	for _, t := range missed {
		k := keys.Tag(tv.env, tv.ns, t)
		storageKey[t] = k
		fetch = append(fetch, k)
	}
	found, err := tv.rs.GetMulti(ctx, fetch)
	if err != nil {
		return nil, fmt.Errorf("tagcache: tag version fetch: %w", err)
	}

	var fresh []string
	mint := make(map[string][]byte)
	for _, t := range missed {
		raw, ok := found[storageKey[t]]
		if !ok {
			fresh = append(fresh, t)
			mint[storageKey[t]] = []byte("0")
			continue
		}
		v, perr := strconv.ParseUint(string(raw), 10, 64)
		if perr != nil {
			// corrupt counter; re-mint at 0 (self-heal)
			tv.log.Warn("corrupt tag version; re-minting", Fields{"tag": t, "raw": string(raw)})
			fresh = append(fresh, t)
			mint[storageKey[t]] = []byte("0")
			continue
		}
		out[t] = v
	}

	if len(fresh) > 0 {
		if err := tv.rs.SetMulti(ctx, mint, 0); err != nil {
			tv.hk.TagInitFailed(tv.ns, len(fresh), err)
			return nil, &VersionInitError{Tags: fresh, Err: err}
		}
		tv.hk.TagVersionInit(tv.ns, len(fresh))
		for _, t := range fresh {
			out[t] = 0
		}
	}

	tv.mu.Lock()
	for _, t := range missed {
		tv.m[t] = out[t]
	}
	tv.mu.Unlock()
	return out, nil
}

// bump advances one tag's remote counter and mirrors the new version.
// A tag with no remote counter is initialized to 0 when initialize is set
// (which invalidates nothing - no prior version existed); otherwise the
// call leaves both sides untouched so the mirror never runs ahead of the
// remote baseline.
func (tv *tagVersions) bump(ctx context.Context, tag string, initialize bool) error {
	k := keys.Tag(tv.env, tv.ns, tag)
	nv, err := tv.rs.Increment(ctx, k, 1)
	switch {
	case err == nil:
		tv.setLocal(tag, nv)
		tv.log.Debug("tag bumped", Fields{"tag": tag, "version": nv})
		return nil
	case errors.Is(err, remote.ErrNotFound):
		if !initialize {
			tv.hk.TagBumpMissing(tag)
			tv.log.Debug("bump on unknown tag skipped", Fields{"tag": tag})
			return nil
		}
		if serr := tv.rs.Set(ctx, k, []byte("0"), 0); serr != nil {
			return fmt.Errorf("tagcache: tag %q init: %w", tag, serr)
		}
		tv.setLocal(tag, 0)
		return nil
	default:
		return fmt.Errorf("tagcache: tag %q bump: %w", tag, err)
	}
}

func (tv *tagVersions) setLocal(tag string, v uint64) {
	tv.mu.Lock()
	tv.m[tag] = v
	tv.mu.Unlock()
}

func (tv *tagVersions) reset() {
	tv.mu.Lock()
	tv.m = make(map[string]uint64)
	tv.mu.Unlock()
}

// versionedNames folds tags and their resolved versions into the sorted
// name+version strings that feed key derivation. Sorting happens after the
// version suffix is appended so derivation is order-independent.
func versionedNames(tags []string, vers map[string]uint64) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t+strconv.FormatUint(vers[t], 10))
	}
	sort.Strings(names)
	return names
}
