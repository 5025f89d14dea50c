package tagcache

import (
	"context"
	"fmt"
	"time"
)

// Item identifies one logical entry in a batch read. Ids need not be
// unique - identity comes from id plus tag set.
type Item struct {
	ID   string
	Tags []string
}

// SetItem carries one entry of a batch write.
type SetItem[V any] struct {
	ID    string
	Tags  []string
	Value V
}

// Result echoes one submitted item with its normalized tags, derived key
// and outcome. Found is false for entries absent from the remote store.
type Result[V any] struct {
	ID    string
	Tags  []string
	Key   string
	Value V
	Found bool
}

// Slot is the per-id entry of a GetMulti response: either exactly one
// Result, or - when the same id was submitted under several tag sets - an
// ordered sequence of them. Callers branch on Overloaded/Single instead of
// sniffing the shape of the value.
type Slot[V any] struct {
	results []Result[V]
}

// Overloaded reports whether the id was submitted more than once.
func (s Slot[V]) Overloaded() bool { return len(s.results) > 1 }

// Single returns the sole result, or ok=false when the slot is overloaded.
func (s Slot[V]) Single() (Result[V], bool) {
	if len(s.results) == 1 {
		return s.results[0], true
	}
	var zero Result[V]
	return zero, false
}

// All returns every result for the id in submission order.
func (s Slot[V]) All() []Result[V] { return s.results }

func (c *cache[V]) GetMulti(ctx context.Context, items []Item) (map[string]Slot[V], error) {
	out := make(map[string]Slot[V], len(items))
	if len(items) == 0 {
		return out, nil
	}
	if !c.enabled {
		for _, it := range items {
			slot := out[it.ID]
			slot.results = append(slot.results, Result[V]{ID: it.ID, Tags: NormalizeTags(it.Tags)})
			out[it.ID] = slot
		}
		return out, nil
	}

	// derive every key up front, preserving submission order; identical
	// id+tag-set pairs collapse onto one fetched key by construction
	type derived struct {
		id   string
		tags []string
		key  string
	}
	ds := make([]derived, len(items))
	distinct := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		norm := NormalizeTags(it.Tags)
		k, err := c.deriveKey(ctx, it.ID, norm)
		if err != nil {
			return nil, err
		}
		ds[i] = derived{id: it.ID, tags: norm, key: k}
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			distinct = append(distinct, k)
		}
	}

	found, err := c.remote.GetMulti(ctx, distinct)
	if err != nil {
		c.hk.BatchFailed("get_multi", len(items), err)
		return nil, fmt.Errorf("tagcache: get multi: %w", err)
	}

	for _, d := range ds {
		r := Result[V]{ID: d.id, Tags: d.tags, Key: d.key}
		if raw, ok := found[d.key]; ok {
			if v, derr := c.codec.Decode(raw); derr == nil {
				r.Value, r.Found = v, true
				// opportunistic local warmup
				c.local.Set(d.key, raw)
			}
		}
		slot := out[d.id]
		slot.results = append(slot.results, r)
		out[d.id] = slot
	}
	return out, nil
}

func (c *cache[V]) SetMulti(ctx context.Context, items []SetItem[V], ttl time.Duration) error {
	if !c.enabled || len(items) == 0 {
		return nil
	}
	flat := make(map[string][]byte, len(items))
	for _, it := range items {
		k, err := c.deriveKey(ctx, it.ID, NormalizeTags(it.Tags))
		if err != nil {
			return err
		}
		payload, err := c.codec.Encode(it.Value)
		if err != nil {
			return err
		}
		c.local.Del(k)
		flat[k] = payload
	}
	if err := c.remote.SetMulti(ctx, flat, ttl); err != nil {
		c.hk.BatchFailed("set_multi", len(items), err)
		return fmt.Errorf("tagcache: set multi: %w", err)
	}
	for k, payload := range flat {
		c.local.Set(k, payload)
	}
	return nil
}
