// Package tagcache implements a tag-aware caching layer over a remote
// key-value store. Items carry zero or more tags; bumping a tag's version
// counter invalidates every item stored under it without enumerating keys,
// because the storage key is derived from the item id plus the live version
// of each attached tag.
//
// Components:
//   - remote.Store: the key-value backend (e.g. Redis, memcached, in-process).
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//   - local.Store: in-process memoization of remote reads; best effort only.
//   - tag versions: per-tag counters held in the remote store and mirrored
//     locally for the client's lifetime.
//
// Keys:
//
//	[<env>:]item:<ns>:<digest>  - cached items
//	[<env>:]tag:<ns>:<tag>      - tag version counters
//
// Invalidation pattern:
//
//	_ = cache.Set(ctx, "user:42", u, []string{"users", "org_7"}, 0)
//	_ = cache.ClearTags(ctx, []string{"org_7"}, false) // all org_7 items now miss
//
// Invalidation is not atomic across tags, and entries orphaned under old
// versions are left to the backend's own expiry.
package tagcache
