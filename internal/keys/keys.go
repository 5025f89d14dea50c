package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns a 128-bit hex digest of the input parts. sha256 truncated
// to 16 bytes keeps keys short enough for memcached's 250-byte key limit
// while staying collision-free in practice.
func Digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Item builds the storage key for a cached item digest.
// Layout: [<env>:]item:<ns>:<digest>
func Item(env, ns, digest string) string {
	return join(env, "item:"+ns+":"+digest)
}

// Tag builds the storage key holding a tag's version counter.
// Layout: [<env>:]tag:<ns>:<tag>
func Tag(env, ns, tag string) string {
	return join(env, "tag:"+ns+":"+tag)
}

func join(env, rest string) string {
	if env == "" {
		return rest
	}
	var b strings.Builder
	b.Grow(len(env) + 1 + len(rest))
	b.WriteString(env)
	b.WriteByte(':')
	b.WriteString(rest)
	return b.String()
}
