package tagcache

import (
	"sort"
	"strings"
)

// NormalizeTags canonicalizes raw tag strings: lowercase, strip every
// character outside [a-z0-9_], drop empties, deduplicate. The result is
// sorted so it can be compared and iterated deterministically. Malformed
// tags are dropped silently - normalization never fails.
func NormalizeTags(raw []string) []string {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		t := sanitizeTag(r)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

// sanitizeTag lowercases one tag and strips disallowed characters.
func sanitizeTag(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range strings.ToLower(raw) {
		switch {
		case c >= 'a' && c <= 'z',
			c >= '0' && c <= '9',
			c == '_':
			b.WriteRune(c)
		}
	}
	return b.String()
}
