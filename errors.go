package tagcache

import (
	"fmt"
	"strings"
)

// VersionInitError reports a failed version-0 initialization write for
// newly-seen tags. It aborts the whole key-derivation call: returning a key
// derived from an unpersisted baseline would let two processes silently
// disagree about a tag's version.
type VersionInitError struct {
	Tags []string
	Err  error
}

func (e *VersionInitError) Error() string {
	return fmt.Sprintf("tagcache: version init for tags [%s] failed: %v",
		strings.Join(e.Tags, ", "), e.Err)
}

func (e *VersionInitError) Unwrap() error { return e.Err }
