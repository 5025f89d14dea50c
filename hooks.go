package tagcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Tag versions were absent locally and fetched from the remote store.
	// missed is the number of tags in the batched fetch.
	TagVersionFetch(namespace string, missed int)

	// Previously-unseen tags were minted at version 0 (remote + local).
	TagVersionInit(namespace string, tags int)

	// The batched version-0 initialization write failed. The resolve call
	// aborts with VersionInitError; two processes could otherwise disagree
	// about a tag's baseline.
	TagInitFailed(namespace string, tags int, err error)

	// ClearTags hit a tag with no remote counter and initialization was not
	// requested. Nothing was changed, locally or remotely.
	TagBumpMissing(tag string)

	// A batch read or write failed at the transport level.
	// op ∈ {"get_multi", "set_multi"}
	BatchFailed(op string, items int, err error)

	// The local version mirror and value cache were reset.
	LocalCachesReset(namespace string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) TagVersionFetch(string, int)      {}
func (NopHooks) TagVersionInit(string, int)       {}
func (NopHooks) TagInitFailed(string, int, error) {}
func (NopHooks) TagBumpMissing(string)            {}
func (NopHooks) BatchFailed(string, int, error)   {}
func (NopHooks) LocalCachesReset(string)          {}
