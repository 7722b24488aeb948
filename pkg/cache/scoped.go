package cache

// ScopedKeyer prefixes every key of an inner Keyer. Use it to give each
// event or tenant its own namespace in a shared Redis:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "event:summer-fest:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// AssetKey returns the prefixed asset key.
func (k *ScopedKeyer) AssetKey(source string) string {
	return k.prefix + k.inner.AssetKey(source)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(configHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(configHash, opts)
}
