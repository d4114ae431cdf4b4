package cache

// ScopedKeyer wraps a Keyer with a prefix so that several servers (or
// several tenants of one Redis) can share a backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "topochart:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls back
// to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the prefix prepended to every key.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(dataHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
