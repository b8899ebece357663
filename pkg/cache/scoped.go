package cache

// ScopedKeyer wraps a Keyer with a prefix so several datasets can share one
// cache backend without collisions.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "andalucia-2025:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(tableHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(tableHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphKey, opts)
}
