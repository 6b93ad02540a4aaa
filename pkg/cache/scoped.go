package cache

// ScopedKeyer wraps a Keyer with a prefix so several diagrams or tenants
// can share one backend without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "diagram:d42:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SolutionKey implements Keyer.
func (k *ScopedKeyer) SolutionKey(snapshotHash string, opts SolutionKeyOpts) string {
	return k.prefix + k.inner.SolutionKey(snapshotHash, opts)
}

// MetricsKey implements Keyer.
func (k *ScopedKeyer) MetricsKey(snapshotHash string) string {
	return k.prefix + k.inner.MetricsKey(snapshotHash)
}
