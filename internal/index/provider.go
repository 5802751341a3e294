package index

import (
	"sync/atomic"

	"github.com/fascase/fascase/internal/store"
)

// Provider hands the current index snapshot to the search engine. Swaps
// are atomic; readers holding an old snapshot keep a consistent view
// until they drop it.
type Provider struct {
	current atomic.Pointer[store.Index]
}

// NewProvider creates an empty provider. Snapshot returns nil until the
// first Set.
func NewProvider() *Provider {
	return &Provider{}
}

// Snapshot returns the current index, or nil when none is loaded.
func (p *Provider) Snapshot() *store.Index {
	return p.current.Load()
}

// Set replaces the current index.
func (p *Provider) Set(ix *store.Index) {
	p.current.Store(ix)
}
