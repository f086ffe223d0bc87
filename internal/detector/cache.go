package detector

import (
	"slices"
	"sync"

	"github.com/jackchuka/rootscan/internal/model"
)

// CachedRoot is a root as remembered between scans: a kind name and a path,
// with no tie to a live checker.
type CachedRoot struct {
	Kind model.Kind
	Path string
}

// Cache holds the result of the last completed full detection.
type Cache struct {
	mu    sync.Mutex
	roots []CachedRoot
	valid bool
}

// Get returns a copy of the cached roots and whether a result exists.
func (c *Cache) Get() ([]CachedRoot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.roots), c.valid
}

func (c *Cache) Replace(roots []model.Root) {
	cached := make([]CachedRoot, len(roots))
	for i, r := range roots {
		cached[i] = CachedRoot{Kind: r.Kind, Path: r.Path}
	}

	c.mu.Lock()
	c.roots = cached
	c.valid = true
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.roots = nil
	c.valid = false
	c.mu.Unlock()
}
