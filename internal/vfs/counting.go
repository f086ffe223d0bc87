package vfs

import (
	"io/fs"
	"path/filepath"
	"sync"
)

// Counting wraps an FS and records how many times each directory was listed.
// Scanners list a directory exactly once per visit, so the count doubles as a
// visit counter.
type Counting struct {
	FS

	mu    sync.Mutex
	lists map[string]int
}

func NewCounting(fsys FS) *Counting {
	return &Counting{FS: fsys, lists: make(map[string]int)}
}

func (c *Counting) ReadDir(name string) ([]fs.DirEntry, error) {
	c.mu.Lock()
	c.lists[filepath.Clean(name)]++
	c.mu.Unlock()
	return c.FS.ReadDir(name)
}

// Visits returns how many times dir was listed.
func (c *Counting) Visits(dir string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lists[filepath.Clean(dir)]
}

// VisitsUnder sums the listings of dir and every directory beneath it.
func (c *Counting) VisitsUnder(dir string) map[string]int {
	dir = filepath.Clean(dir)
	prefix := dir + string(filepath.Separator)

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int)
	for p, n := range c.lists {
		if p == dir || len(p) > len(prefix) && p[:len(prefix)] == prefix {
			out[p] = n
		}
	}
	return out
}
