// internal/model/root.go
package model

import (
	"path/filepath"
	"sort"
)

// Kind names a supported version-control system.
type Kind string

const (
	KindGit Kind = "Git"
	KindHg  Kind = "Hg"
	KindSvn Kind = "Svn"
)

// Root is a directory recognized as the top of a working copy for one VCS kind.
// A directory may be a root for several kinds at once; those are distinct Roots.
type Root struct {
	Kind Kind   `yaml:"kind"`
	Path string `yaml:"path"` // Absolute, cleaned directory path
}

func NewRoot(kind Kind, path string) Root {
	return Root{Kind: kind, Path: filepath.Clean(path)}
}

func (r Root) DisplayName() string {
	return filepath.Base(r.Path)
}

func (r Root) String() string {
	return string(r.Kind) + ":" + r.Path
}

// Contains reports whether dir is r.Path or lies beneath it.
func (r Root) Contains(dir string) bool {
	return IsAncestor(r.Path, dir)
}

// IsAncestor reports whether dir equals ancestor or is nested inside it.
func IsAncestor(ancestor, dir string) bool {
	ancestor = filepath.Clean(ancestor)
	dir = filepath.Clean(dir)
	if ancestor == dir {
		return true
	}
	rel, err := filepath.Rel(ancestor, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !hasDotDotPrefix(rel) && !filepath.IsAbs(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && rel[2] == filepath.Separator
}

// SortRoots orders roots by path, then kind.
func SortRoots(roots []Root) {
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].Path != roots[j].Path {
			return roots[i].Path < roots[j].Path
		}
		return roots[i].Kind < roots[j].Kind
	})
}

// RootSet is an insertion-ordered set of roots.
type RootSet struct {
	order []Root
	index map[Root]struct{}
}

func NewRootSet(roots ...Root) *RootSet {
	s := &RootSet{index: make(map[Root]struct{}, len(roots))}
	s.Add(roots...)
	return s
}

// Add inserts roots not already present and returns how many were new.
func (s *RootSet) Add(roots ...Root) int {
	added := 0
	for _, r := range roots {
		if _, ok := s.index[r]; ok {
			continue
		}
		s.index[r] = struct{}{}
		s.order = append(s.order, r)
		added++
	}
	return added
}

func (s *RootSet) Has(r Root) bool {
	_, ok := s.index[r]
	return ok
}

// Slice returns a copy of the members in insertion order.
func (s *RootSet) Slice() []Root {
	out := make([]Root, len(s.order))
	copy(out, s.order)
	return out
}

// Sorted returns a copy of the members ordered by SortRoots.
func (s *RootSet) Sorted() []Root {
	out := s.Slice()
	SortRoots(out)
	return out
}
