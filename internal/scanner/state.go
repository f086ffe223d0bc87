// internal/scanner/state.go
package scanner

import (
	"path/filepath"

	"github.com/jackchuka/rootscan/internal/model"
)

// Visit classifies a directory within one scan.
type Visit uint8

const (
	NotVisited Visit = iota
	VisitedRoot
	VisitedNotRoot
)

// State is the scan-scoped bookkeeping shared by the downward, upward and
// dependent passes of one detection run. It is not safe for concurrent use.
type State struct {
	visits map[string]Visit
	skip   map[string]struct{}
	roots  *model.RootSet
}

func NewState() *State {
	return &State{
		visits: make(map[string]Visit),
		skip:   make(map[string]struct{}),
		roots:  model.NewRootSet(),
	}
}

// Visit returns the classification recorded for dir.
func (s *State) Visit(dir string) Visit {
	return s.visits[filepath.Clean(dir)]
}

// Mark records the classification of dir.
func (s *State) Mark(dir string, isRoot bool) {
	v := VisitedNotRoot
	if isRoot {
		v = VisitedRoot
	}
	s.visits[filepath.Clean(dir)] = v
}

// Skip adds dir to the skip set. Downward scans do not enter it and upward
// scans stop when they reach it.
func (s *State) Skip(dir string) {
	s.skip[filepath.Clean(dir)] = struct{}{}
}

func (s *State) Skipped(dir string) bool {
	_, ok := s.skip[filepath.Clean(dir)]
	return ok
}

// AddRoots records roots as known for ignore checks and marks their
// directories as roots.
func (s *State) AddRoots(roots ...model.Root) {
	for _, r := range roots {
		s.roots.Add(r)
		s.Mark(r.Path, true)
	}
}

// Roots returns the roots known so far, in discovery order.
func (s *State) Roots() []model.Root {
	return s.roots.Slice()
}

// Visited returns the number of classified directories.
func (s *State) Visited() int {
	return len(s.visits)
}
