// internal/scanner/dependents.go
package scanner

import (
	"context"
	"path/filepath"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/model"
)

// ResolveDependents follows the dependent-root suggestions of confirmed roots
// until no new roots appear and returns only the newly found ones. Candidates
// are tested by the checker of the suggesting root's kind. Directories already
// classified in state are never re-tested, which also breaks suggestion
// cycles.
func (s *Scanner) ResolveDependents(ctx context.Context, confirmed []model.Root, state *State) []model.Root {
	state.AddRoots(confirmed...)

	queue := append([]model.Root(nil), confirmed...)
	var found []model.Root
	for len(queue) > 0 {
		if ctx.Err() != nil {
			return found
		}
		r := queue[0]
		queue = queue[1:]

		c, ok := s.byKind[r.Kind]
		if !ok {
			continue
		}
		candidates, err := checker.SafeDependentRoots(c, s.fsys, r.Path)
		if err != nil {
			s.logger.Warn("dependent roots failed", "kind", r.Kind, "root", r.Path, "err", err)
			continue
		}

		for _, cand := range candidates {
			cand = filepath.Clean(cand)
			if state.Visit(cand) != NotVisited {
				continue
			}
			if !s.acceptDependent(c, r.Path, cand) {
				state.Mark(cand, false)
				continue
			}
			dep := model.NewRoot(r.Kind, cand)
			state.AddRoots(dep)
			found = append(found, dep)
			queue = append(queue, dep)
		}
	}
	return found
}

func (s *Scanner) acceptDependent(c checker.RootChecker, root, cand string) bool {
	ok, err := checker.SafeIsRoot(c, s.fsys, cand)
	if err != nil {
		s.logger.Warn("root check failed", "kind", c.Kind(), "dir", cand, "err", err)
		return false
	}
	if !ok {
		return false
	}
	ignored, err := checker.SafeIsIgnored(c, s.fsys, root, cand)
	if err != nil {
		s.logger.Warn("ignore check failed", "kind", c.Kind(), "root", root, "dir", cand, "err", err)
		return true
	}
	return !ignored
}
