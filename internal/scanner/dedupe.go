// internal/scanner/dedupe.go
package scanner

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

type claim struct {
	kind model.Kind
	path string
}

// Dedupe collapses roots that resolve to the same canonical directory for the
// same kind. Roots whose path is already canonical always survive; symlinked
// ones are considered in path order and kept only if their canonical location
// is still unclaimed. The result is sorted.
func (s *Scanner) Dedupe(roots []model.Root) []model.Root {
	if len(roots) <= 1 {
		return slices.Clone(roots)
	}

	claimed := make(map[claim]struct{}, len(roots))
	kept := make([]model.Root, 0, len(roots))
	type aliased struct {
		root      model.Root
		canonical string
	}
	var links []aliased

	for _, r := range roots {
		canonical := vfs.Canonical(s.fsys, r.Path)
		if canonical == r.Path {
			claimed[claim{r.Kind, canonical}] = struct{}{}
			kept = append(kept, r)
			continue
		}
		links = append(links, aliased{root: r, canonical: canonical})
	}

	slices.SortFunc(links, func(a, b aliased) int {
		return compareRoots(a.root, b.root)
	})
	for _, l := range links {
		key := claim{l.root.Kind, l.canonical}
		if _, dup := claimed[key]; dup {
			s.logger.Debug("dropping duplicate root", "root", l.root.Path, "canonical", l.canonical, "kind", l.root.Kind)
			continue
		}
		claimed[key] = struct{}{}
		kept = append(kept, l.root)
	}

	model.SortRoots(kept)
	return kept
}

func compareRoots(a, b model.Root) int {
	return cmp.Or(
		strings.Compare(a.Path, b.Path),
		strings.Compare(string(a.Kind), string(b.Kind)),
	)
}
