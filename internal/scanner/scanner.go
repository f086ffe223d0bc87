// Package scanner implements the passes of a root detection run: the bounded
// downward walk, the nearest-root upward walk, dependent-root resolution and
// symlink deduplication.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

type Options struct {
	// IgnoreName skips any directory whose bare name matches, along with its
	// subtree. The starting directory of a downward scan is exempt.
	IgnoreName *regexp.Regexp
	// UpwardExcludes are absolute directories that upward scans never examine,
	// together with every ancestor of them.
	UpwardExcludes []string
}

// Scanner runs the individual scan passes against one checker snapshot.
type Scanner struct {
	fsys     vfs.FS
	checkers []checker.RootChecker
	byKind   map[model.Kind]checker.RootChecker
	markers  map[string]struct{}
	opts     Options
	logger   *log.Logger
}

func New(fsys vfs.FS, checkers []checker.RootChecker, opts Options, logger *log.Logger) *Scanner {
	markers := make(map[string]struct{}, len(checkers))
	for _, c := range checkers {
		markers[c.MarkerName()] = struct{}{}
	}
	excludes := make([]string, 0, len(opts.UpwardExcludes))
	for _, p := range opts.UpwardExcludes {
		excludes = append(excludes, filepath.Clean(p))
	}
	opts.UpwardExcludes = excludes

	return &Scanner{
		fsys:     fsys,
		checkers: slices.Clone(checkers),
		byKind:   checker.ByKind(checkers),
		markers:  markers,
		opts:     opts,
		logger:   logger,
	}
}

type frame struct {
	dir   string
	depth int
}

// ScanDown walks root and its descendants down to depthLimit, where root is
// depth 0, and returns every root found. Directories in the state's skip set
// are not entered. On cancellation the roots found so far are returned.
func (s *Scanner) ScanDown(ctx context.Context, root string, state *State, depthLimit int) []model.Root {
	root = filepath.Clean(root)
	stack := []frame{{dir: root}}
	var found []model.Root

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			s.logger.Debug("downward scan cancelled", "root", root, "found", len(found))
			return found
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if state.Skipped(f.dir) {
			continue
		}
		if f.depth > 0 && s.ignoredName(f.dir) {
			continue
		}
		if s.ignoredByRoots(state.Roots(), f.dir) {
			continue
		}
		if !s.fsys.IsLocal(f.dir) {
			s.logger.Debug("skipping non-local directory", "dir", f.dir)
			continue
		}

		kinds := s.matchKinds(f.dir)
		state.Mark(f.dir, len(kinds) > 0)
		for _, k := range kinds {
			r := model.NewRoot(k, f.dir)
			found = append(found, r)
			state.AddRoots(r)
		}

		if f.depth >= depthLimit {
			continue
		}

		entries, err := s.fsys.ReadDir(f.dir)
		if err != nil {
			s.logger.Debug("cannot read directory", "dir", f.dir, "err", err)
			continue
		}
		// Pushed in reverse so siblings pop in name order.
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			if !e.IsDir() || e.Type()&fs.ModeSymlink != 0 {
				continue
			}
			if _, ok := s.markers[e.Name()]; ok {
				continue
			}
			stack = append(stack, frame{dir: filepath.Join(f.dir, e.Name()), depth: f.depth + 1})
		}
	}
	return found
}

// ScanUp walks from start toward the filesystem root and returns the roots of
// the nearest directory any checker accepts. It begins at start when start is
// an unclassified directory, otherwise at its parent, and stops at skip-set
// entries, classified directories and upward excludes.
func (s *Scanner) ScanUp(ctx context.Context, start string, state *State, known []model.Root) []model.Root {
	start = filepath.Clean(start)
	if s.upwardExcluded(start) {
		return nil
	}
	if s.ignoredByRoots(append(slices.Clone(known), state.Roots()...), start) {
		return nil
	}

	dir := start
	if state.Visit(start) != NotVisited || !vfs.IsDir(s.fsys, start) {
		parent, ok := vfs.Parent(start)
		if !ok {
			return nil
		}
		dir = parent
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if state.Skipped(dir) || state.Visit(dir) != NotVisited || s.upwardExcluded(dir) {
			return nil
		}

		kinds := s.matchKinds(dir)
		state.Mark(dir, len(kinds) > 0)
		if len(kinds) > 0 {
			found := make([]model.Root, 0, len(kinds))
			for _, k := range kinds {
				found = append(found, model.NewRoot(k, dir))
			}
			state.AddRoots(found...)
			return found
		}

		parent, ok := vfs.Parent(dir)
		if !ok {
			return nil
		}
		dir = parent
	}
}

// Confirm returns the roots whose own kind's checker still accepts them.
// Roots of a kind with no checker are dropped.
func (s *Scanner) Confirm(ctx context.Context, roots []model.Root) []model.Root {
	var confirmed []model.Root
	for _, r := range roots {
		if ctx.Err() != nil {
			return confirmed
		}
		c, ok := s.byKind[r.Kind]
		if !ok {
			s.logger.Debug("no checker for registered root", "kind", r.Kind, "path", r.Path)
			continue
		}
		ok, err := checker.SafeIsRoot(c, s.fsys, r.Path)
		if err != nil {
			s.logger.Warn("root check failed", "kind", r.Kind, "dir", r.Path, "err", err)
			continue
		}
		if !ok {
			s.logger.Debug("registered root no longer a root", "kind", r.Kind, "path", r.Path)
			continue
		}
		confirmed = append(confirmed, r)
	}
	return confirmed
}

// matchKinds asks every checker whether dir is a root. A failing checker
// counts as "no" for this directory only.
func (s *Scanner) matchKinds(dir string) []model.Kind {
	var kinds []model.Kind
	for _, c := range s.checkers {
		ok, err := checker.SafeIsRoot(c, s.fsys, dir)
		if err != nil {
			s.logger.Warn("root check failed", "kind", c.Kind(), "dir", dir, "err", err)
			continue
		}
		if ok {
			kinds = append(kinds, c.Kind())
		}
	}
	return kinds
}

func (s *Scanner) ignoredName(dir string) bool {
	return s.opts.IgnoreName != nil && s.opts.IgnoreName.MatchString(filepath.Base(dir))
}

// ignoredByRoots reports whether dir sits in a subtree ignored by the checker
// of any enclosing root.
func (s *Scanner) ignoredByRoots(roots []model.Root, dir string) bool {
	for _, r := range roots {
		if r.Path == dir || !r.Contains(dir) {
			continue
		}
		c, ok := s.byKind[r.Kind]
		if !ok {
			continue
		}
		ignored, err := checker.SafeIsIgnored(c, s.fsys, r.Path, dir)
		if err != nil {
			s.logger.Warn("ignore check failed", "kind", r.Kind, "root", r.Path, "dir", dir, "err", err)
			continue
		}
		if ignored {
			s.logger.Debug("skipping ignored directory", "dir", dir, "root", r.Path)
			return true
		}
	}
	return false
}

// upwardExcluded reports whether dir is an excluded directory or an ancestor
// of one.
func (s *Scanner) upwardExcluded(dir string) bool {
	for _, ex := range s.opts.UpwardExcludes {
		if model.IsAncestor(dir, ex) {
			return true
		}
	}
	return false
}
