// Package detector composes the scanner passes into full and single-directory
// detection runs and keeps the last full result.
package detector

import (
	"cmp"
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/scanner"
	"github.com/jackchuka/rootscan/internal/vfs"
)

// ContentRootProvider lists the top-level directories a project owns. It is
// asked again at the start of every full detection.
type ContentRootProvider interface {
	ContentRoots(ctx context.Context) ([]string, error)
}

// RootStore exposes the roots the user registered explicitly.
type RootStore interface {
	KnownRoots(ctx context.Context) ([]model.Root, error)
}

// StaticContentRoots is a fixed content-root list.
type StaticContentRoots []string

func (s StaticContentRoots) ContentRoots(context.Context) ([]string, error) {
	return slices.Clone(s), nil
}

type Detector struct {
	fsys     vfs.FS
	registry *checker.Registry
	content  ContentRootProvider
	store    RootStore
	settings config.Scan
	logger   *log.Logger

	cache  Cache
	scanMu sync.Mutex
}

// New returns a detector. store may be nil when no mappings exist.
func New(fsys vfs.FS, registry *checker.Registry, content ContentRootProvider, store RootStore, settings config.Scan, logger *log.Logger) *Detector {
	return &Detector{
		fsys:     fsys,
		registry: registry,
		content:  content,
		store:    store,
		settings: settings,
		logger:   logger,
	}
}

func (d *Detector) newScanner() *scanner.Scanner {
	return scanner.New(d.fsys, d.registry.Snapshot(), scanner.Options{
		IgnoreName:     d.settings.IgnoreName,
		UpwardExcludes: d.settings.UpwardExcludes,
	}, d.logger)
}

// DetectAll scans every content root, merges in the registered roots that
// still pass their checker, adds all dependents, and caches the deduplicated
// result. The only error it
// returns is the context's; a cancelled run leaves the cache untouched.
func (d *Detector) DetectAll(ctx context.Context) ([]model.Root, error) {
	d.scanMu.Lock()
	defer d.scanMu.Unlock()

	start := time.Now()
	sc := d.newScanner()
	state := scanner.NewState()

	content := d.contentRoots(ctx)
	known := d.knownRoots(ctx)
	state.AddRoots(known...)

	// Innermost first, so an inner root is in the skip set before the walk
	// of an enclosing root reaches it.
	nested := slices.Clone(content)
	slices.SortStableFunc(nested, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})

	found := model.NewRootSet()
	for _, root := range nested {
		found.Add(sc.ScanDown(ctx, root, state, d.settings.MaxDepth)...)
		state.Skip(root)
	}
	for _, root := range content {
		found.Add(sc.ScanUp(ctx, root, state, found.Slice())...)
	}
	// Registered roots seed the ignore checks above, but only those that are
	// still roots join the result.
	found.Add(sc.Confirm(ctx, known)...)
	found.Add(sc.ResolveDependents(ctx, found.Slice(), state)...)

	if err := ctx.Err(); err != nil {
		d.logger.Debug("detection cancelled", "err", err)
		return nil, err
	}

	roots := sc.Dedupe(found.Slice())
	d.cache.Replace(roots)
	d.logger.Info("detection finished",
		"roots", len(roots),
		"visited", state.Visited(),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return roots, nil
}

// Detect scans down from dir and up from it to the nearest enclosing root.
// Registered roots are not merged and the cache is not updated.
func (d *Detector) Detect(ctx context.Context, dir string) ([]model.Root, error) {
	d.scanMu.Lock()
	defer d.scanMu.Unlock()

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	sc := d.newScanner()
	state := scanner.NewState()
	roots := model.NewRootSet(sc.ScanDown(ctx, dir, state, d.settings.MaxDepth)...)
	roots.Add(sc.ScanUp(ctx, dir, state, roots.Slice())...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sc.Dedupe(roots.Slice()), nil
}

// GetOrDetect returns the cached result of the last DetectAll, dropping roots
// whose kind is no longer registered, or runs DetectAll when nothing is
// cached.
func (d *Detector) GetOrDetect(ctx context.Context) ([]model.Root, error) {
	cached, ok := d.cache.Get()
	if !ok {
		return d.DetectAll(ctx)
	}

	roots := make([]model.Root, 0, len(cached))
	for _, c := range cached {
		if _, err := d.registry.Checker(c.Kind); err != nil {
			continue
		}
		roots = append(roots, model.NewRoot(c.Kind, c.Path))
	}
	return roots, nil
}

// Invalidate drops the cached result so the next GetOrDetect rescans.
func (d *Detector) Invalidate() {
	d.cache.Clear()
}

func (d *Detector) contentRoots(ctx context.Context) []string {
	raw, err := d.content.ContentRoots(ctx)
	if err != nil {
		d.logger.Warn("content roots unavailable", "err", err)
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		abs, err := filepath.Abs(p)
		if err != nil {
			d.logger.Warn("skipping content root", "path", p, "err", err)
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

func (d *Detector) knownRoots(ctx context.Context) []model.Root {
	if d.store == nil {
		return nil
	}
	roots, err := d.store.KnownRoots(ctx)
	if err != nil {
		d.logger.Warn("registered roots unavailable", "err", err)
		return nil
	}
	return roots
}
