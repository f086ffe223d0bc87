package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// FSNotifySource watches directory trees with fsnotify. Each watched root is
// registered down to maxDepth, the deepest level at which a root can be
// detected, and directories created later within that depth are added as
// they appear. Marker directories are never registered: their contents churn
// constantly and their creation is reported by the parent's watch.
type FSNotifySource struct {
	fsw      *fsnotify.Watcher
	maxDepth int
	markers  func() []string
	ignore   IgnoreFunc
	events   chan []Event
	logger   *log.Logger

	mu    sync.Mutex
	roots map[string]struct{}
}

func NewFSNotifySource(maxDepth int, markers func() []string, ignore IgnoreFunc, logger *log.Logger) (*FSNotifySource, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: create fsnotify watcher: %w", err)
	}

	return &FSNotifySource{
		fsw:      fsw,
		maxDepth: maxDepth,
		markers:  markers,
		ignore:   ignore,
		events:   make(chan []Event, 16),
		logger:   logger,
		roots:    make(map[string]struct{}),
	}, nil
}

func (w *FSNotifySource) Events() <-chan []Event {
	return w.events
}

// Watch registers root and its non-ignored subdirectories.
func (w *FSNotifySource) Watch(root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}

	w.mu.Lock()
	if _, ok := w.roots[root]; ok {
		w.mu.Unlock()
		return nil
	}
	w.roots[root] = struct{}{}
	w.mu.Unlock()

	return w.addTree(root, 0)
}

// Run forwards events until ctx is done. A fatal watcher error, such as
// exhausting the inotify watch limit, ends Run with that error.
func (w *FSNotifySource) Run(ctx context.Context) error {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			batch := []Event{w.handle(evt)}
			// Drain what is already queued so bursts arrive as one batch.
		drain:
			for {
				select {
				case more, ok := <-w.fsw.Events:
					if !ok {
						break drain
					}
					batch = append(batch, w.handle(more))
				default:
					break drain
				}
			}

			select {
			case w.events <- batch:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watcher: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

func (w *FSNotifySource) Close() error {
	return w.fsw.Close()
}

// handle converts evt and extends the watch to directories created inside
// the watched depth.
func (w *FSNotifySource) handle(evt fsnotify.Event) Event {
	if evt.Has(fsnotify.Create) {
		if root, depth, ok := w.locate(evt.Name); ok && depth <= w.maxDepth {
			if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
				if err := w.addTree(evt.Name, depth); err != nil {
					w.logger.Debug("watch new directory", "path", evt.Name, "root", root, "err", err)
				}
			}
		}
	}
	return fromFSNotify(evt)
}

// locate finds the watched root containing path and the depth of path below it.
func (w *FSNotifySource) locate(path string) (string, int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	best, bestDepth, found := "", 0, false
	for root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}
		if !found || depth < bestDepth {
			best, bestDepth, found = root, depth, true
		}
	}
	return best, bestDepth, found
}

func (w *FSNotifySource) addTree(dir string, depth int) error {
	base := dir
	markers := w.markers()
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping inaccessible path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, _ := filepath.Rel(base, path)
		level := depth
		if rel != "." {
			level += strings.Count(rel, string(filepath.Separator)) + 1
		}
		if level > w.maxDepth {
			return filepath.SkipDir
		}
		if slices.Contains(markers, d.Name()) {
			return filepath.SkipDir
		}
		if level > 0 && w.ignore.ignored(path) {
			w.logger.Debug("skipping ignored directory", "path", path)
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watcher: add %q: %w", path, err)
			}
			w.logger.Debug("add watch", "path", path, "err", err)
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, filepath.SkipDir) {
		return walkErr
	}
	return nil
}
