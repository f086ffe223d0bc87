// internal/watcher/poller.go
package watcher

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/jackchuka/rootscan/internal/vfs"
)

// Poller watches trees by periodically listing marker directories, for
// filesystems that deliver no change notifications.
type Poller struct {
	interval time.Duration
	fsys     vfs.FS
	maxDepth int
	markers  func() []string
	ignore   IgnoreFunc
	events   chan []Event
	trees    map[string]map[string]struct{} // root -> marker paths seen last poll
	mu       sync.RWMutex
}

func NewPoller(interval time.Duration, fsys vfs.FS, maxDepth int, markers func() []string, ignore IgnoreFunc) *Poller {
	if interval < time.Second {
		interval = time.Second
	}
	return &Poller{
		interval: interval,
		fsys:     fsys,
		maxDepth: maxDepth,
		markers:  markers,
		ignore:   ignore,
		events:   make(chan []Event, 100),
		trees:    make(map[string]map[string]struct{}),
	}
}

func (p *Poller) Events() <-chan []Event {
	return p.events
}

func (p *Poller) Watch(root string) error {
	root = filepath.Clean(root)
	p.mu.RLock()
	_, exists := p.trees[root]
	p.mu.RUnlock()

	if exists {
		return nil
	}

	// Take the initial listing outside the lock.
	seen := p.listMarkers(root)

	p.mu.Lock()
	// Double-check after acquiring write lock
	if _, exists := p.trees[root]; !exists {
		p.trees[root] = seen
	}
	p.mu.Unlock()
	return nil
}

func (p *Poller) Run(ctx context.Context) error {
	defer close(p.events)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	// Snapshot current trees under the lock
	p.mu.RLock()
	snapshot := make(map[string]map[string]struct{}, len(p.trees))
	maps.Copy(snapshot, p.trees)
	p.mu.RUnlock()

	type change struct {
		root   string
		seen   map[string]struct{}
		events []Event
	}

	var (
		changes []change
		mu      sync.Mutex
		wg      sync.WaitGroup
	)

	sem := make(chan struct{}, 4)

	for root, last := range snapshot {
		wg.Add(1)
		go func(root string, last map[string]struct{}) {
			defer wg.Done()

			// Respect context cancellation while waiting for semaphore
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			seen := p.listMarkers(root)
			if events := diffMarkers(last, seen); len(events) > 0 {
				mu.Lock()
				changes = append(changes, change{root: root, seen: seen, events: events})
				mu.Unlock()
			}
		}(root, last)
	}

	wg.Wait()

	if len(changes) == 0 {
		return
	}

	// Only record the new listing once its events were delivered; if the
	// channel is full the change is found again next cycle.
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range changes {
		select {
		case p.events <- c.events:
			if _, ok := p.trees[c.root]; ok {
				p.trees[c.root] = c.seen
			}
		default:
		}
	}
}

// listMarkers returns the marker directories under root down to the depth at
// which roots are detected, skipping ignored subtrees.
func (p *Poller) listMarkers(root string) map[string]struct{} {
	markers := p.markers()
	seen := make(map[string]struct{})

	type frame struct {
		dir   string
		depth int
	}
	stack := []frame{{dir: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := p.fsys.ReadDir(f.dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(f.dir, e.Name())
			if slices.Contains(markers, e.Name()) {
				seen[path] = struct{}{}
				continue
			}
			if p.ignore.ignored(path) {
				continue
			}
			if f.depth < p.maxDepth {
				stack = append(stack, frame{dir: path, depth: f.depth + 1})
			}
		}
	}
	return seen
}

func diffMarkers(before, after map[string]struct{}) []Event {
	now := time.Now()
	var events []Event
	for _, path := range slices.Sorted(maps.Keys(after)) {
		if _, ok := before[path]; !ok {
			events = append(events, Event{Path: path, Op: Create, Time: now})
		}
	}
	for _, path := range slices.Sorted(maps.Keys(before)) {
		if _, ok := after[path]; !ok {
			events = append(events, Event{Path: path, Op: Remove, Time: now})
		}
	}
	return events
}

func (p *Poller) Close() error {
	return nil
}
