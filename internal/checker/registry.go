package checker

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jackchuka/rootscan/internal/model"
)

// Registry holds the currently enabled checkers in registration order.
// Scans take a Snapshot at start; mutations notify subscribers instead of
// affecting a scan in flight.
type Registry struct {
	mu       sync.RWMutex
	checkers []RootChecker
	subs     map[int]func()
	nextSub  int
}

func NewRegistry(checkers ...RootChecker) *Registry {
	return &Registry{
		checkers: slices.Clone(checkers),
		subs:     make(map[int]func()),
	}
}

// Default returns a registry with the built-in checkers for kinds, or for all
// built-in kinds when none are given.
func Default(kinds ...model.Kind) (*Registry, error) {
	all := []RootChecker{NewGit(), NewHg(), NewSvn()}
	if len(kinds) == 0 {
		return NewRegistry(all...), nil
	}

	r := NewRegistry()
	for _, k := range kinds {
		idx := slices.IndexFunc(all, func(c RootChecker) bool { return c.Kind() == k })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
		r.Register(all[idx])
	}
	return r, nil
}

// Register adds c, replacing any checker of the same kind.
func (r *Registry) Register(c RootChecker) {
	r.mu.Lock()
	idx := slices.IndexFunc(r.checkers, func(x RootChecker) bool { return x.Kind() == c.Kind() })
	if idx >= 0 {
		r.checkers[idx] = c
	} else {
		r.checkers = append(r.checkers, c)
	}
	r.mu.Unlock()
	r.notify()
}

// Unregister removes the checker for kind and reports whether one existed.
func (r *Registry) Unregister(kind model.Kind) bool {
	r.mu.Lock()
	before := len(r.checkers)
	r.checkers = slices.DeleteFunc(r.checkers, func(c RootChecker) bool { return c.Kind() == kind })
	removed := len(r.checkers) != before
	r.mu.Unlock()
	if removed {
		r.notify()
	}
	return removed
}

// Snapshot returns a copy of the registered checkers.
func (r *Registry) Snapshot() []RootChecker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.checkers)
}

// Checker returns the checker registered for kind.
func (r *Registry) Checker(kind model.Kind) (RootChecker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.checkers {
		if c.Kind() == kind {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Markers returns the marker directory names of all registered checkers.
func (r *Registry) Markers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.checkers))
	for _, c := range r.checkers {
		out = append(out, c.MarkerName())
	}
	return out
}

// Subscribe registers fn to run after every registry change. The returned
// function removes the subscription.
func (r *Registry) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

func (r *Registry) notify() {
	r.mu.RLock()
	fns := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// ByKind indexes a snapshot by kind.
func ByKind(checkers []RootChecker) map[model.Kind]RootChecker {
	out := make(map[model.Kind]RootChecker, len(checkers))
	for _, c := range checkers {
		out[c.Kind()] = c
	}
	return out
}
