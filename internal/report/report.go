// Package report compares detected roots with the registered mappings and
// applies the user's decisions back to the mapping store.
package report

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

// Report classifies the difference between detection and registration.
type Report struct {
	Detected []model.Root
	// Unregistered roots were detected but are neither mapped nor ignored.
	Unregistered []model.Root
	// Invalid mappings point at an existing directory that is not a root of
	// the mapped kind, or at a kind no checker handles.
	Invalid []model.Root
	// Unreachable mappings point at a missing directory.
	Unreachable []model.Root
}

// Clean reports whether there is nothing to act on.
func (r Report) Clean() bool {
	return len(r.Unregistered) == 0 && len(r.Invalid) == 0 && len(r.Unreachable) == 0
}

// Reconcile classifies detected and mapped roots.
func Reconcile(ctx context.Context, fsys vfs.FS, registry *checker.Registry, detected, mapped, ignored []model.Root) (Report, error) {
	rep := Report{Detected: model.NewRootSet(detected...).Sorted()}

	skip := model.NewRootSet(mapped...)
	skip.Add(ignored...)
	for _, r := range rep.Detected {
		if !skip.Has(r) {
			rep.Unregistered = append(rep.Unregistered, r)
		}
	}

	for _, m := range model.NewRootSet(mapped...).Sorted() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		if !vfs.IsDir(fsys, m.Path) {
			rep.Unreachable = append(rep.Unreachable, m)
			continue
		}
		c, err := registry.Checker(m.Kind)
		if err != nil {
			rep.Invalid = append(rep.Invalid, m)
			continue
		}
		ok, err := checker.SafeIsRoot(c, fsys, m.Path)
		if err != nil {
			// An unanswerable check is not evidence the mapping is stale.
			continue
		}
		if !ok {
			rep.Invalid = append(rep.Invalid, m)
		}
	}
	return rep, nil
}

// Store is the mapping store the reporter reads and writes.
type Store interface {
	KnownRoots(ctx context.Context) ([]model.Root, error)
	SetMappings(ctx context.Context, roots []model.Root) error
	Ignored(ctx context.Context) ([]model.Root, error)
	AddIgnored(ctx context.Context, roots ...model.Root) error
}

// Reporter reconciles scan results against a Store and records decisions.
type Reporter struct {
	fsys         vfs.FS
	registry     *checker.Registry
	store        Store
	autoRegister bool
	logger       *log.Logger
}

// NewReporter returns a reporter. With autoRegister set, every unregistered
// root is accepted as soon as it is reported.
func NewReporter(fsys vfs.FS, registry *checker.Registry, store Store, autoRegister bool, logger *log.Logger) *Reporter {
	return &Reporter{
		fsys:         fsys,
		registry:     registry,
		store:        store,
		autoRegister: autoRegister,
		logger:       logger,
	}
}

// Reconcile reads the store and classifies detected against it.
func (r *Reporter) Reconcile(ctx context.Context, detected []model.Root) (Report, error) {
	rep, err := r.reconcile(ctx, detected)
	if err != nil {
		return Report{}, err
	}
	if !r.autoRegister || len(rep.Unregistered) == 0 {
		return rep, nil
	}

	r.logger.Info("registering detected roots", "count", len(rep.Unregistered))
	if err := r.Accept(ctx, rep.Unregistered...); err != nil {
		return Report{}, err
	}
	return r.reconcile(ctx, detected)
}

func (r *Reporter) reconcile(ctx context.Context, detected []model.Root) (Report, error) {
	mapped, err := r.store.KnownRoots(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("report: %w", err)
	}
	ignored, err := r.store.Ignored(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("report: %w", err)
	}
	return Reconcile(ctx, r.fsys, r.registry, detected, mapped, ignored)
}

// Accept registers roots.
func (r *Reporter) Accept(ctx context.Context, roots ...model.Root) error {
	mapped, err := r.store.KnownRoots(ctx)
	if err != nil {
		return fmt.Errorf("report: accept: %w", err)
	}
	set := model.NewRootSet(mapped...)
	if set.Add(roots...) == 0 {
		return nil
	}
	if err := r.store.SetMappings(ctx, set.Sorted()); err != nil {
		return fmt.Errorf("report: accept: %w", err)
	}
	return nil
}

// Ignore stops roots from being reported as unregistered.
func (r *Reporter) Ignore(ctx context.Context, roots ...model.Root) error {
	if err := r.store.AddIgnored(ctx, roots...); err != nil {
		return fmt.Errorf("report: ignore: %w", err)
	}
	return nil
}

// Remove unregisters roots, typically invalid or unreachable ones.
func (r *Reporter) Remove(ctx context.Context, roots ...model.Root) error {
	mapped, err := r.store.KnownRoots(ctx)
	if err != nil {
		return fmt.Errorf("report: remove: %w", err)
	}
	drop := model.NewRootSet(roots...)
	kept := make([]model.Root, 0, len(mapped))
	for _, m := range mapped {
		if !drop.Has(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(mapped) {
		return nil
	}
	if err := r.store.SetMappings(ctx, kept); err != nil {
		return fmt.Errorf("report: remove: %w", err)
	}
	return nil
}
