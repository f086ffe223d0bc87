package cmd

import (
	"context"
	"sync/atomic"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/report"
	"github.com/jackchuka/rootscan/internal/watcher"
)

// session adapts an app to the dashboard.
type session struct {
	app   *app
	sched atomic.Pointer[watcher.Scheduler]
}

func (a *app) session() *session {
	return &session{app: a}
}

func (s *session) Watch(ctx context.Context, reports chan<- report.Report) error {
	return s.app.watch(ctx, func(rep report.Report) {
		select {
		case reports <- rep:
		case <-ctx.Done():
		}
	}, s.sched.Store)
}

func (s *session) Rescan() {
	s.app.detector.Invalidate()
	if sched := s.sched.Load(); sched != nil {
		sched.Trigger()
	}
}

// Reconcile reuses the cached detection. Rescan and checker registry
// changes drop the cache, so the next call scans again.
func (s *session) Reconcile(ctx context.Context) (report.Report, error) {
	detected, err := s.app.detector.GetOrDetect(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return s.app.reporter.Reconcile(ctx, detected)
}

func (s *session) Accept(ctx context.Context, roots ...model.Root) error {
	return s.app.reporter.Accept(ctx, roots...)
}

func (s *session) Ignore(ctx context.Context, roots ...model.Root) error {
	return s.app.reporter.Ignore(ctx, roots...)
}

// Remove also drops the cache: registered roots are part of a detection
// result, so a removed mapping must not linger in it.
func (s *session) Remove(ctx context.Context, roots ...model.Root) error {
	if err := s.app.reporter.Remove(ctx, roots...); err != nil {
		return err
	}
	s.app.detector.Invalidate()
	return nil
}

func (s *session) ContentRoots() []string {
	return s.app.cfg.ContentRoots
}
