package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/detector"
	"github.com/jackchuka/rootscan/internal/logging"
	"github.com/jackchuka/rootscan/internal/mapping"
	"github.com/jackchuka/rootscan/internal/report"
	"github.com/jackchuka/rootscan/internal/vfs"
	"github.com/jackchuka/rootscan/internal/watcher"
)

// app wires the detection pipeline for one configuration.
type app struct {
	cfg      *config.Config
	settings config.Scan
	logger   *log.Logger
	fsys     vfs.FS
	registry *checker.Registry
	store    *mapping.FileStore
	detector *detector.Detector
	reporter *report.Reporter
}

func newApp(cfg *config.Config, logger *log.Logger) (*app, error) {
	registry, err := checker.Default(cfg.Kinds...)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.ScanSettings()
	if err != nil {
		return nil, err
	}

	fsys := vfs.NewOSFS()
	store := mapping.NewFileStore(afero.NewOsFs(), cfg.MappingPath())
	return &app{
		cfg:      cfg,
		settings: settings,
		logger:   logger,
		fsys:     fsys,
		registry: registry,
		store:    store,
		detector: detector.New(fsys, registry, detector.StaticContentRoots(cfg.ContentRoots), store, settings,
			logging.Component(logger, "detector")),
		reporter: report.NewReporter(fsys, registry, store, cfg.AutoRegister, logging.Component(logger, "report")),
	}, nil
}

// scanAndReport runs a full detection and reconciles it with the mappings.
func (a *app) scanAndReport(ctx context.Context) (report.Report, error) {
	roots, err := a.detector.DetectAll(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return a.reporter.Reconcile(ctx, roots)
}

func (a *app) newSource() (watcher.Source, error) {
	if a.cfg.PollInterval > 0 {
		return watcher.NewPoller(a.cfg.PollInterval, a.fsys, a.cfg.MaxDepth, a.registry.Markers, a.watchIgnored), nil
	}
	return watcher.NewFSNotifySource(a.cfg.MaxDepth, a.registry.Markers, a.watchIgnored,
		logging.Component(a.logger, "watcher"))
}

// watchIgnored leaves out of the change listener every directory a scan
// would never enter by name, plus the watch_ignore globs.
func (a *app) watchIgnored(path string) bool {
	if a.cfg.WatchIgnored(path) {
		return true
	}
	re := a.settings.IgnoreName
	return re != nil && re.MatchString(filepath.Base(path))
}

// watch rescans whenever a marker directory appears under a content root or
// the checker registry changes, until ctx is done. An initial scan is
// scheduled right away. ready, if set, receives the scheduler once running.
func (a *app) watch(ctx context.Context, onReport func(report.Report), ready func(*watcher.Scheduler)) error {
	src, err := a.newSource()
	if err != nil {
		return err
	}
	defer src.Close()

	for _, root := range a.cfg.ContentRoots {
		if err := src.Watch(root); err != nil {
			a.logger.Warn("cannot watch content root", "root", root, "err", err)
		}
	}

	sched := watcher.NewScheduler(a.cfg.QuietPeriod, watcher.RealClock(), a.registry.Markers,
		func(ctx context.Context) error {
			rep, err := a.scanAndReport(ctx)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			onReport(rep)
			return nil
		}, logging.Component(a.logger, "scheduler"))
	defer sched.Close()

	unsubscribe := a.registry.Subscribe(func() {
		a.detector.Invalidate()
		sched.RegistryChanged()
	})
	defer unsubscribe()

	sched.Trigger()
	if ready != nil {
		ready(sched)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return src.Run(gctx)
	})
	g.Go(func() error {
		for batch := range src.Events() {
			sched.Notify(batch)
		}
		return nil
	})
	return g.Wait()
}
