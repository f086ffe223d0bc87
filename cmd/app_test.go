package cmd

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/logging"
	"github.com/jackchuka/rootscan/internal/model"
)

func TestApp_WatchIgnored(t *testing.T) {
	a := &app{
		cfg:      &config.Config{WatchIgnore: []string{"**/target/**"}},
		settings: config.Scan{IgnoreName: regexp.MustCompile(`^node_modules$`)},
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/src/app", false},
		{"/src/app/node_modules", true},
		{"/src/app/target", true},
		{"/src/app/target/debug", true},
		{"/src/node_modules_docs", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := a.watchIgnored(tt.path); got != tt.want {
				t.Errorf("watchIgnored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func detectedPaths(roots []model.Root) []string {
	paths := make([]string, 0, len(roots))
	for _, r := range roots {
		paths = append(paths, r.Path)
	}
	return paths
}

func TestSession_ReconcileUsesCachedDetection(t *testing.T) {
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(tmp, "src")
	outside := filepath.Join(tmp, "outside")
	mkdirs(t, filepath.Join(src, "a", ".git"), filepath.Join(outside, ".git"))

	cfg := config.NewConfig()
	cfg.ContentRoots = []string{src}
	cfg.UpwardExcludes = []string{tmp}
	cfg.MappingFile = filepath.Join(tmp, "mappings.yaml")
	a, err := newApp(cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	s := a.session()
	ctx := context.Background()

	reconcile := func() []string {
		t.Helper()
		rep, err := s.Reconcile(ctx)
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		return detectedPaths(rep.Detected)
	}

	first := reconcile()
	if diff := cmp.Diff([]string{filepath.Join(src, "a")}, first); diff != "" {
		t.Errorf("first Reconcile() mismatch (-want +got):\n%s", diff)
	}

	// A new checkout stays invisible until the cache is dropped.
	mkdirs(t, filepath.Join(src, "b", ".git"))
	if diff := cmp.Diff(first, reconcile()); diff != "" {
		t.Errorf("Reconcile() rescanned without Rescan (-cached +got):\n%s", diff)
	}
	s.Rescan()
	if got := reconcile(); len(got) != 2 {
		t.Errorf("Reconcile() after Rescan = %v, want 2 roots", got)
	}

	// A registered root outside the content roots joins the result and
	// leaves it again once removed.
	mapped := model.NewRoot(model.KindGit, outside)
	if err := s.Accept(ctx, mapped); err != nil {
		t.Fatal(err)
	}
	s.Rescan()
	if got := reconcile(); len(got) != 3 {
		t.Errorf("Reconcile() after Accept = %v, want 3 roots", got)
	}
	if err := s.Remove(ctx, mapped); err != nil {
		t.Fatal(err)
	}
	rep, err := s.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range slices.Concat(rep.Detected, rep.Unregistered) {
		if r.Path == outside {
			t.Errorf("Reconcile() after Remove still reports %s", outside)
		}
	}
}
