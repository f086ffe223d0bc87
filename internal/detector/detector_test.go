package detector

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/jackchuka/rootscan/internal/checker"
	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/logging"
	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

type fakeStore struct {
	roots []model.Root
	err   error
	calls int
}

func (f *fakeStore) KnownRoots(context.Context) ([]model.Root, error) {
	f.calls++
	return f.roots, f.err
}

type failingContent struct{}

func (failingContent) ContentRoots(context.Context) ([]string, error) {
	return nil, errors.New("project closed")
}

// workspace builds:
//
//	/ws/.git                      root above the content root
//	/ws/p                         content root (outer)
//	/ws/p/b                       content root (inner)
//	/ws/p/b/repo/.git
//	/ws/p/x/.git                  has a submodule below the depth limit
//	/ws/p/x/deep/sub/.git
//	/ws/p/node_modules/m/.git     ignored by name
//	/mapped/.git                  registered only
func workspace(t *testing.T) afero.Fs {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, d := range []string{
		"/ws/.git",
		"/ws/p/b/repo/.git",
		"/ws/p/b/docs",
		"/ws/p/x/.git",
		"/ws/p/x/deep/sub/.git",
		"/ws/p/node_modules/m/.git",
		"/mapped/.git",
	} {
		if err := mem.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	gitmodules := "[submodule \"sub\"]\n\tpath = deep/sub\n\turl = ../sub.git\n"
	if err := afero.WriteFile(mem, "/ws/p/x/.gitmodules", []byte(gitmodules), 0644); err != nil {
		t.Fatal(err)
	}
	return mem
}

func settings() config.Scan {
	return config.Scan{
		MaxDepth:   2,
		IgnoreName: regexp.MustCompile(`^node_modules$`),
	}
}

func newDetector(t *testing.T, fsys vfs.FS, store RootStore, content ...string) (*Detector, *checker.Registry) {
	t.Helper()
	reg, err := checker.Default()
	if err != nil {
		t.Fatal(err)
	}
	return New(fsys, reg, StaticContentRoots(content), store, settings(), logging.Discard()), reg
}

func git(path string) model.Root { return model.NewRoot(model.KindGit, path) }

func TestDetectAll(t *testing.T) {
	store := &fakeStore{roots: []model.Root{git("/mapped")}}
	d, _ := newDetector(t, vfs.NewAferoFS(workspace(t)), store, "/ws/p", "/ws/p/b")

	got, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatalf("DetectAll() error = %v", err)
	}
	want := []model.Root{
		git("/mapped"),
		git("/ws"),
		git("/ws/p/b/repo"),
		git("/ws/p/x"),
		git("/ws/p/x/deep/sub"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectAll_DropsStaleMappings(t *testing.T) {
	store := &fakeStore{roots: []model.Root{
		git("/mapped"),
		git("/gone"),                           // directory deleted
		git("/ws/p/b/docs"),                    // exists, not a checkout
		model.NewRoot(model.KindHg, "/mapped"), // wrong kind
	}}
	d, _ := newDetector(t, vfs.NewAferoFS(workspace(t)), store, "/ws/p/b")

	got, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatalf("DetectAll() error = %v", err)
	}
	want := []model.Root{
		git("/mapped"),
		git("/ws"),
		git("/ws/p/b/repo"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectAll() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectAll_Idempotent(t *testing.T) {
	d, _ := newDetector(t, vfs.NewAferoFS(workspace(t)), &fakeStore{}, "/ws/p", "/ws/p/b")

	first, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second DetectAll() differs (-first +second):\n%s", diff)
	}
}

func TestDetectAll_InnerContentRootVisitedOnce(t *testing.T) {
	counting := vfs.NewCounting(vfs.NewAferoFS(workspace(t)))
	// Outer root listed first; the detector must still walk the inner one first.
	d, _ := newDetector(t, counting, &fakeStore{}, "/ws/p", "/ws/p/b")

	if _, err := d.DetectAll(context.Background()); err != nil {
		t.Fatal(err)
	}

	visits := counting.VisitsUnder("/ws/p/b")
	if visits["/ws/p/b"] != 1 {
		t.Errorf("/ws/p/b listed %d times, want 1", visits["/ws/p/b"])
	}
	for dir, n := range visits {
		if n != 1 {
			t.Errorf("%s listed %d times, want 1", dir, n)
		}
	}
}

func TestDetectAll_CollaboratorFailures(t *testing.T) {
	reg, err := checker.Default()
	if err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{err: errors.New("store locked")}
	d := New(vfs.NewAferoFS(workspace(t)), reg, failingContent{}, store, settings(), logging.Discard())

	got, err := d.DetectAll(context.Background())
	if err != nil {
		t.Fatalf("DetectAll() error = %v, want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("DetectAll() = %v, want empty", got)
	}
}

func TestDetectAll_CancelledKeepsCache(t *testing.T) {
	d, _ := newDetector(t, vfs.NewAferoFS(workspace(t)), &fakeStore{}, "/ws/p")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.DetectAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("DetectAll() error = %v, want context.Canceled", err)
	}
	if _, ok := d.cache.Get(); ok {
		t.Error("cancelled DetectAll should not populate the cache")
	}
}

func TestDetect_SingleDirectory(t *testing.T) {
	store := &fakeStore{roots: []model.Root{git("/mapped")}}
	d, _ := newDetector(t, vfs.NewAferoFS(workspace(t)), store, "/ws/p")

	got, err := d.Detect(context.Background(), "/ws/p/b")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	want := []model.Root{git("/ws"), git("/ws/p/b/repo")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Detect() mismatch (-want +got):\n%s", diff)
	}
	if store.calls != 0 {
		t.Errorf("Detect() consulted the store %d times, want 0", store.calls)
	}
	if _, ok := d.cache.Get(); ok {
		t.Error("Detect() should not populate the cache")
	}
}

func TestGetOrDetect(t *testing.T) {
	mem := workspace(t)
	d, reg := newDetector(t, vfs.NewAferoFS(mem), &fakeStore{}, "/ws/p/b")
	ctx := context.Background()

	first, err := d.GetOrDetect(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// A new repo is invisible until the cache is invalidated.
	if err := mem.MkdirAll("/ws/p/b/docs/.git", 0755); err != nil {
		t.Fatal(err)
	}
	cached, err := d.GetOrDetect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, cached); diff != "" {
		t.Errorf("GetOrDetect() rescanned (-first +cached):\n%s", diff)
	}

	d.Invalidate()
	fresh, err := d.GetOrDetect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != len(first)+1 {
		t.Errorf("GetOrDetect() after Invalidate = %v, want one more root than %v", fresh, first)
	}

	// Roots of a kind that is no longer registered are dropped silently.
	reg.Unregister(model.KindGit)
	afterRemoval, err := d.GetOrDetect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(afterRemoval) != 0 {
		t.Errorf("GetOrDetect() after unregister = %v, want empty", afterRemoval)
	}
}
