// Package mapping persists the user's explicit root registrations and the
// detected roots they chose to ignore.
package mapping

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jackchuka/rootscan/internal/config"
	"github.com/jackchuka/rootscan/internal/model"
)

type document struct {
	Mappings []model.Root `yaml:"mappings"`
	Ignored  []model.Root `yaml:"ignored,omitempty"`
}

// FileStore keeps mappings in a single YAML file. Every call re-reads the
// file, so edits made by hand are picked up on the next scan.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: path}
}

func (s *FileStore) Path() string { return s.path }

// KnownRoots returns the registered roots.
func (s *FileStore) KnownRoots(ctx context.Context) ([]model.Root, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Mappings, nil
}

// SetMappings replaces the registered roots.
func (s *FileStore) SetMappings(ctx context.Context, roots []model.Root) error {
	return s.update(ctx, func(doc *document) {
		doc.Mappings = s.normalize(roots)
	})
}

// Ignored returns the detected roots the user chose not to register.
func (s *FileStore) Ignored(ctx context.Context) ([]model.Root, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Ignored, nil
}

func (s *FileStore) AddIgnored(ctx context.Context, roots ...model.Root) error {
	return s.update(ctx, func(doc *document) {
		doc.Ignored = s.normalize(append(doc.Ignored, roots...))
	})
}

func (s *FileStore) read(ctx context.Context) (*document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) update(ctx context.Context, fn func(*document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	fn(doc)
	return s.store(doc)
}

func (s *FileStore) load() (*document, error) {
	doc := &document{}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("mapping: read %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("mapping: parse %s: %w", s.path, err)
	}
	doc.Mappings = s.normalize(doc.Mappings)
	doc.Ignored = s.normalize(doc.Ignored)
	return doc, nil
}

// store writes through a temp file in the same directory and renames it into
// place, so readers never see a partial file.
func (s *FileStore) store(doc *document) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mapping: %w", err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("mapping: encode: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".mappings-*.yaml")
	if err != nil {
		return fmt.Errorf("mapping: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("mapping: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("mapping: write: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("mapping: replace %s: %w", s.path, err)
	}
	return nil
}

// normalize makes paths absolute, drops duplicates and sorts. A leading ~ is
// the home directory; other relative paths are taken from the mapping file's
// directory.
func (s *FileStore) normalize(roots []model.Root) []model.Root {
	set := model.NewRootSet()
	for _, r := range roots {
		if r.Path == "" || r.Kind == "" {
			continue
		}
		path := config.ExpandHome(r.Path)
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(s.path), path)
		}
		set.Add(model.NewRoot(r.Kind, path))
	}
	return set.Sorted()
}
