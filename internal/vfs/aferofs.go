package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// maxLinkHops bounds symlink resolution so a link cycle cannot spin forever.
const maxLinkHops = 40

// AferoFS adapts an afero.Fs. Symlinks are honoured when the backing Fs
// implements afero.Lstater and afero.LinkReader (afero.OsFs does, the
// in-memory MemMapFs does not).
type AferoFS struct {
	fs     afero.Fs
	remote []string
}

// NewAferoFS wraps fsys. Paths under any of remote are reported as non-local.
func NewAferoFS(fsys afero.Fs, remote ...string) *AferoFS {
	cleaned := make([]string, len(remote))
	for i, r := range remote {
		cleaned[i] = filepath.Clean(r)
	}
	return &AferoFS{fs: fsys, remote: cleaned}
}

func (a *AferoFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(a.fs, name)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

func (a *AferoFS) Stat(name string) (fs.FileInfo, error) {
	return a.fs.Stat(name)
}

func (a *AferoFS) Lstat(name string) (fs.FileInfo, error) {
	if l, ok := a.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return a.fs.Stat(name)
}

func (a *AferoFS) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(a.fs, name)
}

func (a *AferoFS) EvalSymlinks(name string) (string, error) {
	name = filepath.Clean(name)
	if _, err := a.fs.Stat(name); err != nil {
		return "", err
	}
	reader, ok := a.fs.(afero.LinkReader)
	if !ok {
		return name, nil
	}

	hops := 0
	resolved := string(filepath.Separator)
	rest := strings.Split(strings.TrimPrefix(name, string(filepath.Separator)), string(filepath.Separator))
	for len(rest) > 0 {
		part := rest[0]
		rest = rest[1:]
		if part == "" || part == "." {
			continue
		}
		next := filepath.Join(resolved, part)
		if !IsSymlink(a, next) {
			resolved = next
			continue
		}
		hops++
		if hops > maxLinkHops {
			return "", fmt.Errorf("vfs: resolve %q: too many links", name)
		}
		target, err := reader.ReadlinkIfPossible(next)
		if err != nil {
			return "", fmt.Errorf("vfs: readlink %q: %w", next, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(resolved, target)
		}
		// Restart from the filesystem root with the link target spliced in.
		rest = append(strings.Split(strings.TrimPrefix(filepath.Clean(target), string(filepath.Separator)), string(filepath.Separator)), rest...)
		resolved = string(filepath.Separator)
	}
	return resolved, nil
}

func (a *AferoFS) IsLocal(name string) bool {
	for _, r := range a.remote {
		if name == r || strings.HasPrefix(name, r+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

// IsNotExist reports whether err means a path is missing on any backend,
// including a path whose parent component is a regular file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
