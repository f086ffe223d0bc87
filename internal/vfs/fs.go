// Package vfs provides the read-only tree navigation that root detection needs.
//
// Directories are identified by absolute, cleaned paths. Implementations must be
// safe for concurrent use.
package vfs

import (
	"io/fs"
	"path/filepath"
)

// FS is a read-only view of a filesystem.
type FS interface {
	ReadDir(name string) ([]fs.DirEntry, error)
	Stat(name string) (fs.FileInfo, error)
	// Lstat does not follow a trailing symbolic link.
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// EvalSymlinks returns the canonical path of name with every symbolic
	// link resolved.
	EvalSymlinks(name string) (string, error)
	// IsLocal reports whether name lives on a local (non-network, non-virtual)
	// filesystem.
	IsLocal(name string) bool
}

// Parent returns the parent directory of dir and false when dir is a
// filesystem root.
func Parent(dir string) (string, bool) {
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", false
	}
	return parent, true
}

// IsDir reports whether name exists and is a directory, following symlinks.
func IsDir(fsys FS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && info.IsDir()
}

// IsSymlink reports whether name itself is a symbolic link.
func IsSymlink(fsys FS, name string) bool {
	info, err := fsys.Lstat(name)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

// Canonical resolves name through EvalSymlinks, falling back to the cleaned
// literal path when resolution fails.
func Canonical(fsys FS, name string) string {
	resolved, err := fsys.EvalSymlinks(name)
	if err != nil {
		return filepath.Clean(name)
	}
	return filepath.Clean(resolved)
}
