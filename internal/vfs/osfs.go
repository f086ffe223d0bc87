package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS reads the host filesystem.
type OSFS struct{}

func NewOSFS() OSFS {
	return OSFS{}
}

func (OSFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }
func (OSFS) Stat(name string) (fs.FileInfo, error)      { return os.Stat(name) }
func (OSFS) Lstat(name string) (fs.FileInfo, error)     { return os.Lstat(name) }
func (OSFS) ReadFile(name string) ([]byte, error)       { return os.ReadFile(name) }

func (OSFS) EvalSymlinks(name string) (string, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

func (OSFS) IsLocal(name string) bool {
	return isLocalMount(name)
}
