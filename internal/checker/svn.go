package checker

import (
	"path/filepath"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

const svnMarker = ".svn"

// Svn recognizes Subversion 1.7+ working copies, whose single .svn directory
// at the top holds wc.db.
type Svn struct{}

func NewSvn() *Svn {
	return &Svn{}
}

func (s *Svn) Kind() model.Kind    { return model.KindSvn }
func (s *Svn) MarkerName() string { return svnMarker }

func (s *Svn) IsRoot(fsys vfs.FS, dir string) (bool, error) {
	info, err := fsys.Stat(filepath.Join(dir, svnMarker, "wc.db"))
	if err != nil {
		if vfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// IsIgnored always reports false: svn:ignore lives in the working-copy
// database, which is not read.
func (s *Svn) IsIgnored(vfs.FS, string, string) (bool, error) {
	return false, nil
}

func (s *Svn) DependentRoots(vfs.FS, string) ([]string, error) {
	return nil, nil
}
