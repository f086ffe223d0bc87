package checker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

const hgMarker = ".hg"

// Hg recognizes Mercurial working copies by their .hg directory.
type Hg struct {
	ignores *ignoreCache
}

func NewHg() *Hg {
	return &Hg{ignores: newIgnoreCache(parseHgignore)}
}

func (h *Hg) Kind() model.Kind    { return model.KindHg }
func (h *Hg) MarkerName() string { return hgMarker }

func (h *Hg) IsRoot(fsys vfs.FS, dir string) (bool, error) {
	info, err := fsys.Lstat(filepath.Join(dir, hgMarker))
	if err != nil {
		if vfs.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (h *Hg) IsIgnored(fsys vfs.FS, root, dir string) (bool, error) {
	rel, ok := relSlash(root, dir)
	if !ok || rel == "." {
		return false, nil
	}
	rules, err := h.ignores.load(fsys, filepath.Join(root, ".hgignore"))
	if err != nil {
		return false, fmt.Errorf("hg: load ignore rules for %s: %w", root, err)
	}
	return rules.Match(rel), nil
}

// DependentRoots returns the subrepositories listed in .hgsub.
func (h *Hg) DependentRoots(fsys vfs.FS, root string) ([]string, error) {
	data, err := fsys.ReadFile(filepath.Join(root, ".hgsub"))
	if err != nil {
		if vfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return nil, fmt.Errorf("hg: parse .hgsub in %s: %w", root, err)
	}

	var dirs []string
	for _, key := range cfg.Section(ini.DefaultSection).Keys() {
		p := strings.TrimSpace(key.Name())
		if p == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(root, filepath.FromSlash(p)))
	}
	return dirs, nil
}
