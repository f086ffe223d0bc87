// internal/checker/git.go
package checker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"

	"github.com/jackchuka/rootscan/internal/model"
	"github.com/jackchuka/rootscan/internal/vfs"
)

const gitMarker = ".git"

// Git recognizes git working copies: a .git directory, or a .git file holding
// a "gitdir:" pointer (linked worktrees and submodules).
type Git struct {
	ignores *ignoreCache
}

func NewGit() *Git {
	return &Git{ignores: newIgnoreCache(parseGitignore)}
}

func (g *Git) Kind() model.Kind    { return model.KindGit }
func (g *Git) MarkerName() string { return gitMarker }

func (g *Git) IsRoot(fsys vfs.FS, dir string) (bool, error) {
	gitDir, err := resolveGitDir(fsys, dir)
	if err != nil {
		return false, err
	}
	return gitDir != "", nil
}

func (g *Git) IsIgnored(fsys vfs.FS, root, dir string) (bool, error) {
	rel, ok := relSlash(root, dir)
	if !ok || rel == "." {
		return false, nil
	}
	files := []string{filepath.Join(root, ".gitignore")}
	if gitDir, err := resolveGitDir(fsys, root); err == nil && gitDir != "" {
		files = append(files, filepath.Join(gitDir, "info", "exclude"))
	}
	rules, err := g.ignores.load(fsys, files...)
	if err != nil {
		return false, fmt.Errorf("git: load ignore rules for %s: %w", root, err)
	}
	return rules.Match(rel), nil
}

// DependentRoots returns linked worktrees, the main worktree of a linked
// worktree, and registered submodules.
func (g *Git) DependentRoots(fsys vfs.FS, root string) ([]string, error) {
	gitDir, err := resolveGitDir(fsys, root)
	if err != nil || gitDir == "" {
		return nil, err
	}

	var out []string
	if main := mainWorktree(gitDir); main != "" {
		out = append(out, main)
	}
	out = append(out, discoverWorktrees(fsys, gitDir)...)

	subs, err := submodulePaths(fsys, root)
	if err != nil {
		return out, err
	}
	return append(out, subs...), nil
}

// resolveGitDir returns the git directory backing dir, or "" when dir is not a
// working copy root.
func resolveGitDir(fsys vfs.FS, dir string) (string, error) {
	gitPath := filepath.Join(dir, gitMarker)

	info, err := fsys.Lstat(gitPath)
	if err != nil {
		if vfs.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	if info.IsDir() {
		return gitPath, nil
	}
	if !info.Mode().IsRegular() {
		return "", nil
	}

	content, err := fsys.ReadFile(gitPath)
	if err != nil {
		return "", err
	}

	// Parse "gitdir: /path/to/main/.git/worktrees/name"
	line := strings.TrimSpace(string(content))
	target, ok := strings.CutPrefix(line, "gitdir:")
	if !ok {
		return "", nil
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	return filepath.Clean(target), nil
}

// mainWorktree extracts the main repo path from a linked worktree's git dir
// (".../main/.git/worktrees/name").
func mainWorktree(gitDir string) string {
	sep := string(filepath.Separator)
	marker := sep + gitMarker + sep + "worktrees" + sep
	if idx := strings.Index(gitDir, marker); idx != -1 {
		return gitDir[:idx]
	}
	return ""
}

// discoverWorktrees finds linked worktrees registered in <gitDir>/worktrees/.
// Each entry contains a "gitdir" file pointing to the worktree's .git file.
func discoverWorktrees(fsys vfs.FS, gitDir string) []string {
	wtDir := filepath.Join(gitDir, "worktrees")
	entries, err := fsys.ReadDir(wtDir)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		entryDir := filepath.Join(wtDir, e.Name())
		content, err := fsys.ReadFile(filepath.Join(entryDir, "gitdir"))
		if err != nil {
			continue
		}
		wtPath := strings.TrimSpace(string(content))
		if !filepath.IsAbs(wtPath) {
			wtPath = filepath.Join(entryDir, wtPath)
		}
		// gitdir points at the worktree's .git file; the working directory
		// is its parent.
		dirs = append(dirs, filepath.Dir(filepath.Clean(wtPath)))
	}
	return dirs
}

// submodulePaths reads the submodule working directories from .gitmodules.
func submodulePaths(fsys vfs.FS, root string) ([]string, error) {
	data, err := fsys.ReadFile(filepath.Join(root, ".gitmodules"))
	if err != nil {
		if vfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		AllowBooleanKeys:    true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("git: parse .gitmodules in %s: %w", root, err)
	}

	var dirs []string
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "submodule") {
			continue
		}
		p := strings.TrimSpace(sec.Key("path").String())
		if p == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(root, filepath.FromSlash(p)))
	}
	return dirs, nil
}
