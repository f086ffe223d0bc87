package checker

import (
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jackchuka/rootscan/internal/vfs"
)

// ignoreCacheSize bounds how many parsed ignore files a checker keeps.
const ignoreCacheSize = 256

type ignoreRule struct {
	glob     string
	re       *regexp.Regexp
	negate   bool
	anchored bool
}

func (r ignoreRule) matches(rel string) bool {
	if r.re != nil {
		return r.re.MatchString(rel)
	}
	target := rel
	if !r.anchored {
		target = path.Base(rel)
	}
	ok, err := doublestar.Match(r.glob, target)
	return err == nil && ok
}

// ignoreRules is an ordered rule list; the last matching rule wins.
type ignoreRules struct {
	rules []ignoreRule
}

// Match reports whether the slash-separated relative directory rel, or any of
// its ancestors, is ignored. Nothing under an ignored directory can be
// re-included.
func (r *ignoreRules) Match(rel string) bool {
	if r == nil || len(r.rules) == 0 || rel == "" || rel == "." {
		return false
	}
	parts := strings.Split(rel, "/")
	for i := range parts {
		if r.matchOne(strings.Join(parts[:i+1], "/")) {
			return true
		}
	}
	return false
}

func (r *ignoreRules) matchOne(rel string) bool {
	ignored := false
	for _, rule := range r.rules {
		if rule.matches(rel) {
			ignored = !rule.negate
		}
	}
	return ignored
}

// parseGitignore reads gitignore syntax. Only directory-relevant semantics are
// kept since callers only ever test directories.
func parseGitignore(data []byte) []ignoreRule {
	var rules []ignoreRule
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var rule ignoreRule
		if strings.HasPrefix(line, "!") {
			rule.negate = true
			line = line[1:]
		}
		line = strings.TrimPrefix(line, `\`)
		line = strings.TrimSuffix(line, "/")
		if strings.HasPrefix(line, "/") {
			rule.anchored = true
			line = strings.TrimPrefix(line, "/")
		} else if strings.Contains(line, "/") {
			rule.anchored = true
		}
		if line == "" || !doublestar.ValidatePattern(line) {
			continue
		}
		rule.glob = line
		rules = append(rules, rule)
	}
	return rules
}

// parseHgignore reads .hgignore syntax: regexp by default, switchable with
// "syntax: glob" / "syntax: regexp" lines.
func parseHgignore(data []byte) []ignoreRule {
	var rules []ignoreRule
	glob := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if s, ok := strings.CutPrefix(line, "syntax:"); ok {
			switch strings.TrimSpace(s) {
			case "glob":
				glob = true
			case "regexp", "re":
				glob = false
			}
			continue
		}

		pattern := line
		if p, ok := strings.CutPrefix(line, "glob:"); ok {
			pattern = p
			if !doublestar.ValidatePattern(p) {
				continue
			}
			rules = append(rules, globRule(p))
			continue
		}
		if p, ok := strings.CutPrefix(line, "re:"); ok {
			if re, err := regexp.Compile(p); err == nil {
				rules = append(rules, ignoreRule{re: re})
			}
			continue
		}

		if glob {
			if doublestar.ValidatePattern(pattern) {
				rules = append(rules, globRule(pattern))
			}
			continue
		}
		if re, err := regexp.Compile(pattern); err == nil {
			rules = append(rules, ignoreRule{re: re})
		}
	}
	return rules
}

func globRule(p string) ignoreRule {
	p = strings.TrimSuffix(p, "/")
	if strings.Contains(p, "/") {
		return ignoreRule{glob: "**/" + p, anchored: true}
	}
	return ignoreRule{glob: p}
}

type ignoreKey struct {
	file    string
	modTime time.Time
	size    int64
}

// ignoreCache memoizes parsed ignore files, keyed by path and stat identity so
// an edited file is re-read.
type ignoreCache struct {
	parse func([]byte) []ignoreRule
	cache *lru.Cache[ignoreKey, *ignoreRules]
}

func newIgnoreCache(parse func([]byte) []ignoreRule) *ignoreCache {
	c, err := lru.New[ignoreKey, *ignoreRules](ignoreCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &ignoreCache{parse: parse, cache: c}
}

// load returns the merged rules of files, in order. Missing files contribute
// nothing.
func (c *ignoreCache) load(fsys vfs.FS, files ...string) (*ignoreRules, error) {
	merged := &ignoreRules{}
	for _, file := range files {
		rules, err := c.loadOne(fsys, file)
		if err != nil {
			return nil, err
		}
		if rules != nil {
			merged.rules = append(merged.rules, rules.rules...)
		}
	}
	return merged, nil
}

func (c *ignoreCache) loadOne(fsys vfs.FS, file string) (*ignoreRules, error) {
	info, err := fsys.Stat(file)
	if err != nil {
		if vfs.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}

	key := statKey(file, info)
	if rules, ok := c.cache.Get(key); ok {
		return rules, nil
	}

	data, err := fsys.ReadFile(file)
	if err != nil {
		return nil, err
	}
	rules := &ignoreRules{rules: c.parse(data)}
	c.cache.Add(key, rules)
	return rules, nil
}

func statKey(file string, info fs.FileInfo) ignoreKey {
	return ignoreKey{file: file, modTime: info.ModTime(), size: info.Size()}
}

// relSlash returns dir relative to root with forward slashes, and false when
// dir is not inside root.
func relSlash(root, dir string) (string, bool) {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
