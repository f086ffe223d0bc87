// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jackchuka/rootscan/internal/model"
)

type Config struct {
	// Detection
	ContentRoots   []string     `yaml:"content_roots"`
	MaxDepth       int          `yaml:"max_depth"`
	IgnorePattern  string       `yaml:"ignore_pattern"`
	UpwardExcludes []string     `yaml:"upward_excludes"`
	Kinds          []model.Kind `yaml:"kinds"`

	// Watcher
	QuietPeriod  time.Duration `yaml:"quiet_period"`
	PollInterval time.Duration `yaml:"poll_interval"`
	WatchIgnore  []string      `yaml:"watch_ignore"`

	// Mappings
	MappingFile  string `yaml:"mapping_file"`
	AutoRegister bool   `yaml:"auto_register"`

	LogLevel string `yaml:"log_level"`
}

func NewConfig() *Config {
	return &Config{
		ContentRoots:   []string{},
		MaxDepth:       2,
		IgnorePattern:  `^(node_modules|\.cache|\.npm|\.pnpm|__pycache__|\.venv|venv|\.tox)$`,
		UpwardExcludes: []string{"~"},
		QuietPeriod:    time.Second,
		PollInterval:   0,
		WatchIgnore: []string{
			"**/node_modules/**",
			"**/.cache/**",
			"**/.npm/**",
			"**/.pnpm/**",
			"**/__pycache__/**",
			"**/.venv/**",
			"**/venv/**",
			"**/.tox/**",
			"**/target/**",
			"**/dist/**",
		},
		LogLevel: "info",
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth))
	}
	if c.IgnorePattern != "" {
		if _, err := regexp.Compile(c.IgnorePattern); err != nil {
			errs = append(errs, fmt.Errorf("ignore_pattern: %w", err))
		}
	}
	if c.QuietPeriod <= 0 {
		errs = append(errs, fmt.Errorf("quiet_period must be positive, got %v", c.QuietPeriod))
	}
	if c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be >= 0, got %v", c.PollInterval))
	}
	for _, p := range c.WatchIgnore {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("watch_ignore: invalid pattern %q", p))
		}
	}
	known := []model.Kind{model.KindGit, model.KindHg, model.KindSvn}
	for _, k := range c.Kinds {
		if !slices.Contains(known, k) {
			errs = append(errs, fmt.Errorf("kinds: unknown vcs %q", k))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WatchIgnored reports whether path matches a watch_ignore glob. Ignored
// directories are not registered with the change listener.
func (c *Config) WatchIgnored(path string) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range c.WatchIgnore {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		// "**/x/**" should also match the directory x itself.
		if ok, _ := doublestar.Match(pattern, path+"/"); ok {
			return true
		}
	}
	return false
}

// Scan is the part of the configuration a detection run reads at its start.
type Scan struct {
	MaxDepth       int
	IgnoreName     *regexp.Regexp
	UpwardExcludes []string
}

// ScanSettings snapshots the detection settings with paths expanded.
func (c *Config) ScanSettings() (Scan, error) {
	s := Scan{
		MaxDepth:       c.MaxDepth,
		UpwardExcludes: expandPaths(c.UpwardExcludes),
	}
	if c.IgnorePattern != "" {
		re, err := regexp.Compile(c.IgnorePattern)
		if err != nil {
			return Scan{}, fmt.Errorf("config: ignore_pattern: %w", err)
		}
		s.IgnoreName = re
	}
	return s, nil
}
