// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackchuka/rootscan/internal/model"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", cfg.MaxDepth)
	}
	if cfg.QuietPeriod != time.Second {
		t.Errorf("QuietPeriod = %v, want 1s", cfg.QuietPeriod)
	}
	if cfg.PollInterval != 0 {
		t.Errorf("PollInterval = %v, want 0", cfg.PollInterval)
	}
	if len(cfg.UpwardExcludes) != 1 || cfg.UpwardExcludes[0] != "~" {
		t.Errorf("UpwardExcludes = %v, want [~]", cfg.UpwardExcludes)
	}
	if len(cfg.ContentRoots) != 0 {
		t.Errorf("ContentRoots should be empty by default, got %d", len(cfg.ContentRoots))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max_depth"},
		{"bad regexp", func(c *Config) { c.IgnorePattern = "(" }, "ignore_pattern"},
		{"zero quiet period", func(c *Config) { c.QuietPeriod = 0 }, "quiet_period"},
		{"negative poll", func(c *Config) { c.PollInterval = -time.Second }, "poll_interval"},
		{"bad glob", func(c *Config) { c.WatchIgnore = []string{"[oops"} }, "watch_ignore"},
		{"unknown kind", func(c *Config) { c.Kinds = []model.Kind{"Bzr"} }, "kinds"},
		{"empty pattern ok", func(c *Config) { c.IgnorePattern = "" }, ""},
		{"zero depth ok", func(c *Config) { c.MaxDepth = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_WatchIgnored(t *testing.T) {
	cfg := &Config{
		WatchIgnore: []string{
			"**/node_modules/**",
			"**/target/**",
		},
	}

	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/code/project/src", false},
		{"/home/user/code/project/node_modules", true},
		{"/home/user/code/project/node_modules/pkg", true},
		{"/home/user/code/project/target/debug", true},
		{"/home/user/code/targets", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := cfg.WatchIgnored(tt.path)
			if got != tt.expected {
				t.Errorf("WatchIgnored(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestConfig_ScanSettings(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	cfg := NewConfig()
	cfg.MaxDepth = 4
	cfg.UpwardExcludes = []string{"~", "/srv"}

	s, err := cfg.ScanSettings()
	if err != nil {
		t.Fatalf("ScanSettings() error = %v", err)
	}
	if s.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", s.MaxDepth)
	}
	if len(s.UpwardExcludes) != 2 || s.UpwardExcludes[0] != home || s.UpwardExcludes[1] != "/srv" {
		t.Errorf("UpwardExcludes = %v, want [%s /srv]", s.UpwardExcludes, home)
	}
	if s.IgnoreName == nil || !s.IgnoreName.MatchString("node_modules") {
		t.Error("IgnoreName should match node_modules")
	}
	if s.IgnoreName.MatchString("src") {
		t.Error("IgnoreName should not match src")
	}

	cfg.IgnorePattern = ""
	s, err = cfg.ScanSettings()
	if err != nil {
		t.Fatalf("ScanSettings() error = %v", err)
	}
	if s.IgnoreName != nil {
		t.Error("IgnoreName should be nil for an empty pattern")
	}
}

func TestLoad_ReturnsDefaultsIfMissing(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", cfg.MaxDepth)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("max_depth: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load() should reject a negative max_depth")
	}
}

func TestLoad_ParsesDurations(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "quiet_period: 250ms\npoll_interval: 30s\nmax_depth: 3\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QuietPeriod != 250*time.Millisecond {
		t.Errorf("QuietPeriod = %v, want 250ms", cfg.QuietPeriod)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	// Unset keys keep their defaults.
	if len(cfg.UpwardExcludes) != 1 {
		t.Errorf("UpwardExcludes = %v, want default", cfg.UpwardExcludes)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := NewConfig()
	cfg.ContentRoots = []string{"/path/one", "/path/two"}
	cfg.MaxDepth = 7
	cfg.PollInterval = 10 * time.Second
	cfg.AutoRegister = true
	cfg.Kinds = []model.Kind{model.KindGit}

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(loaded.ContentRoots) != 2 {
		t.Errorf("ContentRoots length = %d, want 2", len(loaded.ContentRoots))
	}
	if loaded.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d, want 7", loaded.MaxDepth)
	}
	if loaded.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", loaded.PollInterval)
	}
	if !loaded.AutoRegister {
		t.Error("AutoRegister should be true")
	}
	if len(loaded.Kinds) != 1 || loaded.Kinds[0] != model.KindGit {
		t.Errorf("Kinds = %v, want [Git]", loaded.Kinds)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde only", "~", home},
		{"tilde with path", "~/code", filepath.Join(home, "code")},
		{"absolute path unchanged", "/usr/local/bin", "/usr/local/bin"},
		{"empty string", "", ""},
		{"relative path unchanged", "some/path", "some/path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandHome(tt.input)
			if got != tt.expected {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got, want := DefaultConfigPath(), "/custom/config/rootscan/config.yaml"; got != want {
			t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
		}
		if got, want := DefaultMappingPath(), "/custom/config/rootscan/mappings.yaml"; got != want {
			t.Errorf("DefaultMappingPath() = %q, want %q", got, want)
		}
	})

	t.Run("falls back to ~/.config when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		got := DefaultConfigPath()
		expected := filepath.Join(home, ".config", "rootscan", "config.yaml")
		if got != expected {
			t.Errorf("DefaultConfigPath() = %q, want %q", got, expected)
		}
	})

	t.Run("mapping_file overrides default", func(t *testing.T) {
		cfg := NewConfig()
		cfg.MappingFile = "/tmp/m.yaml"
		if got := cfg.MappingPath(); got != "/tmp/m.yaml" {
			t.Errorf("MappingPath() = %q, want /tmp/m.yaml", got)
		}
	})
}
