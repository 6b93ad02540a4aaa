package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ontolayout/pkg/config"
)

func TestUserPaths(t *testing.T) {
	home := t.TempDir()
	tests := []struct {
		name       string
		cacheHome  string
		configHome string
		wantCache  string
		wantConfig string
	}{
		{
			name:       "home defaults",
			wantCache:  filepath.Join(home, ".cache", "ontolayout"),
			wantConfig: filepath.Join(home, ".config", "ontolayout", "config.toml"),
		},
		{
			name:       "xdg dirs",
			cacheHome:  "/srv/cache",
			configHome: "/srv/config",
			wantCache:  filepath.Join("/srv/cache", "ontolayout"),
			wantConfig: filepath.Join("/srv/config", "ontolayout", "config.toml"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", home)
			t.Setenv("XDG_CACHE_HOME", tt.cacheHome)
			t.Setenv("XDG_CONFIG_HOME", tt.configHome)

			dir, err := cacheDir()
			if err != nil || dir != tt.wantCache {
				t.Errorf("cacheDir() = %q, %v, want %q", dir, err, tt.wantCache)
			}
			path, err := configPath()
			if err != nil || path != tt.wantConfig {
				t.Errorf("configPath() = %q, %v, want %q", path, err, tt.wantConfig)
			}
		})
	}
}

func TestFileCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/srv/cache")

	cfg := config.Default()
	if dir, _ := fileCacheDir(cfg); dir != filepath.Join("/srv/cache", appName) {
		t.Errorf("default dir = %q", dir)
	}
	cfg.Cache.Dir = "/var/lib/ontolayout"
	if dir, _ := fileCacheDir(cfg); dir != "/var/lib/ontolayout" {
		t.Errorf("configured dir = %q", dir)
	}
}

func TestTargetConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/srv/config")
	c := New(&bytes.Buffer{}, log.InfoLevel)

	tests := []struct {
		name   string
		flag   string
		args   []string
		expect string
	}{
		{"user file", "", nil, filepath.Join("/srv/config", appName, configFile)},
		{"flag", "team.toml", nil, "team.toml"},
		{"argument wins", "team.toml", []string{"local.toml"}, "local.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.ConfigPath = tt.flag
			got, err := c.targetConfigPath(tt.args)
			if err != nil || got != tt.expect {
				t.Errorf("targetConfigPath(%v) = %q, %v, want %q", tt.args, got, err, tt.expect)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(&bytes.Buffer{}, log.InfoLevel)
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if want := config.Default(); cfg.Solver.Name != want.Solver.Name || cfg.Server != want.Server {
		t.Errorf("missing config file should give defaults, got %+v %+v", cfg.Solver, cfg.Server)
	}

	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[layout"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.ConfigPath = path
	if _, err := c.loadConfig(); err == nil {
		t.Error("broken --config file accepted")
	}
}
