package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name     string
		xdg      string
		cfgDir   string
		wantPath string
	}{
		{"xdg unset", "", "", filepath.Join(home, ".cache", appName)},
		{"xdg set", "/tmp/xdg-cache", "", filepath.Join("/tmp/xdg-cache", appName)},
		{"config wins over xdg", "/tmp/xdg-cache", "/srv/lineagescope/cache", "/srv/lineagescope/cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			c := testCLI(t)
			c.Config.Cache.Dir = tt.cfgDir

			got, err := c.cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error = %v", err)
			}
			if got != tt.wantPath {
				t.Errorf("cacheDir() = %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestNewCacheUsesCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "graphs")
	c := testCLI(t)
	c.Config.Cache.Dir = dir

	ch, err := c.newCache(false)
	if err != nil {
		t.Fatalf("newCache() error = %v", err)
	}
	defer ch.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir %s not created: %v", dir, err)
	}
}
