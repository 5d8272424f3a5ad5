package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/lineage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Filter.StableIDs {
		t.Error("StableIDs should default to true")
	}
	if cfg.Filter.RiskThreshold != 50 {
		t.Errorf("RiskThreshold = %v, want 50", cfg.Filter.RiskThreshold)
	}
	if cfg.Layout != lineage.DefaultLayout() {
		t.Errorf("Layout = %+v, want default", cfg.Layout)
	}
	if cfg.Server.SessionBackend != BackendMemory {
		t.Errorf("SessionBackend = %q, want memory", cfg.Server.SessionBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
package_radius = 320

[layout.anchor]
x = 10
y = 20

[filter]
risk_threshold = 75
stable_ids = false

[server]
addr = ":9090"
session_ttl = "12h"

[cache]
ttl = "48h"
disabled = true
`)
	t.Setenv("LINEAGESCOPE_ADDR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Layout.PackageRadius != 320 {
		t.Errorf("PackageRadius = %v, want 320", cfg.Layout.PackageRadius)
	}
	if cfg.Layout.Anchor != (lineage.Position{X: 10, Y: 20}) {
		t.Errorf("Anchor = %+v, want {10 20}", cfg.Layout.Anchor)
	}
	// Unset fields keep their defaults
	if cfg.Layout.ProcedureRadius != lineage.DefaultLayout().ProcedureRadius {
		t.Errorf("ProcedureRadius = %v, want default", cfg.Layout.ProcedureRadius)
	}
	if cfg.Filter.RiskThreshold != 75 || cfg.Filter.StableIDs {
		t.Errorf("Filter = %+v, want {75 false}", cfg.Filter)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Server.SessionTTL.Duration != 12*time.Hour {
		t.Errorf("SessionTTL = %v, want 12h", cfg.Server.SessionTTL)
	}
	if cfg.Cache.TTL.Duration != 48*time.Hour || !cfg.Cache.Disabled {
		t.Errorf("Cache = %+v, want 48h disabled", cfg.Cache)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}

	// A missing default file is fine
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") = %v, want nil", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "[filter\nrisk_threshold = ")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(malformed) = %v, want INVALID_CONFIG", err)
	}

	path = writeConfig(t, "[server]\nsession_ttl = \"soon\"\n")
	if _, err := Load(path); err == nil {
		t.Error("bad duration should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":9090\"\n")
	t.Setenv("LINEAGESCOPE_ADDR", ":7070")
	t.Setenv("LINEAGESCOPE_SESSION_BACKEND", "redis")
	t.Setenv("LINEAGESCOPE_REDIS_ADDR", "localhost:6379")
	t.Setenv("LINEAGESCOPE_REDIS_DB", "3")
	t.Setenv("LINEAGESCOPE_CACHE_DISABLED", "true")
	t.Setenv("LINEAGESCOPE_SESSION_TTL", "90m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q, want :7070", cfg.Server.Addr)
	}
	if cfg.Server.SessionBackend != BackendRedis || cfg.Server.RedisAddr != "localhost:6379" || cfg.Server.RedisDB != 3 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Cache.Disabled {
		t.Error("Cache.Disabled should be set from env")
	}
	if cfg.Server.SessionTTL.Duration != 90*time.Minute {
		t.Errorf("SessionTTL = %v, want 90m", cfg.Server.SessionTTL)
	}

	t.Setenv("LINEAGESCOPE_REDIS_DB", "three")
	if _, err := Load(path); err == nil {
		t.Error("non-numeric LINEAGESCOPE_REDIS_DB should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"negative threshold", func(c *Config) { c.Filter.RiskThreshold = -1 }, true},
		{"negative radius", func(c *Config) { c.Layout.PackageRadius = -5 }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL.Duration = -time.Second }, true},
		{"file backend", func(c *Config) { c.Server.SessionBackend = BackendFile }, false},
		{"redis without addr", func(c *Config) { c.Server.SessionBackend = BackendRedis }, true},
		{"redis with addr", func(c *Config) {
			c.Server.SessionBackend = BackendRedis
			c.Server.RedisAddr = "localhost:6379"
		}, false},
		{"mongo without uri", func(c *Config) { c.Server.SessionBackend = BackendMongo }, true},
		{"unknown backend", func(c *Config) { c.Server.SessionBackend = "etcd" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Filter.RiskThreshold = 80
	cfg.Server.SessionTTL = Duration{3 * time.Hour}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := cfg.Write(path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Filter.RiskThreshold != 80 {
		t.Errorf("RiskThreshold = %v, want 80", got.Filter.RiskThreshold)
	}
	if got.Server.SessionTTL.Duration != 3*time.Hour {
		t.Errorf("SessionTTL = %v, want 3h", got.Server.SessionTTL)
	}
}
