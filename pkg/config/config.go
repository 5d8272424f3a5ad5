// Package config loads lineagescope settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/lineagescope/config.toml unless a path
// is given explicitly. Every field is optional; missing fields keep the
// values from [Default]. Server and cache fields can also be set from
// LINEAGESCOPE_* environment variables, which win over the file.
//
// # Example
//
//	[layout]
//	package_radius = 320
//
//	[layout.anchor]
//	x = 400
//	y = 300
//
//	[filter]
//	risk_threshold = 75
//	stable_ids = true
//
//	[server]
//	addr = ":8080"
//	session_ttl = "12h"
//	session_backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[cache]
//	ttl = "48h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/lineagescope/pkg/errors"
	"github.com/matzehuels/lineagescope/pkg/lineage"
	"github.com/matzehuels/lineagescope/pkg/report"
)

// Session backends accepted in [Server.SessionBackend].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

const appName = "lineagescope"

// Config is the full configuration file.
type Config struct {
	Layout lineage.LayoutConfig `toml:"layout"`
	Filter Filter               `toml:"filter"`
	Server Server               `toml:"server"`
	Cache  Cache                `toml:"cache"`
}

// Filter configures the risk filter and id numbering.
type Filter struct {
	// RiskThreshold is taken as written: 0 keeps every package when the
	// filter is on. Omit the key to keep the default of 50.
	RiskThreshold float64 `toml:"risk_threshold"`
	StableIDs     bool    `toml:"stable_ids"`
}

// Server configures the HTTP adapter.
type Server struct {
	Addr           string   `toml:"addr"`
	SessionTTL     Duration `toml:"session_ttl"`
	SessionBackend string   `toml:"session_backend"`
	SessionDir     string   `toml:"session_dir"`
	RedisAddr      string   `toml:"redis_addr"`
	RedisPassword  string   `toml:"redis_password"`
	RedisDB        int      `toml:"redis_db"`
	MongoURI       string   `toml:"mongo_uri"`
	MongoDatabase  string   `toml:"mongo_database"`
}

// Cache configures the artifact cache.
type Cache struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// Duration is a time.Duration written as a string like "12h" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: lineage.DefaultLayout(),
		Filter: Filter{
			RiskThreshold: report.RiskFilterThreshold,
			StableIDs:     true,
		},
		Server: Server{
			Addr:           ":8080",
			SessionTTL:     Duration{24 * time.Hour},
			SessionBackend: BackendMemory,
			MongoDatabase:  appName,
		},
		Cache: Cache{
			TTL: Duration{24 * time.Hour},
		},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads the config at path over [Default], then applies environment
// overrides. An empty path means [DefaultPath]; a missing default file is not
// an error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			switch {
			case os.IsNotExist(err) && !explicit:
			case os.IsNotExist(err):
				return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			default:
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
			}
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if c.Filter.RiskThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "filter.risk_threshold must not be negative")
	}
	if c.Layout.PackageRadius < 0 || c.Layout.ProcedureRadius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout radii must not be negative")
	}
	if c.Server.SessionTTL.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ttl must not be negative")
	}
	switch c.Server.SessionBackend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Server.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "server.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Server.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "server.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown session backend %q", c.Server.SessionBackend)
	}
	return nil
}

// Write encodes c as TOML to path, creating parent directories.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// =============================================================================
// Environment overrides
// =============================================================================

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v := getenv(name)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", name)
		}
		dst.Duration = d
		return nil
	}

	str("LINEAGESCOPE_ADDR", &c.Server.Addr)
	str("LINEAGESCOPE_SESSION_BACKEND", &c.Server.SessionBackend)
	str("LINEAGESCOPE_SESSION_DIR", &c.Server.SessionDir)
	str("LINEAGESCOPE_REDIS_ADDR", &c.Server.RedisAddr)
	str("LINEAGESCOPE_REDIS_PASSWORD", &c.Server.RedisPassword)
	str("LINEAGESCOPE_MONGO_URI", &c.Server.MongoURI)
	str("LINEAGESCOPE_MONGO_DATABASE", &c.Server.MongoDatabase)
	str("LINEAGESCOPE_CACHE_DIR", &c.Cache.Dir)

	if v := getenv("LINEAGESCOPE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "LINEAGESCOPE_REDIS_DB")
		}
		c.Server.RedisDB = n
	}
	if v := getenv("LINEAGESCOPE_CACHE_DISABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "LINEAGESCOPE_CACHE_DISABLED")
		}
		c.Cache.Disabled = b
	}
	if err := dur("LINEAGESCOPE_SESSION_TTL", &c.Server.SessionTTL); err != nil {
		return err
	}
	return dur("LINEAGESCOPE_CACHE_TTL", &c.Cache.TTL)
}
