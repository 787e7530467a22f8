// Package config loads the planview service configuration from a TOML file
// with sensible defaults, so the binary runs without any file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Pool   PoolConfig   `toml:"pool"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// CORSOrigins lists allowed origins for browser clients. Empty allows
	// any origin, a permissive default for local development.
	CORSOrigins []string `toml:"cors_origins"`

	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// PoolConfig configures the analysis worker pool.
type PoolConfig struct {
	// Workers is the fixed pool size; 0 means one per CPU.
	Workers int `toml:"workers"`

	// TaskTimeout bounds one analysis; 0 keeps the default, negative
	// disables the timeout.
	TaskTimeout duration `toml:"task_timeout"`
}

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis", "mongo", "file", or "none".
	Backend string `toml:"backend"`

	// TTL bounds entry lifetime; 0 keeps entries forever.
	TTL duration `toml:"ttl"`

	// Dir is the file backend's directory.
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig holds redis backend settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds mongo backend settings.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// duration lets TOML carry values like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: duration{10 * time.Second},
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     duration{24 * time.Hour},
		},
	}
}

// Load reads a TOML config file on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "memory", "redis", "mongo", "file", "none":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "file" && c.Cache.Dir == "" {
		return fmt.Errorf("cache backend %q needs cache.dir", c.Cache.Backend)
	}
	return nil
}
