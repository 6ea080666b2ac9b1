package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr               string `yaml:"addr"`
	RequestTimeoutSecs int    `yaml:"request_timeout_seconds"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite3 or postgres
	DSN    string `yaml:"dsn"`
}

// RedisConfig holds Redis connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig selects the cache backend and its expirations. TTLs are plain
// seconds in the file; the accessors return durations, and values above the
// cache layer's ceilings are rejected when the container builds the cache
// services.
type CacheConfig struct {
	Backend       string      `yaml:"backend"` // memory or redis
	EntityTTLSecs int         `yaml:"entity_ttl_seconds"`
	ListTTLSecs   int         `yaml:"list_ttl_seconds"`
	Redis         RedisConfig `yaml:"redis"`
}

// Config is the central configuration struct.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Storage  StorageConfig `yaml:"storage"`
	Cache    CacheConfig   `yaml:"cache"`
	LogLevel string        `yaml:"log_level"`
}

// Default returns a Config with sensible defaults: an in-memory store and
// cache listening on :8080.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               ":8080",
			RequestTimeoutSecs: 30,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Backend:       "memory",
			EntityTTLSecs: 3600,
			ListTTLSecs:   300,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file, starting from defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHELFD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SHELFD_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("SHELFD_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("SHELFD_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SHELFD_REDIS_ADDR"); v != "" {
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("SHELFD_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Redis.Password = v
	}
	if v := os.Getenv("SHELFD_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Redis.DB = db
		}
	}
	if v := os.Getenv("SHELFD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func (c *ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c *CacheConfig) EntityTTL() time.Duration {
	return time.Duration(c.EntityTTLSecs) * time.Second
}

func (c *CacheConfig) ListTTL() time.Duration {
	return time.Duration(c.ListTTLSecs) * time.Second
}
