package config

import (
	"testing"
	"time"

	"github.com/shelfd/shelfd/pkg/testsupport"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q", cfg.Storage.Driver)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if got := cfg.Cache.EntityTTL(); got != time.Hour {
		t.Errorf("EntityTTL() = %v, want 1h", got)
	}
	if got := cfg.Cache.ListTTL(); got != 5*time.Minute {
		t.Errorf("ListTTL() = %v, want 5m", got)
	}
	if got := cfg.Server.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := testsupport.TempFile(t, []byte(`
server:
  addr: ":9090"
storage:
  driver: sqlite3
  dsn: file:shelfd.db
cache:
  backend: redis
  list_ttl_seconds: 120
  redis:
    addr: redis:6379
    db: 2
log_level: debug
`))

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "sqlite3" || cfg.Storage.DSN != "file:shelfd.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if got := cfg.Cache.ListTTL(); got != 2*time.Minute {
		t.Errorf("ListTTL() = %v, want 2m", got)
	}
	// unset fields keep their defaults
	if got := cfg.Cache.EntityTTL(); got != time.Hour {
		t.Errorf("EntityTTL() = %v, want default 1h", got)
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := testsupport.TempFile(t, []byte("server: [not a mapping"))
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("LoadFromFile() = nil error, want parse failure")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHELFD_ADDR", ":7070")
	t.Setenv("SHELFD_STORAGE_DRIVER", "postgres")
	t.Setenv("SHELFD_STORAGE_DSN", "postgres://localhost/shelfd")
	t.Setenv("SHELFD_CACHE_BACKEND", "redis")
	t.Setenv("SHELFD_REDIS_ADDR", "cache:6379")
	t.Setenv("SHELFD_REDIS_DB", "3")
	t.Setenv("SHELFD_LOG_LEVEL", "warn")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("Storage.Driver = %q", cfg.Storage.Driver)
	}
	if cfg.Cache.Redis.Addr != "cache:6379" || cfg.Cache.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromEnvIgnoresBadRedisDB(t *testing.T) {
	t.Setenv("SHELFD_REDIS_DB", "not-a-number")
	cfg := Default()
	LoadFromEnv(cfg)
	if cfg.Cache.Redis.DB != 0 {
		t.Errorf("Redis.DB = %d, want default 0", cfg.Cache.Redis.DB)
	}
}
