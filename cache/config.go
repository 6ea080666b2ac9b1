package cache

import "time"

// TTL ceilings per family class. List entries are abandoned, not deleted,
// when their generation moves on, so the list TTL is the hard bound on how
// long an orphaned entry can occupy memory. Entity entries are deleted
// explicitly on their own mutation, which makes a longer TTL safe.
const (
	MaxListTTL   = 300 * time.Second
	MaxEntityTTL = 3600 * time.Second
)

// Config holds the settings for a single cache service (one value family).
type Config struct {
	// Capacity is the maximum number of entries the service may hold.
	Capacity int

	// NumShards controls concurrency of the in-process backend.
	NumShards int

	// TTL is the time-to-live applied to every entry the service stores.
	TTL time.Duration

	// MaxTTL, when set, is the ceiling Validate enforces on TTL.
	MaxTTL time.Duration

	// EvictionPercentage is what share of entries the in-process backend
	// evicts when full. Must be between 1 and 100.
	EvictionPercentage int
}

// DefaultEntityConfig returns the configuration for single-entity caches.
func DefaultEntityConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		MaxTTL:             MaxEntityTTL,
		EvictionPercentage: 10,
	}
}

// DefaultListConfig returns the configuration for list-result caches. Lists
// are more volatile than entities, so they carry the short safety-net TTL.
func DefaultListConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		MaxTTL:             MaxListTTL,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.MaxTTL > 0 && c.TTL > c.MaxTTL {
		return &ConfigError{Field: "TTL", Message: "exceeds the family ceiling " + c.MaxTTL.String()}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "cache config error in field " + e.Field + ": " + e.Message
}
