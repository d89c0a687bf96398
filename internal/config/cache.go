package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CacheConfig defines settings for the view cache that stores rendered
// invoice list responses in Redis. When Enabled is false or no Redis client
// is configured, the cache is bypassed. TTL bounds how long a view lives even
// if no mutation invalidates it. Prefix namespaces the keys and MaxBodyBytes
// caps the size of a stored response.
type CacheConfig struct {
	Enabled      bool          `envconfig:"CACHE_ENABLED" default:"true"`
	TTL          time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	Prefix       string        `envconfig:"CACHE_PREFIX" default:"view"`
	MaxBodyBytes int           `envconfig:"CACHE_MAX_BODY_BYTES" default:"1048576"`
}

// LoadCacheConfig reads CACHE_* variables, falling back to defaults.
func LoadCacheConfig() (CacheConfig, error) {
	var c CacheConfig
	if err := envconfig.Process("", &c); err != nil {
		return CacheConfig{}, err
	}
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	return c, nil
}
