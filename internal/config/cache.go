package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvCacheEnabled  = "QUILL_CACHE_ENABLED"
	EnvCacheAddr     = "QUILL_CACHE_ADDR"
	EnvCachePassword = "QUILL_CACHE_PASSWORD"
	EnvCacheDB       = "QUILL_CACHE_DB"
	EnvCacheTTL      = "QUILL_CACHE_TTL"
)

// CacheConfig holds the Redis extraction cache settings. When disabled,
// the gateway falls back to an in-process cache.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
}

// TTLDuration returns TTL as a time.Duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CacheConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CacheConfig) Merge(overlay *CacheConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
}

func (c *CacheConfig) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
}

func (c *CacheConfig) loadEnv() {
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvCacheAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvCachePassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvCacheDB); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DB = n
		}
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		c.TTL = v
	}
}

func (c *CacheConfig) validate() error {
	if _, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	return nil
}
