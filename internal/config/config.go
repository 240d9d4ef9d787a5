// Package config loads settings from the environment and an optional .env file using Viper.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the contacts client configuration.
type Config struct {
	// APIURL is the contacts API root; GET/POST {APIURL}/contacts. Empty means offline only.
	APIURL string `mapstructure:"CONTACTS_API_URL"`
	// APITimeout is the per-request timeout (e.g. "10s").
	APITimeout string `mapstructure:"CONTACTS_API_TIMEOUT"`
	// CachePath is the SQLite cache file. Defaults to ~/.contacts/cache.db.
	CachePath string `mapstructure:"CONTACTS_CACHE_PATH"`
	// CacheKey names the slot holding the contact list snapshot.
	CacheKey string `mapstructure:"CONTACTS_CACHE_KEY"`
}

// Load reads .env (if present), then the environment. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("CONTACTS_API_URL", "http://localhost:3001")
	v.SetDefault("CONTACTS_API_TIMEOUT", "10s")
	v.SetDefault("CONTACTS_CACHE_PATH", "")
	v.SetDefault("CONTACTS_CACHE_KEY", "contacts")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.CachePath == "" {
		cfg.CachePath = defaultCachePath()
	}
	if cfg.CacheKey == "" {
		return nil, errors.New("config: CONTACTS_CACHE_KEY must not be empty")
	}
	if _, err := time.ParseDuration(cfg.APITimeout); err != nil {
		return nil, errors.New("config: CONTACTS_API_TIMEOUT must be a duration such as 10s")
	}

	return &cfg, nil
}

// Timeout parses APITimeout. Returns 10s if unset or invalid.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.APITimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func defaultCachePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".contacts", "cache.db")
}
