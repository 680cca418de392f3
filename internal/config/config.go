// Package config loads service configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Server ServerConfig
	MSW    MSWConfig
	Spots  SpotsConfig
	Cache  CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// MSWConfig holds upstream provider settings.
type MSWConfig struct {
	// APIKey is the provisioned provider key. Required for any fetch; how it
	// gets provisioned is out of scope here.
	APIKey string
	// DefaultUnits is the unit system used when a request does not name one.
	DefaultUnits string
}

// SpotsConfig holds spot snapshot settings.
type SpotsConfig struct {
	// SnapshotPath is the crawler-produced spot metadata file.
	SnapshotPath string
	// RefreshInterval controls periodic snapshot reloads; zero disables them.
	RefreshInterval time.Duration
}

// CacheConfig holds forecast cache settings.
type CacheConfig struct {
	// TTL is the freshness window for cached forecasts.
	TTL time.Duration
	// DBPath is the persistent cache database; empty keeps the cache
	// memory-only.
	DBPath string
}

// Load reads configuration from surfcast.yaml and SURFCAST_* environment
// variables, with defaults for everything but the API key.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("surfcast")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/surfcast")

	v.SetDefault("server.port", 8080)
	v.SetDefault("msw.apikey", "")
	v.SetDefault("msw.defaultunits", "us")
	v.SetDefault("spots.snapshotpath", "data/spots.json")
	v.SetDefault("spots.refreshinterval", 24*time.Hour)
	v.SetDefault("cache.ttl", 3*time.Hour)
	v.SetDefault("cache.dbpath", "")

	v.SetEnvPrefix("SURFCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, the defaults plus env cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
