// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/yomira-reader/internal/reader"
)

// # Configuration Schema

// Config holds all runtime configuration for the reader API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL     string        `env:"REDIS_URL,required,notEmpty"`
	PageCacheTTL time.Duration `env:"PAGE_CACHE_TTL" envDefault:"10m"`

	// Public half of the account service's signing key
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Page lookups against the repository
	FetchAttempts   uint          `env:"FETCH_ATTEMPTS"    envDefault:"3"`
	FetchRetryDelay time.Duration `env:"FETCH_RETRY_DELAY" envDefault:"200ms"`

	// Reader engine tuning, in layout units
	LoadThreshold float64 `env:"READER_LOAD_THRESHOLD" envDefault:"500"`
	PageExtent    float64 `env:"READER_PAGE_EXTENT"    envDefault:"250"`
	PrefetchDepth int     `env:"READER_PREFETCH_DEPTH" envDefault:"1"`
	ReadingMode   string  `env:"READER_MODE"           envDefault:"vertical"`
	EventBuffer   int     `env:"READER_EVENT_BUFFER"   envDefault:"64"`

	// SessionIdleTTL closes reading sessions nobody touched for this long.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	cfg := &Config{}

	// Fails if any field marked 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if _, err := reader.ParseReadingMode(cfg.ReadingMode); err != nil {
		return nil, fmt.Errorf("config: READER_MODE: %w", err)
	}
	if cfg.FetchAttempts == 0 {
		return nil, fmt.Errorf("config: FETCH_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

// ReaderOptions converts the reader settings into engine options.
func (c *Config) ReaderOptions() reader.Options {
	options := reader.DefaultOptions()
	options.LoadThreshold = c.LoadThreshold
	options.PageExtent = c.PageExtent
	options.PrefetchDepth = c.PrefetchDepth
	options.EventBuffer = c.EventBuffer
	if mode, err := reader.ParseReadingMode(c.ReadingMode); err == nil {
		options.Mode = mode
	}
	return options
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
