// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package config defines the Newsatlas configuration structure and its
// layered loader (defaults, YAML file, environment variables) built on
// Koanf v2.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Newsatlas server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Cache     CacheConfig     `koanf:"cache"`
	Geo       GeoConfig       `koanf:"geo"`
	Trending  TrendingConfig  `koanf:"trending"`
	API       APIConfig       `koanf:"api"`
	LLM       LLMConfig       `koanf:"llm"`
	Simulator SimulatorConfig `koanf:"simulator"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// StoreConfig holds article and event persistence settings.
// With InMemory set, Badger is bypassed entirely; this is the mode the
// test suite runs in.
type StoreConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	SeedFile   string        `koanf:"seed_file"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// CacheConfig holds retrieval cache settings.
type CacheConfig struct {
	// TTL is how long a cached retrieval result stays fresh.
	TTL time.Duration `koanf:"ttl"`

	// MissTimeout bounds the dispatcher call on a cache miss. A miss that
	// takes longer fails with a retrieval timeout rather than hanging the
	// caller.
	MissTimeout time.Duration `koanf:"miss_timeout"`

	// Backend selects the backing store: "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the Badger directory when Backend is "badger".
	Path string `koanf:"path"`
}

// GeoConfig holds spatial index tuning.
type GeoConfig struct {
	// CellSizeKm is the approximate spatial cell edge length. Coarser
	// cells shrink the index but push more work onto the per-entity
	// haversine filter; finer cells do the opposite.
	CellSizeKm float64 `koanf:"cell_size_km"`
}

// TrendingConfig holds trending score tuning.
type TrendingConfig struct {
	// ScoreDecayHours is the half-life of an event's contribution.
	ScoreDecayHours float64 `koanf:"score_decay_hours"`

	// WindowHours bounds how far back events qualify for trending.
	WindowHours float64 `koanf:"window_hours"`

	// MinInteractions is the minimum qualifying event count for an
	// article to appear in a trending list.
	MinInteractions int `koanf:"min_interactions"`
}

// APIConfig holds request shaping limits.
type APIConfig struct {
	DefaultLimit          int     `koanf:"default_limit"`
	MaxArticlesPerRequest int     `koanf:"max_articles_per_request"`
	DefaultRadiusKm       float64 `koanf:"default_radius_km"`
	MaxRadiusKm           float64 `koanf:"max_radius_km"`
}

// LLMConfig holds query-understanding service settings. The service is
// optional; with Enabled false (or on any failure) queries fall back to
// heuristic analysis.
type LLMConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Model         string        `koanf:"model"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerMinute int           `koanf:"rate_per_minute"`
}

// SimulatorConfig holds the interaction event simulator settings.
type SimulatorConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Users     int           `koanf:"users"`
	Interval  time.Duration `koanf:"interval"`
	BatchSize int           `koanf:"batch_size"`
	Seed      int64         `koanf:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. These are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Store: StoreConfig{
			Path:       "/data/newsatlas/articles",
			InMemory:   false,
			SeedFile:   "",
			GCInterval: 10 * time.Minute,
		},
		Cache: CacheConfig{
			TTL:         5 * time.Minute,
			MissTimeout: 5 * time.Second,
			Backend:     "memory",
			Path:        "/data/newsatlas/cache",
		},
		Geo: GeoConfig{
			CellSizeKm: 10.0,
		},
		Trending: TrendingConfig{
			ScoreDecayHours: 24.0,
			WindowHours:     24.0,
			MinInteractions: 1,
		},
		API: APIConfig{
			DefaultLimit:          5,
			MaxArticlesPerRequest: 50,
			DefaultRadiusKm:       10.0,
			MaxRadiusKm:           100.0,
		},
		LLM: LLMConfig{
			Enabled:       false,
			Model:         "gpt-4o-mini",
			APIKey:        "",
			Timeout:       10 * time.Second,
			RatePerMinute: 60,
		},
		Simulator: SimulatorConfig{
			Enabled:   false,
			Users:     50,
			Interval:  time.Second,
			BatchSize: 10,
			Seed:      0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants that cannot be expressed as
// simple defaults. It returns the first violation found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MissTimeout <= 0 {
		return fmt.Errorf("cache.miss_timeout must be positive, got %s", c.Cache.MissTimeout)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "badger" {
		return fmt.Errorf("cache.backend must be \"memory\" or \"badger\", got %q", c.Cache.Backend)
	}
	if c.Geo.CellSizeKm <= 0 {
		return fmt.Errorf("geo.cell_size_km must be positive, got %g", c.Geo.CellSizeKm)
	}
	if c.Trending.ScoreDecayHours <= 0 {
		return fmt.Errorf("trending.score_decay_hours must be positive, got %g", c.Trending.ScoreDecayHours)
	}
	if c.Trending.WindowHours <= 0 {
		return fmt.Errorf("trending.window_hours must be positive, got %g", c.Trending.WindowHours)
	}
	if c.API.MaxArticlesPerRequest < 1 {
		return fmt.Errorf("api.max_articles_per_request must be at least 1, got %d", c.API.MaxArticlesPerRequest)
	}
	if c.API.DefaultLimit < 1 || c.API.DefaultLimit > c.API.MaxArticlesPerRequest {
		return fmt.Errorf("api.default_limit must be in [1, %d], got %d",
			c.API.MaxArticlesPerRequest, c.API.DefaultLimit)
	}
	if c.API.MaxRadiusKm < c.API.DefaultRadiusKm {
		return fmt.Errorf("api.max_radius_km (%g) must be >= api.default_radius_km (%g)",
			c.API.MaxRadiusKm, c.API.DefaultRadiusKm)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required when llm.enabled is true")
	}
	return nil
}
