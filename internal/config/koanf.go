// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/newsatlas/config.yaml",
	"/etc/newsatlas/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces all Newsatlas environment variables.
const envPrefix = "NEWSATLAS_"

// Load builds the configuration from layered sources:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: NEWSATLAS_* overrides anything
//
// Precedence is ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envKeyMappings maps environment variable names (after the NEWSATLAS_
// prefix is stripped) to koanf paths. Only keys whose names contain
// underscores inside a path segment need an entry; everything else is
// handled by the generic transform.
var envKeyMappings = map[string]string{
	"SERVER_CORS_ORIGINS":          "server.cors_origins",
	"SERVER_RATE_LIMIT_REQS":       "server.rate_limit_reqs",
	"SERVER_RATE_LIMIT_WINDOW":     "server.rate_limit_window",
	"STORE_IN_MEMORY":              "store.in_memory",
	"STORE_SEED_FILE":              "store.seed_file",
	"STORE_GC_INTERVAL":            "store.gc_interval",
	"CACHE_MISS_TIMEOUT":           "cache.miss_timeout",
	"GEO_CELL_SIZE_KM":             "geo.cell_size_km",
	"TRENDING_SCORE_DECAY_HOURS":   "trending.score_decay_hours",
	"TRENDING_WINDOW_HOURS":        "trending.window_hours",
	"TRENDING_MIN_INTERACTIONS":    "trending.min_interactions",
	"API_DEFAULT_LIMIT":            "api.default_limit",
	"API_MAX_ARTICLES_PER_REQUEST": "api.max_articles_per_request",
	"API_DEFAULT_RADIUS_KM":        "api.default_radius_km",
	"API_MAX_RADIUS_KM":            "api.max_radius_km",
	"LLM_API_KEY":                  "llm.api_key",
	"LLM_RATE_PER_MINUTE":          "llm.rate_per_minute",
	"SIMULATOR_BATCH_SIZE":         "simulator.batch_size",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - NEWSATLAS_SERVER_PORT -> server.port
//   - NEWSATLAS_CACHE_TTL -> cache.ttl
//   - NEWSATLAS_TRENDING_SCORE_DECAY_HOURS -> trending.score_decay_hours
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	if path, ok := envKeyMappings[key]; ok {
		return path
	}
	// Generic: first underscore separates section from field.
	key = strings.ToLower(key)
	return strings.Replace(key, "_", ".", 1)
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when sourced from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
