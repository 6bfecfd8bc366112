// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package main is the entry point for the Newsatlas server.
//
// Newsatlas serves contextual news retrieval: articles are fetched by
// category, source, free-text search, relevance score, or geography, and
// a location-aware trending feed ranks articles by decayed user
// interaction events. Free-text queries are routed onto those strategies
// by an LLM-backed analyzer with a heuristic fallback.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file, and environment variables (Koanf v2)
//  2. Article store: in-memory or Badger-backed, seeded from a JSON file
//  3. Geospatial index: cell-bucketed article index for nearby queries
//  4. Event store: interaction event log with its own spatial index
//  5. Retrieval: strategy dispatcher behind a fingerprint-keyed cache
//  6. Query analysis: OpenAI-backed analyzer when configured, else heuristics
//  7. Supervisor tree: storage GC, event simulator, and the HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): NEWSATLAS_-prefixed environment variables, the YAML
// config file (CONFIG_PATH, ./config.yaml, or /etc/newsatlas/config.yaml),
// then built-in defaults.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections, in-flight requests get the
// configured shutdown window, and storage is closed last.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/newsatlas/newsatlas/internal/api"
	"github.com/newsatlas/newsatlas/internal/cache"
	"github.com/newsatlas/newsatlas/internal/config"
	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/geoindex"
	"github.com/newsatlas/newsatlas/internal/llm"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/middleware"
	"github.com/newsatlas/newsatlas/internal/retrieval"
	"github.com/newsatlas/newsatlas/internal/simulator"
	"github.com/newsatlas/newsatlas/internal/store"
	"github.com/newsatlas/newsatlas/internal/supervisor"
	"github.com/newsatlas/newsatlas/internal/supervisor/services"
	"github.com/newsatlas/newsatlas/internal/trending"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", api.Version).Msg("Starting Newsatlas")

	// Article storage: Badger on disk by default, in-memory for
	// development and tests.
	articles, badgerArticles, err := buildArticleStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize article store")
	}
	defer func() {
		if err := articles.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing article store")
		}
	}()
	logging.Info().
		Bool("in_memory", cfg.Store.InMemory).
		Str("path", cfg.Store.Path).
		Msg("Article store initialized")

	ctx := context.Background()

	if cfg.Store.SeedFile != "" {
		seed, err := store.LoadSeedFile(cfg.Store.SeedFile)
		if err != nil {
			logging.Fatal().Err(err).Str("file", cfg.Store.SeedFile).Msg("Failed to load seed file")
		}
		n, err := store.Seed(ctx, articles, seed)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed article store")
		}
		logging.Info().Int("count", n).Str("file", cfg.Store.SeedFile).Msg("Seeded articles")
	}

	// Geospatial index over the seeded articles.
	geo := geoindex.New(cfg.Geo.CellSizeKm)
	indexed := retrieval.IndexArticles(ctx, articles, geo)
	logging.Info().
		Int("indexed", indexed).
		Float64("cell_size_km", cfg.Geo.CellSizeKm).
		Msg("Geospatial index built")

	// Interaction events and the trending scorer over them.
	events := eventstore.New(articles, cfg.Geo.CellSizeKm)
	scorer := trending.New(events, trending.Config{
		HalfLifeHours:   cfg.Trending.ScoreDecayHours,
		WindowHours:     cfg.Trending.WindowHours,
		MinInteractions: cfg.Trending.MinInteractions,
	})

	// Retrieval: the strategy dispatcher behind the fingerprint cache.
	dispatcher := retrieval.NewDispatcher(articles, geo, scorer, retrieval.Limits{
		MaxArticles: cfg.API.MaxArticlesPerRequest,
		MaxRadiusKm: cfg.API.MaxRadiusKm,
	})

	cacheStore, err := buildCacheStore(cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache store")
	}
	layer := cache.NewLayer(cacheStore, cache.Config{
		TTL:         cfg.Cache.TTL,
		MissTimeout: cfg.Cache.MissTimeout,
	})
	defer func() {
		if err := layer.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	service := retrieval.NewService(dispatcher, layer, events)

	// Query analysis: OpenAI when configured, heuristics otherwise and as
	// the fallback on every LLM failure.
	var primary llm.Analyzer
	if cfg.LLM.Enabled {
		analyzer, err := llm.NewOpenAIAnalyzer(llm.OpenAIConfig{
			APIKey:        cfg.LLM.APIKey,
			Model:         cfg.LLM.Model,
			RatePerMinute: cfg.LLM.RatePerMinute,
		})
		if err != nil {
			logging.Warn().Err(err).Msg("LLM analyzer unavailable, using heuristic analysis")
		} else {
			primary = analyzer
			logging.Info().Str("model", cfg.LLM.Model).Msg("LLM query analysis enabled")
		}
	} else {
		logging.Info().Msg("LLM disabled, using heuristic query analysis")
	}
	analyzer := llm.NewService(primary)

	perf := middleware.NewPerformanceMonitor(1024)
	handler := api.NewHandler(service, analyzer, articles, events, perf, cfg.API)
	router := api.NewRouter(handler, api.RouterConfigFromServer(cfg.Server))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	// Supervisor tree: storage GC and the simulator under data/ingest,
	// the HTTP server under api. The slog adapter bridges zerolog into
	// suture's event hook.
	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	if badgerArticles != nil {
		interval := cfg.Store.GCInterval
		if interval <= 0 {
			interval = store.GCInterval
		}
		tree.AddDataService(services.NewGCService(badgerArticles, interval))
	}

	if cfg.Simulator.Enabled {
		sim := simulator.New(articles, events, simulator.Config{
			Users:     cfg.Simulator.Users,
			Interval:  cfg.Simulator.Interval,
			BatchSize: cfg.Simulator.BatchSize,
			Seed:      cfg.Simulator.Seed,
		})
		tree.AddIngestService(sim)
		logging.Info().
			Int("users", cfg.Simulator.Users).
			Dur("interval", cfg.Simulator.Interval).
			Msg("Event simulator enabled")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, treeCfg.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server registered")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(runCtx)

	select {
	case <-runCtx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Server stopped gracefully")
}

// buildArticleStore creates the configured article store. The second
// return is non-nil only for the Badger backend, which needs a GC
// janitor in the supervisor tree.
func buildArticleStore(cfg config.StoreConfig) (store.ArticleStore, *store.BadgerStore, error) {
	if cfg.InMemory {
		return store.NewMemoryStore(), nil, nil
	}
	bs, err := store.NewBadgerStore(store.BadgerOptions{Path: cfg.Path})
	if err != nil {
		return nil, nil, err
	}
	return bs, bs, nil
}

// buildCacheStore creates the configured cache backend.
func buildCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "badger":
		return cache.NewBadgerStore(cache.BadgerOptions{Path: cfg.Path})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

var _ services.HTTPServer = (*http.Server)(nil)
