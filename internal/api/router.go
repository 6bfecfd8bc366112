// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newsatlas/newsatlas/internal/config"
	"github.com/newsatlas/newsatlas/internal/middleware"
)

// RouterConfig carries the HTTP-surface knobs the router needs.
type RouterConfig struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// RouterConfigFromServer extracts router settings from the server config.
func RouterConfigFromServer(cfg config.ServerConfig) RouterConfig {
	return RouterConfig{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitReqs:   cfg.RateLimitReqs,
		RateLimitWindow: cfg.RateLimitWindow,
	}
}

// NewRouter assembles the Chi router: global middleware, the versioned API
// surface, and the operational endpoints (health, metrics).
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order. CORS sits here so
	// OPTIONS preflight is answered before any route-level limiter runs.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Compression)

	reqs := cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	// Health endpoints get a permissive limiter so orchestrator probes and
	// monitoring never starve behind dashboard traffic.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(reqs*10, window))
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			reqs,
			window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
		r.Use(middleware.PrometheusMetrics)
		if h.perf != nil {
			r.Use(h.perf.Middleware)
		}

		r.Route("/news", func(r chi.Router) {
			r.Post("/query", h.NewsQuery)
			r.Get("/category", h.NewsCategory)
			r.Get("/source", h.NewsSource)
			r.Get("/search", h.NewsSearch)
			r.Get("/score", h.NewsScore)
			r.Get("/nearby", h.NewsNearby)
			r.Get("/trending", h.NewsTrending)
		})

		r.Post("/events", h.RecordEvent)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", h.CacheStats)
			r.Post("/clear", h.CacheClear)
			r.Delete("/{fingerprint}", h.CacheInvalidate)
		})

		r.Get("/stats/performance", h.PerformanceStats)
	})

	// Prometheus scrape endpoint sits outside the rate-limited API surface.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
