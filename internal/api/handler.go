// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package api provides the HTTP surface: chi routing, request decoding
// and validation, and the mapping from query intents onto retrieval
// strategies. Handlers stay thin: every piece of retrieval logic lives
// behind the retrieval.Service facade.
package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/config"
	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/llm"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/middleware"
	"github.com/newsatlas/newsatlas/internal/retrieval"
	"github.com/newsatlas/newsatlas/internal/store"
)

// Version is the reported server version, set at build time via
// -ldflags "-X ...api.Version=v1.2.3".
var Version = "dev"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	service   *retrieval.Service
	analyzer  *llm.Service
	articles  store.ArticleStore
	events    *eventstore.Store
	perf      *middleware.PerformanceMonitor
	limits    config.APIConfig
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	service *retrieval.Service,
	analyzer *llm.Service,
	articles store.ArticleStore,
	events *eventstore.Store,
	perf *middleware.PerformanceMonitor,
	limits config.APIConfig,
) *Handler {
	return &Handler{
		service:   service,
		analyzer:  analyzer,
		articles:  articles,
		events:    events,
		perf:      perf,
		limits:    limits,
		startTime: time.Now(),
		logger:    logging.With().Str("component", "api").Logger(),
	}
}

// limit resolves a requested limit against the configured defaults.
func (h *Handler) limit(requested int) int {
	if requested <= 0 {
		return h.limits.DefaultLimit
	}
	if requested > h.limits.MaxArticlesPerRequest {
		return h.limits.MaxArticlesPerRequest
	}
	return requested
}

// radius resolves a requested radius against the configured defaults.
func (h *Handler) radius(requested float64) float64 {
	if requested <= 0 {
		return h.limits.DefaultRadiusKm
	}
	if requested > h.limits.MaxRadiusKm {
		return h.limits.MaxRadiusKm
	}
	return requested
}
