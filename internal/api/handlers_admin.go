// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/newsatlas/newsatlas/internal/models"
)

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.service.CacheStats(r.Context()), models.Metadata{Timestamp: time.Now()})
}

// CacheClear handles POST /api/v1/cache/clear.
func (h *Handler) CacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CacheClear(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to clear cache", err)
		return
	}
	h.logger.Info().Msg("cache cleared by request")
	respondSuccess(w, http.StatusOK, map[string]string{"result": "cache cleared"}, models.Metadata{Timestamp: time.Now()})
}

// CacheInvalidate handles DELETE /api/v1/cache/{fingerprint}.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	fingerprint := chi.URLParam(r, "fingerprint")
	if fingerprint == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "fingerprint path parameter is required", nil)
		return
	}
	if err := h.service.CacheInvalidate(r.Context(), fingerprint); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to invalidate cache entry", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"result": "invalidated", "fingerprint": fingerprint},
		models.Metadata{Timestamp: time.Now()})
}

// PerformanceStats handles GET /api/v1/stats/performance.
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.perf.Stats(), models.Metadata{Timestamp: time.Now()})
}

// Health handles GET /api/v1/health: full dependency report.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	storeOK := h.articles.Ping(ctx) == nil
	cacheOK := h.service.CachePing(ctx) == nil

	status := "healthy"
	httpStatus := http.StatusOK
	if !storeOK {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else if !cacheOK {
		// Degraded: retrieval still works, it just skips the cache.
		status = "degraded"
	}

	respondSuccess(w, httpStatus, models.HealthStatus{
		Status:         status,
		Version:        Version,
		StoreConnected: storeOK,
		CacheAvailable: cacheOK,
		ArticleCount:   h.articles.Count(ctx),
		EventCount:     h.events.Len(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}, models.Metadata{Timestamp: time.Now()})
}

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, models.Metadata{Timestamp: time.Now()})
}

// HealthReady handles GET /api/v1/health/ready: readiness to serve.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "article store unavailable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"}, models.Metadata{Timestamp: time.Now()})
}
