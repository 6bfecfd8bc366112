// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the retrieval core:
//   - retrieval latency and volume per strategy
//   - cache efficiency and degraded-mode fallbacks
//   - event store appends and rejections
//   - LLM query-analysis outcomes

var (
	// Retrieval Metrics
	RetrievalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_duration_seconds",
			Help:    "Duration of retrieval dispatch in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"strategy"},
	)

	RetrievalErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retrieval_errors_total",
			Help: "Total number of retrieval errors",
		},
		[]string{"strategy", "error_type"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_cache_hits_total",
			Help: "Total number of retrieval cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_cache_misses_total",
			Help: "Total number of retrieval cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retrieval_cache_entries",
			Help: "Current number of cached retrieval results",
		},
	)

	CacheDegradedFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_cache_degraded_fallbacks_total",
			Help: "Total requests served by direct dispatch because the cache backing store was unavailable",
		},
	)

	CacheSingleflightShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retrieval_cache_singleflight_shared_total",
			Help: "Total lookups that joined an in-flight recomputation instead of dispatching",
		},
	)

	// Event Store Metrics
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_recorded_total",
			Help: "Total number of interaction events appended",
		},
		[]string{"event_type"},
	)

	EventsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_rejected_total",
			Help: "Total events rejected for referencing a nonexistent article",
		},
	)

	// Geo Index Metrics
	GeoIndexEntities = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoindex_entities",
			Help: "Current number of entities in the spatial index",
		},
	)

	GeoIndexCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "geoindex_cells",
			Help: "Current number of non-empty spatial cells",
		},
	)

	// LLM Query Analysis Metrics
	QueryAnalysisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_analysis_total",
			Help: "Total query analysis attempts by outcome (llm, fallback)",
		},
		[]string{"outcome"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveRetrieval records a completed retrieval dispatch.
func ObserveRetrieval(strategy string, start time.Time) {
	RetrievalDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}

// RecordAPIRequest records an API request with its response code.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
