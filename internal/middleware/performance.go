// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"
)

// requestSample is one observed request in the sliding window.
type requestSample struct {
	key        string
	durationMS int64
}

// PerformanceMonitor keeps a sliding window of request timings and
// serves per-endpoint percentile stats. Prometheus covers fleet-level
// observability; this monitor backs the in-process stats endpoint, which
// works without a scrape pipeline.
type PerformanceMonitor struct {
	mu         sync.RWMutex
	samples    []requestSample
	maxSamples int
}

// EndpointStats is the aggregated view of one method+route pair.
type EndpointStats struct {
	Endpoint     string  `json:"endpoint"`
	RequestCount int     `json:"request_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// NewPerformanceMonitor creates a monitor holding at most maxSamples
// recent requests.
func NewPerformanceMonitor(maxSamples int) *PerformanceMonitor {
	if maxSamples < 1 {
		maxSamples = 1024
	}
	return &PerformanceMonitor{
		samples:    make([]requestSample, 0, maxSamples),
		maxSamples: maxSamples,
	}
}

// Middleware records each request's duration into the window.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		pm.record(r.Method+" "+r.URL.Path, time.Since(start).Milliseconds())
	})
}

func (pm *PerformanceMonitor) record(key string, durationMS int64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.samples = append(pm.samples, requestSample{key: key, durationMS: durationMS})
	if len(pm.samples) > pm.maxSamples {
		pm.samples = pm.samples[1:]
	}
}

// Stats aggregates the current window per endpoint, busiest first.
func (pm *PerformanceMonitor) Stats() []EndpointStats {
	pm.mu.RLock()
	byEndpoint := make(map[string][]int64)
	for _, s := range pm.samples {
		byEndpoint[s.key] = append(byEndpoint[s.key], s.durationMS)
	}
	pm.mu.RUnlock()

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for endpoint, durations := range byEndpoint {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var total int64
		for _, d := range durations {
			total += d
		}
		n := len(durations)
		stats = append(stats, EndpointStats{
			Endpoint:     endpoint,
			RequestCount: n,
			AvgDuration:  float64(total) / float64(n),
			P50Duration:  durations[percentileIndex(n, 50)],
			P95Duration:  durations[percentileIndex(n, 95)],
			P99Duration:  durations[percentileIndex(n, 99)],
			MaxDuration:  durations[n-1],
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Endpoint < stats[j].Endpoint
	})
	return stats
}

func percentileIndex(n, pct int) int {
	idx := n*pct/100 - 1
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
