// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

/*
Package metrics provides Prometheus metrics collection and export for observability.

The package instruments the retrieval core with promauto collectors:
  - Retrieval dispatch latency and error counts per strategy
  - Cache hit/miss/entry counts, degraded-mode fallbacks, and single-flight joins
  - Event store append and rejection counters
  - Spatial index size gauges
  - Query-analysis outcomes (LLM vs heuristic fallback)
  - HTTP request latency and throughput

All collectors are registered with the default Prometheus registry and served
from the /metrics endpoint via promhttp.

Cache degradation is deliberately observable only here: a request served in
degraded mode returns a normal response to the client while incrementing
retrieval_cache_degraded_fallbacks_total.
*/
package metrics
