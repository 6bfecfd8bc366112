// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints. It provides a consistent structure for both successful and
// error responses.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Error
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability: the server
// timestamp, how long retrieval took, and whether the result was served
// from the cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a structured error payload.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - INVALID_REFERENCE: event refers to a nonexistent article
//   - RETRIEVAL_TIMEOUT: retrieval did not finish within the bounded wait
//   - NOT_FOUND: resource does not exist
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewsResponse is the payload for article retrieval endpoints.
type NewsResponse struct {
	Articles   []ScoredArticle `json:"articles"`
	TotalCount int             `json:"total_count"`
	QueryUsed  string          `json:"query_used,omitempty"`
	Intent     QueryIntent     `json:"intent,omitempty"`
}

// TrendingResponse is the payload for the trending endpoint. It echoes the
// query geometry so clients can correlate cached responses.
type TrendingResponse struct {
	Articles   []ScoredArticle `json:"articles"`
	Location   Coordinate      `json:"location"`
	RadiusKm   float64         `json:"radius_km"`
	TotalCount int             `json:"total_count"`
}

// HealthStatus reports process and dependency health.
type HealthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	StoreConnected bool    `json:"store_connected"`
	CacheAvailable bool    `json:"cache_available"`
	ArticleCount   int     `json:"article_count"`
	EventCount     int     `json:"event_count"`
	Uptime         float64 `json:"uptime_seconds"`
}
