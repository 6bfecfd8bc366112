// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package models

// QueryIntent identifies which retrieval strategy a free-text query maps to.
type QueryIntent string

// Retrieval intents, one per dispatcher strategy.
const (
	IntentCategory QueryIntent = "category"
	IntentSource   QueryIntent = "source"
	IntentSearch   QueryIntent = "search"
	IntentScore    QueryIntent = "score"
	IntentNearby   QueryIntent = "nearby"
	IntentTrending QueryIntent = "trending"
)

// QueryAnalysis is the structured result of analyzing a free-text news
// query. It is produced by the LLM query-understanding service, or by the
// heuristic fallback when the LLM is unavailable or returns garbage.
type QueryAnalysis struct {
	Entities       []string    `json:"entities,omitempty"`
	Concepts       []string    `json:"concepts,omitempty"`
	Intent         QueryIntent `json:"intent"`
	Location       *Coordinate `json:"location,omitempty"`
	SearchQuery    string      `json:"search_query,omitempty"`
	Category       string      `json:"category,omitempty"`
	Source         string      `json:"source,omitempty"`
	ScoreThreshold float64     `json:"score_threshold,omitempty"`
}

// NewsQueryRequest is the body of the free-text query endpoint.
type NewsQueryRequest struct {
	Query    string      `json:"query" validate:"required,min=1,max=500"`
	Location *Coordinate `json:"location,omitempty"`
	Limit    int         `json:"limit" validate:"omitempty,min=1,max=50"`
	RadiusKm float64     `json:"radius_km" validate:"omitempty,min=0,max=100"`
}

// RecordEventRequest is the body of the event recording endpoint.
type RecordEventRequest struct {
	ArticleID string     `json:"article_id" validate:"required"`
	UserID    string     `json:"user_id,omitempty"`
	EventType EventType  `json:"event_type" validate:"required"`
	Location  Coordinate `json:"location"`
}
