// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package models

import "time"

// EventType classifies a user interaction with an article.
type EventType string

// Interaction event types, in increasing order of engagement signal.
const (
	EventView  EventType = "view"
	EventClick EventType = "click"
	EventLike  EventType = "like"
	EventShare EventType = "share"
)

// eventWeights maps interaction types to their trending-score weight.
// A share signals far stronger local interest than a passive view.
var eventWeights = map[EventType]float64{
	EventView:  1.0,
	EventClick: 2.0,
	EventLike:  3.0,
	EventShare: 5.0,
}

// Weight returns the trending-score weight for the event type.
// Unknown types weigh the same as a view.
func (t EventType) Weight() float64 {
	if w, ok := eventWeights[t]; ok {
		return w
	}
	return 1.0
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	_, ok := eventWeights[t]
	return ok
}

// Event is a single user interaction with an article at a location.
// Events are append-only: once recorded they are never mutated or deleted
// within the lifetime of the retrieval core.
type Event struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id,omitempty"`
	ArticleID string     `json:"article_id"`
	Type      EventType  `json:"event_type"`
	Location  Coordinate `json:"location"`
	Timestamp time.Time  `json:"timestamp"`
	Weight    float64    `json:"weight"`
}
