// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package models

import (
	"strings"
	"time"
)

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Article represents a single news article as stored by the ingestion
// pipeline. Articles are immutable once stored; the retrieval core only
// ever reads them.
//
// Location is optional: articles without a known publication locality carry
// a nil Location and are invisible to the spatial strategies.
type Article struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	URL             string      `json:"url"`
	PublicationDate time.Time   `json:"publication_date"`
	SourceName      string      `json:"source_name"`
	Category        []string    `json:"category"`
	RelevanceScore  float64     `json:"relevance_score" validate:"min=0,max=1"`
	Location        *Coordinate `json:"location,omitempty"`
	Summary         string      `json:"summary,omitempty"`
}

// HasCategory reports whether the article is tagged with the given
// category, compared case-insensitively.
func (a *Article) HasCategory(category string) bool {
	for _, c := range a.Category {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// MatchesText reports whether the query appears as a case-insensitive
// substring of the article title or description.
func (a *Article) MatchesText(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Description), q)
}

// ScoredArticle pairs an article with the score that ranked it for a
// particular retrieval strategy. Score carries the trending score for the
// trending strategy and the distance in kilometers for nearby; it is zero
// for the plain filter strategies.
type ScoredArticle struct {
	Article    Article `json:"article"`
	Score      float64 `json:"score,omitempty"`
	EventCount int     `json:"event_count,omitempty"`
}
