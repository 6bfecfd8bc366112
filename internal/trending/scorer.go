// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package trending ranks articles by recent, spatially-local interaction
// intensity.
//
// Each qualifying event contributes weight × exp(−decayRate × ageHours)
// to its article, where decayRate = ln(2) / halfLifeHours. An event's
// contribution therefore halves every half-life. Contributions are summed
// per article; articles with no qualifying events are absent from the
// result, not scored zero; presence itself signals recent local activity.
//
// Ranking is a pure read-and-aggregate over the event log: independent
// queries may run fully in parallel with no locking beyond the event
// store's own read consistency.
package trending

import (
	"iter"
	"math"
	"sort"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
)

// EventSource supplies the qualifying events for one query. Satisfied by
// *eventstore.Store.
type EventSource interface {
	Query(center models.Coordinate, radiusKm float64, since time.Time) iter.Seq[models.Event]
}

// Config holds scoring parameters.
type Config struct {
	// HalfLifeHours is the decay half-life: the interval after which an
	// event's contribution is halved.
	HalfLifeHours float64

	// WindowHours bounds how far back events qualify.
	WindowHours float64

	// MinInteractions is the minimum qualifying event count for an
	// article to appear in the ranking.
	MinInteractions int
}

// DefaultConfig returns production defaults: 24h half-life and window,
// every interacted-with article eligible.
func DefaultConfig() Config {
	return Config{
		HalfLifeHours:   24,
		WindowHours:     24,
		MinInteractions: 1,
	}
}

// Entry is one ranked article with its aggregate decayed score.
// An Entry is valid only for the (center, radius, now) triple it was
// computed for.
type Entry struct {
	ArticleID  string
	Score      float64
	EventCount int
	LastEvent  time.Time
}

// Scorer computes trending rankings from an event source.
type Scorer struct {
	events EventSource
	cfg    Config
}

// New creates a scorer. Non-positive config values fall back to defaults.
func New(events EventSource, cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.HalfLifeHours <= 0 {
		cfg.HalfLifeHours = def.HalfLifeHours
	}
	if cfg.WindowHours <= 0 {
		cfg.WindowHours = def.WindowHours
	}
	if cfg.MinInteractions < 1 {
		cfg.MinInteractions = def.MinInteractions
	}
	return &Scorer{events: events, cfg: cfg}
}

// Rank aggregates decayed event contributions per article within the
// query circle and time window, relative to the injected now. The clock
// is an explicit parameter so decay is deterministic under test.
//
// Results are sorted by descending score; ties break by most-recent event
// timestamp, then article ID. A zero radius or a window with no events
// yields an empty slice, never an error.
func (s *Scorer) Rank(center models.Coordinate, radiusKm float64, now time.Time) []Entry {
	if radiusKm < 0 {
		return nil
	}

	decayRate := math.Ln2 / s.cfg.HalfLifeHours
	since := now.Add(-time.Duration(s.cfg.WindowHours * float64(time.Hour)))

	type aggregate struct {
		score     float64
		count     int
		lastEvent time.Time
	}
	byArticle := make(map[string]*aggregate)

	for event := range s.events.Query(center, radiusKm, since) {
		if event.Timestamp.After(now) {
			continue
		}
		ageHours := now.Sub(event.Timestamp).Hours()
		contribution := event.Weight * math.Exp(-decayRate*ageHours)

		agg, ok := byArticle[event.ArticleID]
		if !ok {
			agg = &aggregate{}
			byArticle[event.ArticleID] = agg
		}
		agg.score += contribution
		agg.count++
		if event.Timestamp.After(agg.lastEvent) {
			agg.lastEvent = event.Timestamp
		}
	}

	entries := make([]Entry, 0, len(byArticle))
	for articleID, agg := range byArticle {
		if agg.count < s.cfg.MinInteractions {
			continue
		}
		entries = append(entries, Entry{
			ArticleID:  articleID,
			Score:      agg.score,
			EventCount: agg.count,
			LastEvent:  agg.lastEvent,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if !entries[i].LastEvent.Equal(entries[j].LastEvent) {
			return entries[i].LastEvent.After(entries[j].LastEvent)
		}
		return entries[i].ArticleID < entries[j].ArticleID
	})
	return entries
}
