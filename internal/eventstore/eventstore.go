// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package eventstore provides the append-only log of user interaction
// events that feeds trending computation.
//
// Events are never mutated or deleted after recording. That append-only
// discipline is what lets the trending scorer aggregate over the log
// without any invalidation protocol: a cached aggregate can only go stale
// through new appends, never through upstream rewrites.
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/geoindex"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/metrics"
	"github.com/newsatlas/newsatlas/internal/models"
)

// ErrInvalidReference indicates an event that references a nonexistent
// article. Such events are rejected at the boundary and never stored.
var ErrInvalidReference = errors.New("event references nonexistent article")

// ArticleResolver is the slice of article storage the event store needs:
// existence checks for referential integrity at insertion time.
type ArticleResolver interface {
	Exists(ctx context.Context, id string) bool
}

// Store is the append-only event log. Appends are serialized and atomic:
// a reader sees either none or all of an event, never a torn record.
// Reads run concurrently with each other and with appends.
type Store struct {
	mu       sync.RWMutex
	events   []models.Event
	byID     map[string]int
	index    *geoindex.Index
	articles ArticleResolver
	logger   zerolog.Logger
}

// New creates an event store backed by a spatial index at the given cell
// resolution.
func New(articles ArticleResolver, cellSizeKm float64) *Store {
	return &Store{
		byID:     make(map[string]int),
		index:    geoindex.New(cellSizeKm),
		articles: articles,
		logger:   logging.With().Str("component", "eventstore").Logger(),
	}
}

// Record validates and appends an event, returning its assigned ID.
//
// The referenced article must exist; otherwise Record fails with
// ErrInvalidReference and the log is left untouched. A missing event ID
// is assigned a fresh UUID and a zero weight is resolved from the event
// type.
func (s *Store) Record(ctx context.Context, event models.Event) (string, error) {
	if event.ArticleID == "" || !s.articles.Exists(ctx, event.ArticleID) {
		metrics.EventsRejected.Inc()
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, event.ArticleID)
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Weight == 0 {
		event.Weight = event.Type.Weight()
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.byID[event.ID] = len(s.events) - 1
	s.index.Insert(event.ID, event.Location.Latitude, event.Location.Longitude, event.Timestamp)
	s.mu.Unlock()

	metrics.EventsRecorded.WithLabelValues(string(event.Type)).Inc()
	s.logger.Debug().
		Str("event_id", event.ID).
		Str("article_id", event.ArticleID).
		Str("event_type", string(event.Type)).
		Msg("recorded interaction event")

	return event.ID, nil
}

// Query returns a lazy, restartable sequence of events within radiusKm of
// the center and not older than since. Each iteration takes a fresh
// consistent snapshot, so ranging twice over the same sequence reflects
// appends in between.
//
// A radius of zero matches only events at the exact center; a negative
// radius matches nothing.
func (s *Store) Query(center models.Coordinate, radiusKm float64, since time.Time) iter.Seq[models.Event] {
	return func(yield func(models.Event) bool) {
		s.mu.RLock()
		neighbors := s.index.NearbySince(center.Latitude, center.Longitude, radiusKm, since)
		matched := make([]models.Event, 0, len(neighbors))
		for _, n := range neighbors {
			if idx, ok := s.byID[n.ID]; ok {
				matched = append(matched, s.events[idx])
			}
		}
		s.mu.RUnlock()

		for _, event := range matched {
			if !yield(event) {
				return
			}
		}
	}
}

// Len returns the number of recorded events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
