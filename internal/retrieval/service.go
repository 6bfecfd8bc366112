// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package retrieval

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/cache"
	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/models"
)

// Service is the retrieval facade consumed by the API layer. It routes
// every strategy through the cache layer and exposes event recording and
// cache administration.
type Service struct {
	dispatcher *Dispatcher
	cache      *cache.Layer
	events     *eventstore.Store
	logger     zerolog.Logger
}

// NewService assembles the retrieval facade.
func NewService(dispatcher *Dispatcher, cacheLayer *cache.Layer, events *eventstore.Store) *Service {
	return &Service{
		dispatcher: dispatcher,
		cache:      cacheLayer,
		events:     events,
		logger:     logging.With().Str("component", "retrieval").Logger(),
	}
}

// Result is a retrieval outcome annotated with its cache provenance.
type Result struct {
	Articles    []models.ScoredArticle
	Fingerprint string
	CacheHit    bool
}

// Retrieve evaluates a strategy through the cache. Validation runs
// before the cache lookup so invalid strategies fail fast and never
// occupy a cache slot.
func (s *Service) Retrieve(ctx context.Context, strategy Strategy) (Result, error) {
	if err := strategy.Validate(); err != nil {
		return Result{}, err
	}

	fingerprint := strategy.Fingerprint()
	articles, hit, err := s.cache.GetOrLoad(ctx, fingerprint, func(ctx context.Context) ([]models.ScoredArticle, error) {
		return s.dispatcher.Dispatch(ctx, strategy)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Articles: articles, Fingerprint: fingerprint, CacheHit: hit}, nil
}

// RecordEvent appends a user interaction event, returning its assigned
// ID. Events referencing unknown articles fail with
// eventstore.ErrInvalidReference.
func (s *Service) RecordEvent(ctx context.Context, req models.RecordEventRequest, ts time.Time) (string, error) {
	return s.events.Record(ctx, models.Event{
		UserID:    req.UserID,
		ArticleID: req.ArticleID,
		Type:      req.EventType,
		Location:  req.Location,
		Timestamp: ts,
	})
}

// CacheStats returns a cache statistics snapshot.
func (s *Service) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Stats(ctx)
}

// CacheClear removes every cached result.
func (s *Service) CacheClear(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// CacheInvalidate removes one fingerprint's cached result.
func (s *Service) CacheInvalidate(ctx context.Context, fingerprint string) error {
	return s.cache.Invalidate(ctx, fingerprint)
}

// CachePing reports cache backing store health.
func (s *Service) CachePing(ctx context.Context) error {
	return s.cache.Ping(ctx)
}
