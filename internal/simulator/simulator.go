// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package simulator generates synthetic user interaction events against
// the stored articles. It exists for demos and load testing: a fresh
// deployment has no real traffic, so trending endpoints would sit empty
// without it.
package simulator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/store"
)

// Config tunes the simulator.
type Config struct {
	// Users is the size of the synthetic user pool.
	Users int

	// Interval is the pause between batches.
	Interval time.Duration

	// BatchSize is the number of events per batch.
	BatchSize int

	// Seed makes runs reproducible. Zero seeds from the clock.
	Seed int64
}

// eventTypes weighted toward views, the way real traffic skews.
var eventTypes = []models.EventType{
	models.EventView, models.EventView, models.EventView, models.EventView,
	models.EventClick, models.EventClick,
	models.EventLike,
	models.EventShare,
}

// Simulator is a suture.Service emitting interaction events on a timer.
// Events land near the referenced article's location with a little
// jitter, so spatial queries see plausible clusters.
type Simulator struct {
	articles store.ArticleStore
	events   *eventstore.Store
	cfg      Config
	logger   zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	users []string
}

// New creates a simulator over the given stores.
func New(articles store.ArticleStore, events *eventstore.Store, cfg Config) *Simulator {
	if cfg.Users < 1 {
		cfg.Users = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 5
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	users := make([]string, cfg.Users)
	for i := range users {
		users[i] = uuid.NewString()
	}

	return &Simulator{
		articles: articles,
		events:   events,
		cfg:      cfg,
		logger:   logging.With().Str("component", "simulator").Logger(),
		rng:      rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		users:    users,
	}
}

// Serve implements suture.Service: emit one batch per interval until the
// context is canceled.
func (s *Simulator) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("users", s.cfg.Users).
		Dur("interval", s.cfg.Interval).
		Int("batch_size", s.cfg.BatchSize).
		Msg("event simulator started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.emitBatch(ctx)
		}
	}
}

func (s *Simulator) String() string { return "event-simulator" }

// EmitBatch generates one batch immediately. Exposed for warm-up at
// startup and for tests.
func (s *Simulator) EmitBatch(ctx context.Context) int {
	return s.emitBatch(ctx)
}

func (s *Simulator) emitBatch(ctx context.Context) int {
	located := s.locatedArticles(ctx)
	if len(located) == 0 {
		s.logger.Debug().Msg("no located articles to interact with")
		return 0
	}

	emitted := 0
	for i := 0; i < s.cfg.BatchSize; i++ {
		if ctx.Err() != nil {
			return emitted
		}

		s.mu.Lock()
		article := located[s.rng.IntN(len(located))]
		user := s.users[s.rng.IntN(len(s.users))]
		typ := eventTypes[s.rng.IntN(len(eventTypes))]
		// Up to ~2 km of jitter around the article location.
		jitterLat := (s.rng.Float64() - 0.5) * 0.04
		jitterLon := (s.rng.Float64() - 0.5) * 0.04
		s.mu.Unlock()

		event := models.Event{
			UserID:    user,
			ArticleID: article.ID,
			Type:      typ,
			Location: models.Coordinate{
				Latitude:  clampLat(article.Location.Latitude + jitterLat),
				Longitude: wrapLon(article.Location.Longitude + jitterLon),
			},
		}
		if _, err := s.events.Record(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("article_id", article.ID).Msg("simulated event rejected")
			continue
		}
		emitted++
	}

	s.logger.Debug().Int("emitted", emitted).Msg("simulated event batch")
	return emitted
}

func (s *Simulator) locatedArticles(ctx context.Context) []models.Article {
	var located []models.Article
	for article := range s.articles.All(ctx) {
		if article.Location != nil {
			located = append(located, article)
		}
	}
	return located
}

func clampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
