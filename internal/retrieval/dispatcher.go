// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/geoindex"
	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/metrics"
	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/store"
	"github.com/newsatlas/newsatlas/internal/trending"
)

// Limits bounds dispatcher output independent of what the strategy asks
// for.
type Limits struct {
	MaxArticles int
	MaxRadiusKm float64
}

// Dispatcher evaluates retrieval strategies against the article store,
// the article spatial index, and the trending scorer. It holds no mutable
// state of its own; concurrent dispatches are safe.
type Dispatcher struct {
	articles store.ArticleStore
	geo      *geoindex.Index
	scorer   *trending.Scorer
	limits   Limits
	now      func() time.Time
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher. The geo index must hold the located
// articles from the store (see IndexArticles).
func NewDispatcher(articles store.ArticleStore, geo *geoindex.Index, scorer *trending.Scorer, limits Limits) *Dispatcher {
	if limits.MaxArticles < 1 {
		limits.MaxArticles = 50
	}
	if limits.MaxRadiusKm <= 0 {
		limits.MaxRadiusKm = 100
	}
	return &Dispatcher{
		articles: articles,
		geo:      geo,
		scorer:   scorer,
		limits:   limits,
		now:      time.Now,
		logger:   logging.With().Str("component", "dispatcher").Logger(),
	}
}

// SetClock replaces the wall clock used for trending decay. Test hook.
func (d *Dispatcher) SetClock(now func() time.Time) { d.now = now }

// IndexArticles inserts every located article from the store into the
// spatial index. Articles without a location are skipped; they remain
// reachable through the non-spatial strategies.
func IndexArticles(ctx context.Context, articles store.ArticleStore, geo *geoindex.Index) int {
	indexed := 0
	for article := range articles.All(ctx) {
		if article.Location == nil {
			continue
		}
		geo.Insert(article.ID, article.Location.Latitude, article.Location.Longitude, article.PublicationDate)
		indexed++
	}
	metrics.GeoIndexEntities.Set(float64(geo.Size()))
	metrics.GeoIndexCells.Set(float64(geo.NumCells()))
	return indexed
}

// Dispatch validates and evaluates one strategy. The result is sorted per
// the strategy's ordering contract and truncated to the configured
// maximum. Validation failures wrap ErrInvalidParameter; an unknown
// Strategy implementation is a programming error and fails loudly.
func (d *Dispatcher) Dispatch(ctx context.Context, strategy Strategy) ([]models.ScoredArticle, error) {
	if err := strategy.Validate(); err != nil {
		metrics.RetrievalErrors.WithLabelValues(strategy.Name(), "invalid_parameter").Inc()
		return nil, err
	}

	start := time.Now()
	var (
		results []models.ScoredArticle
		err     error
	)
	switch s := strategy.(type) {
	case Category:
		results, err = d.byCategory(ctx, s)
	case Source:
		results, err = d.bySource(ctx, s)
	case Search:
		results, err = d.bySearch(ctx, s)
	case Score:
		results, err = d.byScore(ctx, s)
	case Nearby:
		results, err = d.byNearby(ctx, s)
	case Trending:
		results, err = d.byTrending(ctx, s)
	default:
		return nil, fmt.Errorf("unhandled strategy type %T", strategy)
	}
	if err != nil {
		metrics.RetrievalErrors.WithLabelValues(strategy.Name(), "dispatch").Inc()
		return nil, fmt.Errorf("dispatch %s: %w", strategy.Name(), err)
	}

	metrics.ObserveRetrieval(strategy.Name(), start)
	d.logger.Debug().
		Str("strategy", strategy.Name()).
		Int("results", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("strategy dispatched")
	return results, nil
}

func (d *Dispatcher) clampLimit(limit int) int {
	if limit > d.limits.MaxArticles {
		return d.limits.MaxArticles
	}
	return limit
}

func (d *Dispatcher) clampRadius(radiusKm float64) float64 {
	if radiusKm > d.limits.MaxRadiusKm {
		return d.limits.MaxRadiusKm
	}
	return radiusKm
}

// collect drains a filtered article sequence, honoring context
// cancellation between elements.
func collect(ctx context.Context, seq func(func(models.Article) bool)) ([]models.Article, error) {
	var out []models.Article
	for article := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, article)
	}
	return out, nil
}

func plain(articles []models.Article) []models.ScoredArticle {
	scored := make([]models.ScoredArticle, len(articles))
	for i, a := range articles {
		scored[i] = models.ScoredArticle{Article: a}
	}
	return scored
}

func truncate(scored []models.ScoredArticle, limit int) []models.ScoredArticle {
	if len(scored) > limit {
		return scored[:limit]
	}
	return scored
}

func (d *Dispatcher) byCategory(ctx context.Context, s Category) ([]models.ScoredArticle, error) {
	matched, err := collect(ctx, store.Filter(ctx, d.articles, func(a models.Article) bool {
		return a.HasCategory(s.Category)
	}))
	if err != nil {
		return nil, err
	}
	sortByPublication(matched)
	return truncate(plain(matched), d.clampLimit(s.Limit)), nil
}

func (d *Dispatcher) bySource(ctx context.Context, s Source) ([]models.ScoredArticle, error) {
	want := normText(s.Source)
	matched, err := collect(ctx, store.Filter(ctx, d.articles, func(a models.Article) bool {
		return normText(a.SourceName) == want
	}))
	if err != nil {
		return nil, err
	}
	sortByPublication(matched)
	return truncate(plain(matched), d.clampLimit(s.Limit)), nil
}

func (d *Dispatcher) bySearch(ctx context.Context, s Search) ([]models.ScoredArticle, error) {
	matched, err := collect(ctx, store.Filter(ctx, d.articles, func(a models.Article) bool {
		return a.MatchesText(s.Query)
	}))
	if err != nil {
		return nil, err
	}
	sortByRelevance(matched)
	return truncate(plain(matched), d.clampLimit(s.Limit)), nil
}

func (d *Dispatcher) byScore(ctx context.Context, s Score) ([]models.ScoredArticle, error) {
	matched, err := collect(ctx, store.Filter(ctx, d.articles, func(a models.Article) bool {
		return a.RelevanceScore >= s.Threshold
	}))
	if err != nil {
		return nil, err
	}
	sortByRelevance(matched)
	return truncate(plain(matched), d.clampLimit(s.Limit)), nil
}

func (d *Dispatcher) byNearby(ctx context.Context, s Nearby) ([]models.ScoredArticle, error) {
	neighbors := d.geo.Nearby(s.Center.Latitude, s.Center.Longitude, d.clampRadius(s.RadiusKm))
	limit := d.clampLimit(s.Limit)

	scored := make([]models.ScoredArticle, 0, min(len(neighbors), limit))
	for _, n := range neighbors {
		if len(scored) == limit {
			break
		}
		article, err := d.articles.GetByID(ctx, n.ID)
		if err != nil {
			if errors.Is(err, store.ErrArticleNotFound) {
				// Index out of step with the store; skip, don't fail.
				continue
			}
			return nil, err
		}
		scored = append(scored, models.ScoredArticle{Article: article, Score: n.DistanceKm})
	}
	return scored, nil
}

func (d *Dispatcher) byTrending(ctx context.Context, s Trending) ([]models.ScoredArticle, error) {
	entries := d.scorer.Rank(s.Center, d.clampRadius(s.RadiusKm), d.now())
	limit := d.clampLimit(s.Limit)

	scored := make([]models.ScoredArticle, 0, min(len(entries), limit))
	for _, entry := range entries {
		if len(scored) == limit {
			break
		}
		article, err := d.articles.GetByID(ctx, entry.ArticleID)
		if err != nil {
			if errors.Is(err, store.ErrArticleNotFound) {
				continue
			}
			return nil, err
		}
		scored = append(scored, models.ScoredArticle{
			Article:    article,
			Score:      entry.Score,
			EventCount: entry.EventCount,
		})
	}
	return scored, nil
}

// sortByPublication orders newest first, ties by ID for determinism.
func sortByPublication(articles []models.Article) {
	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].PublicationDate.Equal(articles[j].PublicationDate) {
			return articles[i].PublicationDate.After(articles[j].PublicationDate)
		}
		return articles[i].ID < articles[j].ID
	})
}

// sortByRelevance orders highest relevance first, ties by ID.
func sortByRelevance(articles []models.Article) {
	sort.Slice(articles, func(i, j int) bool {
		if articles[i].RelevanceScore != articles[j].RelevanceScore {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		}
		return articles[i].ID < articles[j].ID
	})
}
