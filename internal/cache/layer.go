// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/metrics"
	"github.com/newsatlas/newsatlas/internal/models"
)

// Loader computes a retrieval result on a cache miss.
type Loader func(ctx context.Context) ([]models.ScoredArticle, error)

// Config holds cache layer policy.
type Config struct {
	// TTL is how long a stored entry stays fresh.
	TTL time.Duration

	// MissTimeout bounds the loader call on a miss.
	MissTimeout time.Duration
}

// Stats is a point-in-time cache statistics snapshot. Hits and Misses
// are monotonic over the layer's lifetime; Entries is the current count
// in the backing store.
type Stats struct {
	Hits              uint64 `json:"hits"`
	Misses            uint64 `json:"misses"`
	Entries           int    `json:"entries"`
	DegradedFallbacks uint64 `json:"degraded_fallbacks"`
}

// Layer is the retrieval cache. A lookup consults the backing store
// first; a miss (absent, expired, or store unavailable) runs the loader,
// with at most one in-flight loader per fingerprint: concurrent callers
// for the same fingerprint share the single result.
//
// Backing-store failures never fail a lookup: the layer trips its
// circuit breaker and degrades to loading directly, so an unreachable
// cache costs latency, not availability.
type Layer struct {
	store   Store
	cfg     Config
	group   singleflight.Group
	breaker *gobreaker.CircuitBreaker[Entry]
	now     func() time.Time
	logger  zerolog.Logger

	hits     atomic.Uint64
	misses   atomic.Uint64
	degraded atomic.Uint64
}

// NewLayer creates a cache layer over a backing store. Non-positive
// config values fall back to a 5 minute TTL and 5 second miss timeout.
func NewLayer(store Store, cfg Config) *Layer {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MissTimeout <= 0 {
		cfg.MissTimeout = 5 * time.Second
	}
	logger := logging.With().Str("component", "cache").Logger()

	breaker := gobreaker.NewCircuitBreaker[Entry](gobreaker.Settings{
		Name:        "cache-store",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("cache breaker state transition")
		},
		IsSuccessful: func(err error) bool {
			// Only backend unavailability counts against the breaker; a
			// plain miss is healthy operation.
			return err == nil || !errors.Is(err, ErrCacheUnavailable)
		},
	})

	return &Layer{
		store:   store,
		cfg:     cfg,
		breaker: breaker,
		now:     time.Now,
		logger:  logger,
	}
}

// SetClock replaces the wall clock used for TTL checks. Test hook.
func (l *Layer) SetClock(now func() time.Time) { l.now = now }

// GetOrLoad returns the cached result for a fingerprint, loading and
// storing it on a miss. The second return reports whether the result
// came from cache.
//
// Lookups for the same fingerprint are idempotent within one TTL window:
// they return the stored result without re-running the loader. On a miss
// the loader runs under MissTimeout; exceeding it fails the lookup with
// ErrRetrievalTimeout. Loader errors are returned as-is and nothing is
// stored, so a later lookup retries.
func (l *Layer) GetOrLoad(ctx context.Context, fingerprint string, loader Loader) ([]models.ScoredArticle, bool, error) {
	entry, err := l.breaker.Execute(func() (Entry, error) {
		return l.store.Get(ctx, fingerprint)
	})
	switch {
	case err == nil:
		if l.now().Sub(entry.StoredAt) < l.cfg.TTL {
			l.hits.Add(1)
			metrics.CacheHits.Inc()
			return entry.Articles, true, nil
		}
		// Expired entry: fall through to a coalesced reload.
	case errors.Is(err, ErrEntryNotFound):
		// Plain miss.
	default:
		// Backend down or breaker open: load directly, skip the store.
		l.degraded.Add(1)
		metrics.CacheDegradedFallbacks.Inc()
		l.logger.Warn().Err(err).Str("fingerprint", fingerprint).
			Msg("cache unavailable, dispatching directly")
		articles, loadErr := l.load(ctx, fingerprint, loader, false)
		return articles, false, loadErr
	}

	l.misses.Add(1)
	metrics.CacheMisses.Inc()
	articles, err := l.load(ctx, fingerprint, loader, true)
	return articles, false, err
}

// load runs the loader through the per-fingerprint singleflight group,
// bounded by the miss timeout. The flight deliberately detaches from the
// caller's cancellation: other callers may be sharing it.
func (l *Layer) load(ctx context.Context, fingerprint string, loader Loader, store bool) ([]models.ScoredArticle, error) {
	result, err, shared := l.group.Do(fingerprint, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.MissTimeout)
		defer cancel()

		articles, err := loader(loadCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s", ErrRetrievalTimeout, l.cfg.MissTimeout)
			}
			return nil, err
		}

		if store {
			entry := Entry{Articles: articles, StoredAt: l.now()}
			_, setErr := l.breaker.Execute(func() (Entry, error) {
				return entry, l.store.Set(loadCtx, fingerprint, entry)
			})
			if setErr != nil {
				l.degraded.Add(1)
				metrics.CacheDegradedFallbacks.Inc()
				l.logger.Warn().Err(setErr).Str("fingerprint", fingerprint).
					Msg("result computed but not cached")
			} else {
				metrics.CacheEntries.Set(float64(l.store.Len(loadCtx)))
			}
		}
		return articles, nil
	})
	if shared {
		metrics.CacheSingleflightShared.Inc()
	}
	if err != nil {
		return nil, err
	}
	return result.([]models.ScoredArticle), nil
}

// Invalidate removes one fingerprint's entry.
func (l *Layer) Invalidate(ctx context.Context, fingerprint string) error {
	if err := l.store.Delete(ctx, fingerprint); err != nil {
		return fmt.Errorf("invalidate %s: %w", fingerprint, err)
	}
	metrics.CacheEntries.Set(float64(l.store.Len(ctx)))
	return nil
}

// Clear removes every entry. Hit and miss counters are lifetime counters
// and are not reset.
func (l *Layer) Clear(ctx context.Context) error {
	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	metrics.CacheEntries.Set(0)
	return nil
}

// Stats returns a snapshot of cache statistics.
func (l *Layer) Stats(ctx context.Context) Stats {
	return Stats{
		Hits:              l.hits.Load(),
		Misses:            l.misses.Load(),
		Entries:           l.store.Len(ctx),
		DegradedFallbacks: l.degraded.Load(),
	}
}

// Ping reports backing store health.
func (l *Layer) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Close releases the backing store.
func (l *Layer) Close() error {
	return l.store.Close()
}
