// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package store provides keyed article storage. The retrieval core only
// reads articles; writes happen at the ingestion boundary (seed loading
// or the external pipeline).
//
// Two implementations ship: an in-memory store used by tests and
// zero-dependency runs, and a Badger-backed store for persistence.
package store

import (
	"context"
	"errors"
	"iter"

	"github.com/newsatlas/newsatlas/internal/models"
)

// ErrArticleNotFound indicates a lookup for an article ID that does not exist.
var ErrArticleNotFound = errors.New("article not found")

// ArticleStore is the keyed article storage consumed by the retrieval core.
//
// All returns a restartable lazy sequence: ranging over it again re-reads
// the store. Implementations must be safe for concurrent use.
type ArticleStore interface {
	// GetByID returns the article with the given ID, or ErrArticleNotFound.
	GetByID(ctx context.Context, id string) (models.Article, error)

	// Exists reports whether an article with the given ID is stored.
	Exists(ctx context.Context, id string) bool

	// All returns a lazy sequence over every stored article in insertion
	// order.
	All(ctx context.Context) iter.Seq[models.Article]

	// Put stores an article. Articles are immutable: a Put with an
	// existing ID overwrites only at the ingestion boundary (re-seeding).
	Put(ctx context.Context, article models.Article) error

	// Count returns the number of stored articles.
	Count(ctx context.Context) int

	// Ping reports store health.
	Ping(ctx context.Context) error

	// Close releases store resources.
	Close() error
}

// Filter returns a lazy sequence over articles matching the predicate.
// It composes with All so both backends share one implementation.
func Filter(ctx context.Context, s ArticleStore, pred func(models.Article) bool) iter.Seq[models.Article] {
	return func(yield func(models.Article) bool) {
		for article := range s.All(ctx) {
			if pred(article) && !yield(article) {
				return
			}
		}
	}
}
