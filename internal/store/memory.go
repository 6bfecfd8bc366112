// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package store

import (
	"context"
	"iter"
	"sync"

	"github.com/newsatlas/newsatlas/internal/models"
)

// MemoryStore is an in-memory ArticleStore. Iteration order is insertion
// order, which serves as the store's default ordering.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]models.Article
	order    []string
}

// NewMemoryStore creates an empty in-memory article store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: make(map[string]models.Article),
	}
}

// GetByID returns the article with the given ID, or ErrArticleNotFound.
func (s *MemoryStore) GetByID(_ context.Context, id string) (models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[id]
	if !ok {
		return models.Article{}, ErrArticleNotFound
	}
	return article, nil
}

// Exists reports whether an article with the given ID is stored.
func (s *MemoryStore) Exists(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.articles[id]
	return ok
}

// All returns a restartable lazy sequence over a snapshot of the stored
// articles in insertion order. The snapshot is taken when iteration
// starts, so writers never block an in-progress range.
func (s *MemoryStore) All(_ context.Context) iter.Seq[models.Article] {
	return func(yield func(models.Article) bool) {
		s.mu.RLock()
		snapshot := make([]models.Article, 0, len(s.order))
		for _, id := range s.order {
			snapshot = append(snapshot, s.articles[id])
		}
		s.mu.RUnlock()

		for _, article := range snapshot {
			if !yield(article) {
				return
			}
		}
	}
}

// Put stores an article.
func (s *MemoryStore) Put(_ context.Context, article models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[article.ID]; !ok {
		s.order = append(s.order, article.ID)
	}
	s.articles[article.ID] = article
	return nil
}

// Count returns the number of stored articles.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
