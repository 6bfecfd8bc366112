// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package store

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/newsatlas/newsatlas/internal/models"
)

// LoadSeedFile reads a JSON array of articles from disk. The format
// matches the ingestion pipeline's export: a top-level array of article
// objects.
func LoadSeedFile(path string) ([]models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return articles, nil
}

// Seed writes articles into the store, skipping records without an ID.
// Returns the number of articles stored.
func Seed(ctx context.Context, s ArticleStore, articles []models.Article) (int, error) {
	stored := 0
	for _, article := range articles {
		if article.ID == "" {
			continue
		}
		if err := s.Put(ctx, article); err != nil {
			return stored, fmt.Errorf("seed article %s: %w", article.ID, err)
		}
		stored++
	}
	return stored, nil
}
