// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/models"
)

// articleKeyPrefix namespaces article records in the Badger keyspace.
const articleKeyPrefix = "article:"

// BadgerStore is a Badger-backed ArticleStore. Iteration order is
// lexicographic by article ID, which serves as this backend's default
// ordering.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Path is the on-disk directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the entire store in memory (used by tests).
	InMemory bool
}

// NewBadgerStore opens a Badger-backed article store.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	logger := logging.With().Str("component", "store").Logger()

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %s: %w", opts.Path, err)
	}

	return &BadgerStore{db: db, logger: logger}, nil
}

func articleKey(id string) []byte {
	return []byte(articleKeyPrefix + id)
}

// GetByID returns the article with the given ID, or ErrArticleNotFound.
func (s *BadgerStore) GetByID(_ context.Context, id string) (models.Article, error) {
	var article models.Article
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(articleKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &article)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Article{}, ErrArticleNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("badger get %s: %w", id, err)
	}
	return article, nil
}

// Exists reports whether an article with the given ID is stored.
func (s *BadgerStore) Exists(_ context.Context, id string) bool {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(articleKey(id))
		return err
	})
	return err == nil
}

// All returns a restartable lazy sequence over every stored article.
// Each iteration runs in its own read transaction; decode failures are
// logged and skipped rather than aborting the scan.
func (s *BadgerStore) All(_ context.Context) iter.Seq[models.Article] {
	return func(yield func(models.Article) bool) {
		_ = s.db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()

			prefix := []byte(articleKeyPrefix)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var article models.Article
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &article)
				})
				if err != nil {
					s.logger.Warn().Err(err).
						Str("key", string(it.Item().Key())).
						Msg("skipping undecodable article record")
					continue
				}
				if !yield(article) {
					return nil
				}
			}
			return nil
		})
	}
}

// Put stores an article.
func (s *BadgerStore) Put(_ context.Context, article models.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %s: %w", article.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(articleKey(article.ID), data)
	})
	if err != nil {
		return fmt.Errorf("badger put %s: %w", article.ID, err)
	}
	return nil
}

// Count returns the number of stored articles.
func (s *BadgerStore) Count(_ context.Context) int {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(articleKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Ping reports store health by checking the database is not closed.
func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// RunGC runs one round of Badger value-log garbage collection. Intended
// to be called periodically by a janitor service; ErrNoRewrite (nothing
// to collect) is not an error.
func (s *BadgerStore) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// GCInterval is a reasonable default cadence for RunGC.
const GCInterval = 10 * time.Minute
