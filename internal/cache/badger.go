// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package cache

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/logging"
)

// cacheKeyPrefix namespaces cache records in the Badger keyspace, so the
// cache can share a database with other record types without collisions.
const cacheKeyPrefix = "cache:"

// BadgerStore is a Badger-backed cache backend. Entries survive process
// restarts; the Layer still applies its TTL on read, so stale survivors
// are recomputed rather than served.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	Path     string
	InMemory bool
}

// NewBadgerStore opens a Badger-backed cache backend.
func NewBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger cache at %s: %v", ErrCacheUnavailable, opts.Path, err)
	}
	return &BadgerStore{
		db:     db,
		logger: logging.With().Str("component", "cache").Logger(),
	}, nil
}

func cacheKey(fingerprint string) []byte {
	return []byte(cacheKeyPrefix + fingerprint)
}

func (s *BadgerStore) Get(_ context.Context, fingerprint string) (Entry, error) {
	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(fingerprint))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, fingerprint)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("%w: badger get: %v", ErrCacheUnavailable, err)
	}
	return entry, nil
}

func (s *BadgerStore) Set(_ context.Context, fingerprint string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", fingerprint, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(fingerprint), data)
	})
	if err != nil {
		return fmt.Errorf("%w: badger set: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, fingerprint string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cacheKey(fingerprint))
	})
	if err != nil {
		return fmt.Errorf("%w: badger delete: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (s *BadgerStore) Clear(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		prefix := []byte(cacheKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: badger clear: %v", ErrCacheUnavailable, err)
	}
	return nil
}

func (s *BadgerStore) Len(_ context.Context) int {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{PrefetchValues: false})
		defer it.Close()

		prefix := []byte(cacheKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

func (s *BadgerStore) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("%w: badger cache is closed", ErrCacheUnavailable)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
