// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package cache provides the retrieval result cache keyed by strategy
// fingerprint.
//
// The cache is organized as a Layer over a backing Store. The Layer owns
// every cross-cutting policy: TTL freshness against an injected clock,
// per-fingerprint request coalescing, the circuit breaker around the
// backing store, and degraded operation when the store is unavailable.
// Backends stay dumb key-value maps, so the memory and Badger stores
// behave identically under the same Layer.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
)

// ErrEntryNotFound indicates a fingerprint with no stored entry.
var ErrEntryNotFound = errors.New("cache entry not found")

// ErrCacheUnavailable indicates the backing store cannot be reached. The
// Layer absorbs this error by dispatching directly; it never reaches API
// callers.
var ErrCacheUnavailable = errors.New("cache unavailable")

// ErrRetrievalTimeout indicates a cache miss whose retrieval did not
// complete within the configured miss timeout.
var ErrRetrievalTimeout = errors.New("retrieval timed out")

// Entry is one cached retrieval result. StoredAt anchors TTL checks;
// freshness is decided by the Layer, not the backend, so both backends
// share one expiry policy.
type Entry struct {
	Articles []models.ScoredArticle `json:"articles"`
	StoredAt time.Time              `json:"stored_at"`
}

// Store is the backing key-value store beneath the cache layer.
// Implementations must be safe for concurrent use. Unreachable backends
// return errors wrapping ErrCacheUnavailable.
type Store interface {
	// Get returns the entry for a fingerprint, or ErrEntryNotFound.
	Get(ctx context.Context, fingerprint string) (Entry, error)

	// Set stores an entry, replacing any previous one.
	Set(ctx context.Context, fingerprint string, entry Entry) error

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, fingerprint string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Len returns the number of stored entries, expired ones included.
	Len(ctx context.Context) int

	// Ping reports backend health.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
