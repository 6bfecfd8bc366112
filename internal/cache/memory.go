// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package cache

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is the in-process cache backend: a plain RWMutex-guarded
// map. It never returns ErrCacheUnavailable; degraded-mode behavior is
// only reachable with an external backend.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory backend.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) Get(_ context.Context, fingerprint string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[fingerprint]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, fingerprint)
	}
	return entry, nil
}

func (m *MemoryStore) Set(_ context.Context, fingerprint string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[fingerprint] = entry
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fingerprint)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}

func (m *MemoryStore) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Ping(_ context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
