// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
)

func testEntry(ids ...string) Entry {
	articles := make([]models.ScoredArticle, len(ids))
	for i, id := range ids {
		articles[i] = models.ScoredArticle{Article: models.Article{ID: id, Title: "title " + id}}
	}
	return Entry{Articles: articles, StoredAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// storeUnderTest exercises the Store contract against any backend.
func storeUnderTest(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "absent"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get absent: err = %v, want ErrEntryNotFound", err)
	}

	want := testEntry("a-1", "a-2")
	if err := s.Set(ctx, "fp-1", want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "fp-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Articles) != 2 || got.Articles[0].Article.ID != "a-1" {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
	if !got.StoredAt.Equal(want.StoredAt) {
		t.Errorf("StoredAt = %v, want %v", got.StoredAt, want.StoredAt)
	}

	// Overwrite replaces.
	if err := s.Set(ctx, "fp-1", testEntry("a-3")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "fp-1")
	if len(got.Articles) != 1 || got.Articles[0].Article.ID != "a-3" {
		t.Errorf("after overwrite got %+v", got)
	}

	if err := s.Set(ctx, "fp-2", testEntry("b-1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if n := s.Len(ctx); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}

	if err := s.Delete(ctx, "fp-2"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "fp-2"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if n := s.Len(ctx); n != 1 {
		t.Errorf("Len after delete = %d, want 1", n)
	}

	if err := s.Clear(ctx); err != nil {
		t.Errorf("Clear: %v", err)
	}
	if n := s.Len(ctx); n != 0 {
		t.Errorf("Len after clear = %d, want 0", n)
	}

	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	storeUnderTest(t, s)
}

func TestBadgerStoreContract(t *testing.T) {
	s, err := NewBadgerStore(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	defer s.Close()
	storeUnderTest(t, s)
}
