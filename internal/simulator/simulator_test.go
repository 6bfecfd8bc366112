// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/store"
)

func newFixtures(t *testing.T, withLocations bool) (*store.MemoryStore, *eventstore.Store) {
	t.Helper()
	articles := store.NewMemoryStore()
	ctx := context.Background()

	loc := &models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	for _, id := range []string{"a-1", "a-2", "a-3"} {
		article := models.Article{ID: id, Title: id}
		if withLocations {
			article.Location = loc
		}
		if err := articles.Put(ctx, article); err != nil {
			t.Fatal(err)
		}
	}
	return articles, eventstore.New(articles, 10)
}

func TestEmitBatchRecordsEvents(t *testing.T) {
	articles, events := newFixtures(t, true)
	sim := New(articles, events, Config{Users: 5, BatchSize: 20, Seed: 42})

	emitted := sim.EmitBatch(context.Background())
	if emitted != 20 {
		t.Errorf("emitted %d events, want 20", emitted)
	}
	if events.Len() != 20 {
		t.Errorf("event store has %d events, want 20", events.Len())
	}
}

func TestEmitBatchDeterministicWithSeed(t *testing.T) {
	run := func() []models.Event {
		articles, events := newFixtures(t, true)
		sim := New(articles, events, Config{Users: 5, BatchSize: 10, Seed: 7})
		sim.EmitBatch(context.Background())

		var got []models.Event
		for e := range events.Query(models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}, 50, time.Time{}) {
			got = append(got, e)
		}
		return got
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("runs differ in size: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ArticleID != second[i].ArticleID || first[i].Type != second[i].Type {
			t.Fatalf("event %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEmitBatchNoLocatedArticles(t *testing.T) {
	articles, events := newFixtures(t, false)
	sim := New(articles, events, Config{BatchSize: 5, Seed: 1})

	if emitted := sim.EmitBatch(context.Background()); emitted != 0 {
		t.Errorf("emitted %d events with no located articles, want 0", emitted)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	articles, events := newFixtures(t, true)
	sim := New(articles, events, Config{Interval: time.Millisecond, BatchSize: 1, Seed: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sim.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
