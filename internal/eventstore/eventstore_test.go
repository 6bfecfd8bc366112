// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
)

// stubResolver resolves a fixed set of article IDs.
type stubResolver struct {
	known map[string]bool
}

func (r *stubResolver) Exists(_ context.Context, id string) bool {
	return r.known[id]
}

func newTestStore(ids ...string) *Store {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return New(&stubResolver{known: known}, 10)
}

func TestRecord_AssignsIDAndWeight(t *testing.T) {
	s := newTestStore("a1")

	id, err := s.Record(context.Background(), models.Event{
		ArticleID: "a1",
		Type:      models.EventShare,
		Location:  models.Coordinate{Latitude: 37.77, Longitude: -122.42},
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Error("expected an assigned event ID")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 event, got %d", s.Len())
	}

	for event := range s.Query(models.Coordinate{Latitude: 37.77, Longitude: -122.42}, 1, time.Time{}) {
		if event.Weight != 5.0 {
			t.Errorf("share weight = %g, want 5", event.Weight)
		}
	}
}

func TestRecord_InvalidReferenceLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore("a1")

	lenBefore := s.Len()
	_, err := s.Record(context.Background(), models.Event{
		ArticleID: "ghost",
		Type:      models.EventView,
		Location:  models.Coordinate{Latitude: 37.77, Longitude: -122.42},
		Timestamp: time.Now(),
	})

	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if s.Len() != lenBefore {
		t.Errorf("store length changed on rejected event: %d -> %d", lenBefore, s.Len())
	}
}

func TestRecord_EmptyArticleIDRejected(t *testing.T) {
	s := newTestStore("a1")
	if _, err := s.Record(context.Background(), models.Event{Type: models.EventView}); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference for empty article ID, got %v", err)
	}
}

func TestQuery_SpatialAndTemporalPredicates(t *testing.T) {
	s := newTestStore("a1")
	ctx := context.Background()
	now := time.Now()
	center := models.Coordinate{Latitude: 37.77, Longitude: -122.42}

	record := func(lat, lon float64, age time.Duration) {
		_, err := s.Record(ctx, models.Event{
			ArticleID: "a1",
			Type:      models.EventView,
			Location:  models.Coordinate{Latitude: lat, Longitude: lon},
			Timestamp: now.Add(-age),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	record(37.77, -122.42, 10*time.Minute)  // near, recent: matches
	record(37.771, -122.42, 2*time.Hour)    // near, old: excluded by since
	record(38.5, -122.42, 10*time.Minute)   // ~81km away: excluded by radius

	count := 0
	for range s.Query(center, 5, now.Add(-time.Hour)) {
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 matching event, got %d", count)
	}
}

func TestQuery_Restartable(t *testing.T) {
	s := newTestStore("a1")
	ctx := context.Background()
	center := models.Coordinate{Latitude: 37.77, Longitude: -122.42}

	for i := 0; i < 3; i++ {
		s.Record(ctx, models.Event{
			ArticleID: "a1",
			Type:      models.EventView,
			Location:  center,
			Timestamp: time.Now(),
		})
	}

	seq := s.Query(center, 1, time.Time{})
	first := 0
	for range seq {
		first++
	}

	// New appends are visible on the next iteration of the same sequence.
	s.Record(ctx, models.Event{
		ArticleID: "a1",
		Type:      models.EventClick,
		Location:  center,
		Timestamp: time.Now(),
	})
	second := 0
	for range seq {
		second++
	}

	if first != 3 || second != 4 {
		t.Errorf("restartable query saw %d then %d events, want 3 then 4", first, second)
	}
}

func TestQuery_EmptyResultsAreNotErrors(t *testing.T) {
	s := newTestStore("a1")
	center := models.Coordinate{Latitude: 37.77, Longitude: -122.42}

	// Zero radius over an empty store, negative radius, window in the past:
	// all yield empty sequences.
	for _, radius := range []float64{0, -1, 100} {
		count := 0
		for range s.Query(center, radius, time.Now().Add(time.Hour)) {
			count++
		}
		if count != 0 {
			t.Errorf("radius %g: expected empty result, got %d events", radius, count)
		}
	}
}

func TestRecord_ConcurrentAppends(t *testing.T) {
	s := newTestStore("a1")
	ctx := context.Background()
	center := models.Coordinate{Latitude: 37.77, Longitude: -122.42}

	var wg sync.WaitGroup
	const workers, perWorker = 8, 50
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.Record(ctx, models.Event{
					ID:        fmt.Sprintf("w%d-e%d", w, i),
					ArticleID: "a1",
					Type:      models.EventView,
					Location:  center,
					Timestamp: time.Now(),
				})
				if err != nil {
					t.Error(err)
				}
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != workers*perWorker {
		t.Errorf("expected %d events after concurrent appends, got %d", workers*perWorker, s.Len())
	}
	count := 0
	for range s.Query(center, 1, time.Time{}) {
		count++
	}
	if count != workers*perWorker {
		t.Errorf("query found %d of %d events", count, workers*perWorker)
	}
}
