// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/geoindex"
	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/store"
	"github.com/newsatlas/newsatlas/internal/trending"
)

var (
	bangalore  = models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	mysore     = models.Coordinate{Latitude: 12.2958, Longitude: 76.6394} // ~128 km from Bangalore
	whitefield = models.Coordinate{Latitude: 12.9698, Longitude: 77.7500} // ~17 km from Bangalore
)

func testFixtureTime(offsetHours int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offsetHours) * time.Hour)
}

func fixtureArticles() []models.Article {
	return []models.Article{
		{
			ID: "art-tech-1", Title: "Chip fab breaks ground", Description: "Semiconductor plant announced",
			SourceName: "Reuters", Category: []string{"technology", "business"},
			RelevanceScore: 0.9, PublicationDate: testFixtureTime(-2), Location: &bangalore,
		},
		{
			ID: "art-tech-2", Title: "Startup funding rebounds", Description: "Venture capital returns to technology",
			SourceName: "The Hindu", Category: []string{"technology"},
			RelevanceScore: 0.6, PublicationDate: testFixtureTime(-1), Location: &whitefield,
		},
		{
			ID: "art-sports-1", Title: "Cricket final tonight", Description: "City awaits the title match",
			SourceName: "Reuters", Category: []string{"sports"},
			RelevanceScore: 0.4, PublicationDate: testFixtureTime(-5), Location: &mysore,
		},
		{
			ID: "art-nat-1", Title: "Budget session opens", Description: "Parliament debates the budget",
			SourceName: "PTI", Category: []string{"politics"},
			RelevanceScore: 0.75, PublicationDate: testFixtureTime(-3),
			// No location: invisible to spatial strategies.
		},
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *eventstore.Store) {
	t.Helper()
	ctx := context.Background()

	articles := store.NewMemoryStore()
	for _, a := range fixtureArticles() {
		if err := articles.Put(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	geo := geoindex.New(10)
	IndexArticles(ctx, articles, geo)

	events := eventstore.New(articles, 10)
	scorer := trending.New(events, trending.Config{HalfLifeHours: 2, WindowHours: 24, MinInteractions: 1})

	d := NewDispatcher(articles, geo, scorer, Limits{MaxArticles: 3, MaxRadiusKm: 100})
	d.SetClock(func() time.Time { return testFixtureTime(0) })
	return d, events
}

func articleIDs(scored []models.ScoredArticle) []string {
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.Article.ID
	}
	return ids
}

func assertIDs(t *testing.T, got []models.ScoredArticle, want ...string) {
	t.Helper()
	ids := articleIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}

func TestDispatchCategory(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Category{Category: "Technology", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	// Newest first; matching is case-insensitive.
	assertIDs(t, got, "art-tech-2", "art-tech-1")
}

func TestDispatchCategoryLimitedFilter(t *testing.T) {
	ctx := context.Background()
	articles := store.NewMemoryStore()
	for i := 0; i < 10; i++ {
		if err := articles.Put(ctx, models.Article{
			ID: fmt.Sprintf("tech-%02d", i), Title: "Tech story", SourceName: "Wire",
			Category: []string{"technology"}, PublicationDate: testFixtureTime(-i),
		}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := articles.Put(ctx, models.Article{
			ID: fmt.Sprintf("other-%02d", i), Title: "Other story", SourceName: "Wire",
			Category: []string{"sports"}, PublicationDate: testFixtureTime(-i),
		}); err != nil {
			t.Fatal(err)
		}
	}

	d := NewDispatcher(articles, geoindex.New(10), nil, Limits{MaxArticles: 50, MaxRadiusKm: 100})
	got, err := d.Dispatch(ctx, Category{Category: "technology", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d articles, want 5", len(got))
	}
	for _, a := range got {
		if a.Article.Category[0] != "technology" {
			t.Errorf("article %s is not technology", a.Article.ID)
		}
	}
}

func TestDispatchSource(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Source{Source: "reuters", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "art-tech-1", "art-sports-1")
}

func TestDispatchSearch(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Search{Query: "TECHNOLOGY", Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	// Substring over title+description, ordered by relevance desc.
	assertIDs(t, got, "art-tech-2")
}

func TestDispatchScore(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Score{Threshold: 0.7, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "art-tech-1", "art-nat-1")
}

func TestDispatchNearby(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Nearby{Center: bangalore, RadiusKm: 50, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	// Ascending distance; Mysore is outside 50 km, the unlocated article
	// is not indexed.
	assertIDs(t, got, "art-tech-1", "art-tech-2")
	if got[0].Score >= got[1].Score {
		t.Errorf("distances not ascending: %f then %f", got[0].Score, got[1].Score)
	}
	if got[1].Score < 15 || got[1].Score > 20 {
		t.Errorf("whitefield distance = %f km, want ≈17", got[1].Score)
	}
}

func TestDispatchTrending(t *testing.T) {
	d, events := newTestDispatcher(t)
	ctx := context.Background()

	record := func(articleID string, typ models.EventType, at time.Time) {
		t.Helper()
		_, err := events.Record(ctx, models.Event{
			ArticleID: articleID, Type: typ, Location: bangalore, Timestamp: at,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// art-tech-2 gets heavier, fresher engagement than art-tech-1.
	record("art-tech-1", models.EventView, testFixtureTime(-1))
	record("art-tech-2", models.EventShare, testFixtureTime(0))
	record("art-tech-2", models.EventLike, testFixtureTime(0))
	// Far away: outside the query circle.
	_, err := events.Record(ctx, models.Event{
		ArticleID: "art-sports-1", Type: models.EventShare, Location: mysore, Timestamp: testFixtureTime(0),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := d.Dispatch(ctx, Trending{Center: bangalore, RadiusKm: 20, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	assertIDs(t, got, "art-tech-2", "art-tech-1")
	if got[0].EventCount != 2 || got[1].EventCount != 1 {
		t.Errorf("event counts = %d, %d, want 2, 1", got[0].EventCount, got[1].EventCount)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %f then %f", got[0].Score, got[1].Score)
	}
}

func TestDispatchTrendingEmptyCircle(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got, err := d.Dispatch(context.Background(), Trending{Center: bangalore, RadiusKm: 20, Limit: 10})
	if err != nil {
		t.Fatalf("trending over no events must not fail: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", articleIDs(got))
	}
}

func TestDispatchClampsLimit(t *testing.T) {
	d, _ := newTestDispatcher(t) // MaxArticles: 3
	got, err := d.Dispatch(context.Background(), Score{Threshold: 0, Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("got %d results, want clamped to 3", len(got))
	}
}

func TestDispatchRejectsInvalid(t *testing.T) {
	d, _ := newTestDispatcher(t)
	_, err := d.Dispatch(context.Background(), Nearby{Center: bangalore, RadiusKm: -1, Limit: 5})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestDispatchContextCancellation(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Dispatch(ctx, Category{Category: "technology", Limit: 5}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
