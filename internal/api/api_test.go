// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/newsatlas/newsatlas/internal/cache"
	"github.com/newsatlas/newsatlas/internal/config"
	"github.com/newsatlas/newsatlas/internal/eventstore"
	"github.com/newsatlas/newsatlas/internal/geoindex"
	"github.com/newsatlas/newsatlas/internal/llm"
	"github.com/newsatlas/newsatlas/internal/middleware"
	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/retrieval"
	"github.com/newsatlas/newsatlas/internal/store"
	"github.com/newsatlas/newsatlas/internal/trending"
)

var (
	bangalore  = models.Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	mysore     = models.Coordinate{Latitude: 12.2958, Longitude: 76.6394}
	whitefield = models.Coordinate{Latitude: 12.9698, Longitude: 77.7500} // ~17 km from Bangalore
)

func fixtureTime(offsetHours int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offsetHours) * time.Hour)
}

func fixtureArticles() []models.Article {
	return []models.Article{
		{
			ID: "art-tech-1", Title: "Chip fab breaks ground", Description: "Semiconductor plant announced",
			SourceName: "Reuters", Category: []string{"technology", "business"},
			RelevanceScore: 0.9, PublicationDate: fixtureTime(-2), Location: &bangalore,
		},
		{
			ID: "art-tech-2", Title: "Startup funding rebounds", Description: "Venture capital returns to technology",
			SourceName: "The Hindu", Category: []string{"technology"},
			RelevanceScore: 0.6, PublicationDate: fixtureTime(-1), Location: &whitefield,
		},
		{
			ID: "art-sports-1", Title: "Cricket final tonight", Description: "City awaits the title match",
			SourceName: "Reuters", Category: []string{"sports"},
			RelevanceScore: 0.4, PublicationDate: fixtureTime(-5), Location: &mysore,
		},
		{
			ID: "art-nat-1", Title: "Budget session opens", Description: "Parliament debates the budget",
			SourceName: "PTI", Category: []string{"politics"},
			RelevanceScore: 0.75, PublicationDate: fixtureTime(-3),
		},
	}
}

// testServer wires the full stack over in-memory backends, with the
// dispatcher clock pinned so fixtures never age out.
type testServer struct {
	router  http.Handler
	events  *eventstore.Store
	service *retrieval.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	articles := store.NewMemoryStore()
	for _, a := range fixtureArticles() {
		if err := articles.Put(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	geo := geoindex.New(10)
	retrieval.IndexArticles(ctx, articles, geo)

	events := eventstore.New(articles, 10)
	scorer := trending.New(events, trending.Config{HalfLifeHours: 24, WindowHours: 24, MinInteractions: 1})

	dispatcher := retrieval.NewDispatcher(articles, geo, scorer, retrieval.Limits{MaxArticles: 50, MaxRadiusKm: 100})
	dispatcher.SetClock(func() time.Time { return fixtureTime(0) })

	layer := cache.NewLayer(cache.NewMemoryStore(), cache.Config{TTL: time.Minute, MissTimeout: time.Second})
	service := retrieval.NewService(dispatcher, layer, events)

	handler := NewHandler(service, llm.NewService(nil), articles, events,
		middleware.NewPerformanceMonitor(128),
		config.APIConfig{DefaultLimit: 5, MaxArticlesPerRequest: 10, DefaultRadiusKm: 10, MaxRadiusKm: 100})

	router := NewRouter(handler, RouterConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   10000,
		RateLimitWindow: time.Minute,
	})
	return &testServer{router: router, events: events, service: service}
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error,omitempty"`
}

func (ts *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decoding response for %s %s: %v\nbody: %s", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeNews(t *testing.T, env envelope) models.NewsResponse {
	t.Helper()
	var resp models.NewsResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decoding news payload: %v", err)
	}
	return resp
}

func responseIDs(resp models.NewsResponse) []string {
	ids := make([]string, len(resp.Articles))
	for i, a := range resp.Articles {
		ids[i] = a.Article.ID
	}
	return ids
}

func assertIDs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got articles %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got articles %v, want %v", got, want)
		}
	}
}

func TestNewsCategory(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/category?category=technology", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeNews(t, env)
	// Newest first within the category.
	assertIDs(t, responseIDs(resp), []string{"art-tech-2", "art-tech-1"})
	if resp.Intent != models.IntentCategory {
		t.Errorf("intent = %q, want category", resp.Intent)
	}
	if env.Metadata.Cached {
		t.Error("first request reported as cached")
	}

	// The identical request must be served from the cache.
	_, env = ts.do(t, http.MethodGet, "/api/v1/news/category?category=technology", "")
	if !env.Metadata.Cached {
		t.Error("repeat request not served from cache")
	}
}

func TestNewsCategoryMissingValue(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/category", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestNewsSource(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/source?source=Reuters", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertIDs(t, responseIDs(decodeNews(t, env)), []string{"art-tech-1", "art-sports-1"})
}

func TestNewsSearch(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/search?query=budget", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	assertIDs(t, responseIDs(decodeNews(t, env)), []string{"art-nat-1"})
}

func TestNewsScoreDefaultThreshold(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/score", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Threshold defaults to 0.7; relevance descending.
	assertIDs(t, responseIDs(decodeNews(t, env)), []string{"art-tech-1", "art-nat-1"})
}

func TestNewsNearby(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/nearby?lat=12.9716&lon=77.5946&radius=50", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeNews(t, env)
	assertIDs(t, responseIDs(resp), []string{"art-tech-1", "art-tech-2"})
	if d := resp.Articles[1].Score; d < 15 || d > 20 {
		t.Errorf("whitefield distance = %.2f km, want ~17", d)
	}
}

func TestNewsNearbyRequiresCoordinates(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/nearby?lat=12.9716", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestNewsTrending(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	for _, typ := range []models.EventType{models.EventView, models.EventLike, models.EventShare} {
		_, err := ts.events.Record(ctx, models.Event{
			ArticleID: "art-tech-1",
			Type:      typ,
			Location:  bangalore,
			Timestamp: fixtureTime(-1),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/trending?lat=12.9716&lon=77.5946&radius=30", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.TrendingResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Articles) != 1 || resp.Articles[0].Article.ID != "art-tech-1" {
		t.Fatalf("trending articles = %+v, want art-tech-1 only", resp.Articles)
	}
	if resp.Articles[0].EventCount != 3 {
		t.Errorf("event count = %d, want 3", resp.Articles[0].EventCount)
	}
	if resp.Location != bangalore || resp.RadiusKm != 30 {
		t.Errorf("echoed geometry = %+v / %.1f", resp.Location, resp.RadiusKm)
	}
}

func TestNewsTrendingEmptyCircle(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/news/trending?lat=0&lon=0&radius=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an empty region", rec.Code)
	}
	var resp models.TrendingResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Articles) != 0 {
		t.Fatalf("articles = %+v, want none", resp.Articles)
	}
}

func TestNewsQueryRoutesIntent(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/news/query", `{"query":"latest technology stories"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeNews(t, env)
	if resp.Intent != models.IntentCategory {
		t.Fatalf("intent = %q, want category", resp.Intent)
	}
	assertIDs(t, responseIDs(resp), []string{"art-tech-2", "art-tech-1"})
	if resp.QueryUsed != "latest technology stories" {
		t.Errorf("query_used = %q", resp.QueryUsed)
	}
}

func TestNewsQuerySpatialUsesRequestLocation(t *testing.T) {
	ts := newTestServer(t)

	body := `{"query":"what is happening near me","location":{"latitude":12.9716,"longitude":77.5946},"radius_km":50}`
	rec, env := ts.do(t, http.MethodPost, "/api/v1/news/query", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeNews(t, env)
	if resp.Intent != models.IntentNearby {
		t.Fatalf("intent = %q, want nearby", resp.Intent)
	}
	assertIDs(t, responseIDs(resp), []string{"art-tech-1", "art-tech-2"})
}

func TestNewsQuerySpatialWithoutLocation(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/news/query", `{"query":"trending right now"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestNewsQueryEmptyBody(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/news/query", `{"query":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestRecordEvent(t *testing.T) {
	ts := newTestServer(t)

	body := `{"article_id":"art-tech-1","event_type":"click","location":{"latitude":12.9716,"longitude":77.5946}}`
	rec, env := ts.do(t, http.MethodPost, "/api/v1/events", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data["event_id"] == "" {
		t.Error("missing event_id")
	}
	if ts.events.Len() != 1 {
		t.Errorf("event store length = %d, want 1", ts.events.Len())
	}
}

func TestRecordEventUnknownArticle(t *testing.T) {
	ts := newTestServer(t)

	body := `{"article_id":"no-such-article","event_type":"view","location":{"latitude":0,"longitude":0}}`
	rec, env := ts.do(t, http.MethodPost, "/api/v1/events", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INVALID_REFERENCE" {
		t.Fatalf("error = %+v, want INVALID_REFERENCE", env.Error)
	}
	if ts.events.Len() != 0 {
		t.Error("rejected event was recorded")
	}
}

func TestRecordEventInvalidType(t *testing.T) {
	ts := newTestServer(t)

	body := `{"article_id":"art-tech-1","event_type":"hover","location":{"latitude":0,"longitude":0}}`
	rec, env := ts.do(t, http.MethodPost, "/api/v1/events", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error = %+v, want VALIDATION_ERROR", env.Error)
	}
}

func TestCacheAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/api/v1/news/category?category=technology", "")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats cache.Stats
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 entry / 1 miss", stats)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/cache/clear", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	_, env = ts.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 0 {
		t.Errorf("entries after clear = %d, want 0", stats.Entries)
	}
}

func TestCacheInvalidateByFingerprint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(t, http.MethodGet, "/api/v1/news/search?query=budget", "")
	result, err := ts.service.Retrieve(context.Background(), retrieval.Search{Query: "budget", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !result.CacheHit {
		t.Fatal("priming request did not populate the cache")
	}

	rec, _ := ts.do(t, http.MethodDelete, "/api/v1/cache/"+result.Fingerprint, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("invalidate status = %d", rec.Code)
	}

	result, err = ts.service.Retrieve(context.Background(), retrieval.Search{Query: "budget", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheHit {
		t.Error("entry survived invalidation")
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	var health models.HealthStatus
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.ArticleCount != 4 {
		t.Errorf("article count = %d, want 4", health.ArticleCount)
	}

	for _, path := range []string{"/api/v1/health/live", "/api/v1/health/ready"} {
		rec, _ := ts.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/health/live", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
