// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package api

import (
	"net/http"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
	"github.com/newsatlas/newsatlas/internal/retrieval"
)

// NewsCategory handles GET /api/v1/news/category?category=&limit=.
func (h *Handler) NewsCategory(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, retrieval.Category{
		Category: r.URL.Query().Get("category"),
		Limit:    h.limit(queryInt(r, "limit", 0)),
	}, models.IntentCategory)
}

// NewsSource handles GET /api/v1/news/source?source=&limit=.
func (h *Handler) NewsSource(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, retrieval.Source{
		Source: r.URL.Query().Get("source"),
		Limit:  h.limit(queryInt(r, "limit", 0)),
	}, models.IntentSource)
}

// NewsSearch handles GET /api/v1/news/search?query=&limit=.
func (h *Handler) NewsSearch(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, retrieval.Search{
		Query: r.URL.Query().Get("query"),
		Limit: h.limit(queryInt(r, "limit", 0)),
	}, models.IntentSearch)
}

// NewsScore handles GET /api/v1/news/score?threshold=&limit=.
func (h *Handler) NewsScore(w http.ResponseWriter, r *http.Request) {
	h.retrieve(w, r, retrieval.Score{
		Threshold: queryFloat(r, "threshold", 0.7),
		Limit:     h.limit(queryInt(r, "limit", 0)),
	}, models.IntentScore)
}

// NewsNearby handles GET /api/v1/news/nearby?lat=&lon=&radius=&limit=.
func (h *Handler) NewsNearby(w http.ResponseWriter, r *http.Request) {
	center, ok := queryCoordinate(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lon query parameters are required", nil)
		return
	}
	h.retrieve(w, r, retrieval.Nearby{
		Center:   center,
		RadiusKm: h.radius(queryFloat(r, "radius", 0)),
		Limit:    h.limit(queryInt(r, "limit", 0)),
	}, models.IntentNearby)
}

// NewsTrending handles GET /api/v1/news/trending?lat=&lon=&radius=&limit=.
func (h *Handler) NewsTrending(w http.ResponseWriter, r *http.Request) {
	center, ok := queryCoordinate(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lon query parameters are required", nil)
		return
	}
	strategy := retrieval.Trending{
		Center:   center,
		RadiusKm: h.radius(queryFloat(r, "radius", 0)),
		Limit:    h.limit(queryInt(r, "limit", 0)),
	}

	start := time.Now()
	result, err := h.service.Retrieve(r.Context(), strategy)
	if err != nil {
		respondRetrievalError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.TrendingResponse{
		Articles:   result.Articles,
		Location:   strategy.Center,
		RadiusKm:   strategy.RadiusKm,
		TotalCount: len(result.Articles),
	}, models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      result.CacheHit,
	})
}

// NewsQuery handles POST /api/v1/news/query: free-text analysis routed
// onto a concrete strategy.
func (h *Handler) NewsQuery(w http.ResponseWriter, r *http.Request) {
	var req models.NewsQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), req.Query, req.Location)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "query analysis failed", err)
		return
	}

	strategy, ok := h.strategyFor(w, analysis, req)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.Retrieve(r.Context(), strategy)
	if err != nil {
		respondRetrievalError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.NewsResponse{
		Articles:   result.Articles,
		TotalCount: len(result.Articles),
		QueryUsed:  req.Query,
		Intent:     analysis.Intent,
	}, models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      result.CacheHit,
	})
}

// strategyFor maps a query analysis onto a retrieval strategy, filling
// gaps from the request and configured defaults. Spatial intents without
// any usable location are rejected rather than guessed.
func (h *Handler) strategyFor(w http.ResponseWriter, analysis models.QueryAnalysis, req models.NewsQueryRequest) (retrieval.Strategy, bool) {
	limit := h.limit(req.Limit)

	switch analysis.Intent {
	case models.IntentCategory:
		if analysis.Category == "" {
			// Analysis detected the intent but not the value; search the
			// raw text instead of serving an arbitrary category.
			return retrieval.Search{Query: req.Query, Limit: limit}, true
		}
		return retrieval.Category{Category: analysis.Category, Limit: limit}, true

	case models.IntentSource:
		if analysis.Source == "" {
			return retrieval.Search{Query: req.Query, Limit: limit}, true
		}
		return retrieval.Source{Source: analysis.Source, Limit: limit}, true

	case models.IntentScore:
		threshold := analysis.ScoreThreshold
		if threshold <= 0 || threshold > 1 {
			threshold = 0.7
		}
		return retrieval.Score{Threshold: threshold, Limit: limit}, true

	case models.IntentNearby, models.IntentTrending:
		center := analysis.Location
		if center == nil {
			center = req.Location
		}
		if center == nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"a location is required for spatial queries", nil)
			return nil, false
		}
		radius := h.radius(req.RadiusKm)
		if analysis.Intent == models.IntentTrending {
			return retrieval.Trending{Center: *center, RadiusKm: radius, Limit: limit}, true
		}
		return retrieval.Nearby{Center: *center, RadiusKm: radius, Limit: limit}, true

	default:
		query := analysis.SearchQuery
		if query == "" {
			query = req.Query
		}
		return retrieval.Search{Query: query, Limit: limit}, true
	}
}

// retrieve runs one strategy and writes the standard news envelope.
func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request, strategy retrieval.Strategy, intent models.QueryIntent) {
	start := time.Now()
	result, err := h.service.Retrieve(r.Context(), strategy)
	if err != nil {
		respondRetrievalError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.NewsResponse{
		Articles:   result.Articles,
		TotalCount: len(result.Articles),
		Intent:     intent,
	}, models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      result.CacheHit,
	})
}
