// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/newsatlas/newsatlas/internal/models"
)

func TestHeuristicIntentDetection(t *testing.T) {
	h := NewHeuristicAnalyzer()
	ctx := context.Background()

	tests := []struct {
		query      string
		wantIntent models.QueryIntent
	}{
		{"Latest technology news", models.IntentCategory},
		{"sports updates please", models.IntentCategory},
		{"News from Reuters", models.IntentSource},
		{"bbc coverage", models.IntentSource},
		{"news near me", models.IntentNearby},
		{"what is happening around here", models.IntentNearby},
		{"what's trending today", models.IntentTrending},
		{"popular stories", models.IntentTrending},
		{"high relevance news", models.IntentScore},
		{"important stories only", models.IntentScore},
		{"Elon Musk Twitter acquisition", models.IntentSearch},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			analysis, err := h.Analyze(ctx, tt.query, nil)
			if err != nil {
				t.Fatal(err)
			}
			if analysis.Intent != tt.wantIntent {
				t.Errorf("intent = %s, want %s", analysis.Intent, tt.wantIntent)
			}
		})
	}
}

func TestHeuristicExtraction(t *testing.T) {
	h := NewHeuristicAnalyzer()
	ctx := context.Background()

	analysis, err := h.Analyze(ctx, "Latest technology news", nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Category != "technology" {
		t.Errorf("category = %q, want technology", analysis.Category)
	}

	analysis, _ = h.Analyze(ctx, "News from reuters", nil)
	if analysis.Source != "Reuters" {
		t.Errorf("source = %q, want Reuters", analysis.Source)
	}

	analysis, _ = h.Analyze(ctx, "Elon Musk joins NASA cricket match", nil)
	if analysis.SearchQuery == "" {
		t.Error("search intent lost the query text")
	}
	found := map[string]bool{}
	for _, e := range analysis.Entities {
		found[e] = true
	}
	if !found["Elon Musk"] || !found["NASA"] {
		t.Errorf("entities = %v, want Elon Musk and NASA", analysis.Entities)
	}
	hasConcept := false
	for _, c := range analysis.Concepts {
		if c == "sports" {
			hasConcept = true
		}
	}
	if !hasConcept {
		t.Errorf("concepts = %v, want sports (cricket)", analysis.Concepts)
	}
}

func TestHeuristicCarriesLocation(t *testing.T) {
	h := NewHeuristicAnalyzer()
	loc := &models.Coordinate{Latitude: 12.97, Longitude: 77.59}
	analysis, _ := h.Analyze(context.Background(), "news near me", loc)
	if analysis.Intent != models.IntentNearby {
		t.Fatalf("intent = %s", analysis.Intent)
	}
	if analysis.Location == nil || analysis.Location.Latitude != 12.97 {
		t.Errorf("location = %v, want caller location", analysis.Location)
	}
}

func TestParseAnalysis(t *testing.T) {
	raw := "Here is the analysis:\n```json\n" +
		`{"entities":["CNN"],"concepts":["politics"],"intent":"SOURCE","source":"CNN"}` +
		"\n```"
	analysis, err := parseAnalysis(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Intent != models.IntentSource || analysis.Source != "CNN" {
		t.Errorf("analysis = %+v", analysis)
	}

	// Unknown intent degrades to search rather than failing.
	analysis, err = parseAnalysis(`{"intent":"teleport"}`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Intent != models.IntentSearch {
		t.Errorf("unknown intent mapped to %s, want search", analysis.Intent)
	}

	if _, err := parseAnalysis("no json here", nil); err == nil {
		t.Error("expected error for output without JSON")
	}

	// Caller location backfills a missing one.
	loc := &models.Coordinate{Latitude: 1, Longitude: 2}
	analysis, _ = parseAnalysis(`{"intent":"nearby"}`, loc)
	if analysis.Location != loc {
		t.Error("caller location not backfilled")
	}
}

// failingAnalyzer always errors, driving the Service fallback path.
type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, string, *models.Coordinate) (models.QueryAnalysis, error) {
	return models.QueryAnalysis{}, errors.New("model unavailable")
}

func TestServiceFallsBackToHeuristic(t *testing.T) {
	svc := NewService(failingAnalyzer{})
	analysis, err := svc.Analyze(context.Background(), "what's trending", nil)
	if err != nil {
		t.Fatalf("fallback must absorb primary failure: %v", err)
	}
	if analysis.Intent != models.IntentTrending {
		t.Errorf("intent = %s, want trending", analysis.Intent)
	}
}

func TestServiceHeuristicOnly(t *testing.T) {
	svc := NewService(nil)
	analysis, err := svc.Analyze(context.Background(), "News from BBC", nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Source != "BBC" {
		t.Errorf("source = %q, want BBC", analysis.Source)
	}
}

func TestSummarizeTruncation(t *testing.T) {
	svc := NewService(nil)

	short := "Brief description."
	if got, _ := svc.Summarize(context.Background(), "t", short); got != short {
		t.Errorf("short description altered: %q", got)
	}

	long := strings.Repeat("x", 300)
	got, _ := svc.Summarize(context.Background(), "t", long)
	if len([]rune(got)) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("long description not truncated to 200+ellipsis, got len %d", len([]rune(got)))
	}
}
