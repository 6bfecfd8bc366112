// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package llm

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/newsatlas/newsatlas/internal/models"
)

// HeuristicAnalyzer is the keyword-and-pattern query analyzer. It needs
// no network, never fails, and serves both as the standalone analyzer
// when no LLM is configured and as the fallback when one is.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates the heuristic analyzer.
func NewHeuristicAnalyzer() *HeuristicAnalyzer { return &HeuristicAnalyzer{} }

// Intent keyword tables, checked in order: category beats source beats
// nearby beats trending beats score; anything else is a search.
var (
	categoryKeywords = []string{"category", "type", "sports", "technology", "politics", "business"}
	sourceKeywords   = []string{"from", "source", "cnn", "bbc", "reuters", "times"}
	nearbyKeywords   = []string{"near", "nearby", "location", "around"}
	trendingKeywords = []string{"trending", "popular", "viral"}
	scoreKeywords    = []string{"score", "relevance", "important"}
)

var categoryMapping = map[string]string{
	"technology":    "technology",
	"tech":          "technology",
	"sports":        "sports",
	"politics":      "politics",
	"business":      "business",
	"health":        "health",
	"entertainment": "entertainment",
	"world":         "world",
	"national":      "national",
}

var sourceMapping = map[string]string{
	"cnn":      "CNN",
	"bbc":      "BBC",
	"reuters":  "Reuters",
	"times":    "The New York Times",
	"guardian": "The Guardian",
	"fox":      "Fox News",
	"nbc":      "NBC",
	"abc":      "ABC",
}

var conceptKeywords = map[string][]string{
	"technology":    {"tech", "ai", "software", "computer", "internet", "digital"},
	"politics":      {"election", "government", "president", "minister", "parliament"},
	"sports":        {"football", "cricket", "basketball", "tennis", "olympics"},
	"business":      {"economy", "market", "stock", "company", "business"},
	"health":        {"health", "medical", "disease", "hospital", "doctor"},
	"entertainment": {"movie", "music", "celebrity", "actor", "singer"},
}

var entityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),        // proper names
	regexp.MustCompile(`\b[A-Z]{2,}\b`),                      // acronyms
	regexp.MustCompile(`\b(?:Mr|Ms|Dr|Prof)\. [A-Z][a-z]+`),  // titled names
}

// Analyze classifies the query by keyword tables and extracts entities
// with simple capitalization patterns. It never returns an error.
func (h *HeuristicAnalyzer) Analyze(_ context.Context, query string, location *models.Coordinate) (models.QueryAnalysis, error) {
	lower := strings.ToLower(query)

	intent := models.IntentSearch
	switch {
	case containsAny(lower, categoryKeywords):
		intent = models.IntentCategory
	case containsAny(lower, sourceKeywords):
		intent = models.IntentSource
	case containsAny(lower, nearbyKeywords):
		intent = models.IntentNearby
	case containsAny(lower, trendingKeywords):
		intent = models.IntentTrending
	case containsAny(lower, scoreKeywords):
		intent = models.IntentScore
	}

	analysis := models.QueryAnalysis{
		Entities: extractEntities(query),
		Concepts: extractConcepts(lower),
		Intent:   intent,
		Location: location,
	}
	switch intent {
	case models.IntentSearch:
		analysis.SearchQuery = query
	case models.IntentCategory:
		analysis.Category = lookupMapping(lower, categoryMapping)
	case models.IntentSource:
		analysis.Source = lookupMapping(lower, sourceMapping)
	case models.IntentScore:
		analysis.ScoreThreshold = 0.7
	}
	return analysis, nil
}

func containsAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func lookupMapping(query string, mapping map[string]string) string {
	// Deterministic: longest keyword match wins, then lexicographic.
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if strings.Contains(query, k) {
			return mapping[k]
		}
	}
	return ""
}

func extractEntities(query string) []string {
	seen := make(map[string]struct{})
	var entities []string
	for _, pattern := range entityPatterns {
		for _, match := range pattern.FindAllString(query, -1) {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			entities = append(entities, match)
		}
	}
	return entities
}

func extractConcepts(lower string) []string {
	var concepts []string
	for concept, keywords := range conceptKeywords {
		if containsAny(lower, keywords) {
			concepts = append(concepts, concept)
		}
	}
	sort.Strings(concepts)
	return concepts
}

// Summarize clips the description; the heuristic analyzer has no model
// to summarize with.
func (h *HeuristicAnalyzer) Summarize(_ context.Context, _, description string) (string, error) {
	return truncateSummary(description), nil
}
