// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package llm provides query understanding: turning a free-text news
// query into a structured QueryAnalysis that the API layer maps onto a
// retrieval strategy.
//
// Two analyzers ship. The OpenAI analyzer asks a chat model to extract
// entities, concepts, and intent as JSON. The heuristic analyzer does
// keyword and pattern matching only. The Service composes them: LLM
// first when configured, heuristic on any failure, so query analysis
// never fails, it only degrades in quality.
package llm

import (
	"context"

	"github.com/newsatlas/newsatlas/internal/models"
)

// Analyzer turns a free-text query into a structured analysis. The
// caller's location, when known, biases spatial intents.
type Analyzer interface {
	Analyze(ctx context.Context, query string, location *models.Coordinate) (models.QueryAnalysis, error)
}

// Summarizer produces a short article summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (string, error)
}

// truncateSummary is the no-LLM summary: the description clipped to 200
// characters on a rune boundary.
func truncateSummary(description string) string {
	const maxLen = 200
	runes := []rune(description)
	if len(runes) <= maxLen {
		return description
	}
	return string(runes[:maxLen]) + "..."
}
