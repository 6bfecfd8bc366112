// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/logging"
	"github.com/newsatlas/newsatlas/internal/metrics"
	"github.com/newsatlas/newsatlas/internal/models"
)

// Service composes the primary analyzer with the heuristic fallback.
// Analysis never fails: any primary error is logged, counted, and
// absorbed by the heuristic.
type Service struct {
	primary   Analyzer
	heuristic *HeuristicAnalyzer
	logger    zerolog.Logger
}

// NewService creates the query-understanding service. A nil primary
// means heuristic-only operation (the no-LLM deployment mode).
func NewService(primary Analyzer) *Service {
	return &Service{
		primary:   primary,
		heuristic: NewHeuristicAnalyzer(),
		logger:    logging.With().Str("component", "llm").Logger(),
	}
}

// Analyze runs the primary analyzer and falls back to the heuristic on
// any failure.
func (s *Service) Analyze(ctx context.Context, query string, location *models.Coordinate) (models.QueryAnalysis, error) {
	if s.primary != nil {
		analysis, err := s.primary.Analyze(ctx, query, location)
		if err == nil {
			metrics.QueryAnalysisTotal.WithLabelValues("llm").Inc()
			return analysis, nil
		}
		metrics.QueryAnalysisTotal.WithLabelValues("fallback").Inc()
		s.logger.Warn().Err(err).Str("query", query).
			Msg("query analysis falling back to heuristic")
	} else {
		metrics.QueryAnalysisTotal.WithLabelValues("heuristic").Inc()
	}
	return s.heuristic.Analyze(ctx, query, location)
}

// Summarize produces an article summary, truncating the description when
// no model is available or the model call fails.
func (s *Service) Summarize(ctx context.Context, title, description string) (string, error) {
	if summarizer, ok := s.primary.(Summarizer); ok && s.primary != nil {
		summary, err := summarizer.Summarize(ctx, title, description)
		if err == nil {
			return summary, nil
		}
		s.logger.Warn().Err(err).Msg("summary falling back to truncation")
	}
	return truncateSummary(description), nil
}
