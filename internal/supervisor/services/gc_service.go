// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/newsatlas/newsatlas/internal/logging"
)

// GarbageCollector is the periodic maintenance hook the janitor calls.
// Satisfied by the Badger article store's RunGC.
type GarbageCollector interface {
	RunGC() error
}

// GCService runs storage garbage collection on a fixed cadence. Badger's
// value log only reclaims space when asked; without this janitor a
// long-running node grows without bound.
type GCService struct {
	gc       GarbageCollector
	interval time.Duration
	logger   zerolog.Logger
}

// NewGCService creates the GC janitor.
func NewGCService(gc GarbageCollector, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{
		gc:       gc,
		interval: interval,
		logger:   logging.With().Str("component", "gc-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.gc.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("storage gc round failed")
			}
		}
	}
}

func (s *GCService) String() string { return "storage-gc" }
