// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package retrieval implements the strategy dispatcher at the heart of the
// news API: six closed retrieval strategies (category, source, search,
// score, nearby, trending) with structural validation, deterministic cache
// fingerprints, and a dispatcher that evaluates them against the article
// store, the spatial event log, and the trending scorer.
package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/newsatlas/newsatlas/internal/models"
)

// ErrInvalidParameter indicates a structurally invalid strategy: a
// non-positive limit, a negative radius, an empty filter term, or missing
// coordinates on a spatial strategy. Invalid strategies are rejected
// before dispatch and never consult the cache.
var ErrInvalidParameter = errors.New("invalid retrieval parameter")

// Strategy is one of the six closed retrieval variants. The set is fixed:
// the dispatcher switches exhaustively over the concrete types and treats
// anything else as a programming error.
//
// Fingerprint must be deterministic and normalization-stable: two
// strategies that differ only in text case, coordinate precision beyond
// two decimals, or radius precision beyond one decimal share a
// fingerprint and therefore a cache entry.
type Strategy interface {
	// Name returns the strategy label used in logs and metrics.
	Name() string

	// Validate reports whether the strategy is structurally valid,
	// wrapping ErrInvalidParameter if not.
	Validate() error

	// Fingerprint returns the canonical cache key for this strategy.
	// Only valid strategies have meaningful fingerprints.
	Fingerprint() string
}

// Category retrieves articles tagged with a category, newest first.
type Category struct {
	Category string
	Limit    int
}

// Source retrieves articles from one publisher, newest first.
type Source struct {
	Source string
	Limit  int
}

// Search retrieves articles whose title or description contains the query,
// ordered by relevance score.
type Search struct {
	Query string
	Limit int
}

// Score retrieves articles at or above a relevance threshold, ordered by
// relevance score.
type Score struct {
	Threshold float64
	Limit     int
}

// Nearby retrieves located articles within a radius of a point, nearest
// first.
type Nearby struct {
	Center   models.Coordinate
	RadiusKm float64
	Limit    int
}

// Trending retrieves articles ranked by decayed local interaction score.
type Trending struct {
	Center   models.Coordinate
	RadiusKm float64
	Limit    int
}

func (Category) Name() string { return "category" }
func (Source) Name() string   { return "source" }
func (Search) Name() string   { return "search" }
func (Score) Name() string    { return "score" }
func (Nearby) Name() string   { return "nearby" }
func (Trending) Name() string { return "trending" }

func (s Category) Validate() error {
	if strings.TrimSpace(s.Category) == "" {
		return fmt.Errorf("%w: category must not be empty", ErrInvalidParameter)
	}
	return validateLimit(s.Limit)
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Source) == "" {
		return fmt.Errorf("%w: source must not be empty", ErrInvalidParameter)
	}
	return validateLimit(s.Limit)
}

func (s Search) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("%w: search query must not be empty", ErrInvalidParameter)
	}
	return validateLimit(s.Limit)
}

func (s Score) Validate() error {
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("%w: score threshold %g outside [0,1]", ErrInvalidParameter, s.Threshold)
	}
	return validateLimit(s.Limit)
}

func (s Nearby) Validate() error {
	if err := validateSpatial(s.Center, s.RadiusKm); err != nil {
		return err
	}
	return validateLimit(s.Limit)
}

func (s Trending) Validate() error {
	if err := validateSpatial(s.Center, s.RadiusKm); err != nil {
		return err
	}
	return validateLimit(s.Limit)
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidParameter, limit)
	}
	return nil
}

func validateSpatial(center models.Coordinate, radiusKm float64) error {
	if center.Latitude < -90 || center.Latitude > 90 {
		return fmt.Errorf("%w: latitude %g outside [-90,90]", ErrInvalidParameter, center.Latitude)
	}
	if center.Longitude < -180 || center.Longitude > 180 {
		return fmt.Errorf("%w: longitude %g outside [-180,180]", ErrInvalidParameter, center.Longitude)
	}
	if radiusKm < 0 {
		return fmt.Errorf("%w: radius must not be negative, got %g", ErrInvalidParameter, radiusKm)
	}
	return nil
}

// Fingerprint normalization: free text lowercased and trimmed,
// coordinates rounded to two decimals (~1.1 km), radius to one decimal,
// thresholds to two decimals. The normalized canonical string is hashed
// so fingerprints are fixed-width and safe as storage keys.

func (s Category) Fingerprint() string {
	return fingerprint("category", normText(s.Category), fmt.Sprintf("limit=%d", s.Limit))
}

func (s Source) Fingerprint() string {
	return fingerprint("source", normText(s.Source), fmt.Sprintf("limit=%d", s.Limit))
}

func (s Search) Fingerprint() string {
	return fingerprint("search", normText(s.Query), fmt.Sprintf("limit=%d", s.Limit))
}

func (s Score) Fingerprint() string {
	return fingerprint("score", fmt.Sprintf("threshold=%.2f", s.Threshold), fmt.Sprintf("limit=%d", s.Limit))
}

func (s Nearby) Fingerprint() string {
	return fingerprint("nearby", normCoordinate(s.Center), normRadius(s.RadiusKm), fmt.Sprintf("limit=%d", s.Limit))
}

func (s Trending) Fingerprint() string {
	return fingerprint("trending", normCoordinate(s.Center), normRadius(s.RadiusKm), fmt.Sprintf("limit=%d", s.Limit))
}

func fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func normText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normCoordinate(c models.Coordinate) string {
	return fmt.Sprintf("lat=%.2f,lon=%.2f", c.Latitude, c.Longitude)
}

func normRadius(radiusKm float64) string {
	return fmt.Sprintf("radius=%.1f", radiusKm)
}
