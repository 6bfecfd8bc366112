// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

// Package models defines the shared data types for Newsatlas: news articles,
// user interaction events, query analysis results, and API response envelopes.
//
// The package has no dependencies on other internal packages so it can be
// imported from anywhere without creating cycles.
package models
