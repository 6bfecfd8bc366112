// Newsatlas - Contextual News Retrieval and Location-Based Trending
// Copyright 2026 Newsatlas Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newsatlas/newsatlas

package api

import (
	"net/http"
	"time"

	"github.com/newsatlas/newsatlas/internal/models"
)

// RecordEvent handles POST /api/v1/events.
func (h *Handler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req models.RecordEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.EventType.Valid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"event_type must be one of view, click, like, share", nil)
		return
	}

	eventID, err := h.service.RecordEvent(r.Context(), req, time.Now().UTC())
	if err != nil {
		respondRetrievalError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]string{
		"event_id": eventID,
	}, models.Metadata{Timestamp: time.Now()})
}
