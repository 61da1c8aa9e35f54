// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

type ReportsHandler struct {
	store *store.Store
	cache *cache.Transients
}

func NewReportsHandler(st *store.Store, tc *cache.Transients) *ReportsHandler {
	return &ReportsHandler{store: st, cache: tc}
}

// GetRankings handles GET /reports/rankings?round=
func (h *ReportsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	round := queryInt(r, "round", 0)
	if round < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round must not be negative")
		return
	}

	key := cache.KeyRankings + strconv.Itoa(round)
	if cached, ok := h.cache.Get(key); ok {
		if resp, ok := cached.(models.RankingsResponse); ok {
			middleware.JSONResponse(w, http.StatusOK, resp)
			return
		}
	}

	rankings, err := ComputeRankings(r.Context(), h.store, round)
	if err != nil {
		slog.Error("failed to compute rankings", "error", err, "round", round)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to compute rankings")
		return
	}

	resp := models.RankingsResponse{Round: round, Rankings: rankings}
	h.cache.Set(key, resp, 0)

	middleware.JSONResponse(w, http.StatusOK, resp)
}
