// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

type ResetHandler struct {
	store *store.Store
	cache *cache.Transients
}

func NewResetHandler(st *store.Store, tc *cache.Transients) *ResetHandler {
	return &ResetHandler{store: st, cache: tc}
}

// ResetVote handles POST /resets
// Administrators may reset any vote; a jury member only their own.
func (h *ResetHandler) ResetVote(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.ResetVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID <= 0 || req.JuryMemberID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id and jury_member_id are required")
		return
	}

	owner := id.JuryMember != nil && id.JuryMember.ID == req.JuryMemberID
	if !id.Can(roles.CapResetVotes) && !owner {
		middleware.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	res, err := h.store.ResetVote(r.Context(), req.CandidateID, req.JuryMemberID, id.User.ID, req.Reason)
	if err != nil {
		storeError(w, err, "reset vote")
		return
	}

	invalidateVotes(h.cache)
	slog.Info("vote reset", "candidate_id", req.CandidateID, "jury_member_id", req.JuryMemberID,
		"votes", res.VotesReset, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		VotesReset: res.VotesReset,
		BackupIDs:  res.BackupIDs,
		Message:    "Vote reset successfully",
	})
}

// BulkReset handles POST /resets/bulk
func (h *ResetHandler) BulkReset(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.BulkResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.store.BulkReset(r.Context(), store.BulkResetRequest{
		Scope:        req.Scope,
		CandidateID:  req.CandidateID,
		JuryMemberID: req.JuryMemberID,
		Confirm:      req.Confirm,
		ActorID:      id.User.ID,
		Reason:       req.Reason,
	})
	if err != nil {
		storeError(w, err, "reset votes")
		return
	}

	invalidateVotes(h.cache)
	slog.Warn("bulk vote reset", "scope", req.Scope, "votes", res.VotesReset, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		VotesReset: res.VotesReset,
		BackupIDs:  res.BackupIDs,
		Message:    fmt.Sprintf("%d votes reset successfully", res.VotesReset),
	})
}

// GetHistory handles GET /resets?page=&per_page=
func (h *ResetHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 20)

	logs, total, err := h.store.ResetHistory(r.Context(), page, perPage)
	if err != nil {
		storeError(w, err, "load reset history")
		return
	}

	// Same clamping the store applies
	if page < 1 {
		page = 1
	}
	switch {
	case perPage <= 0:
		perPage = 20
	case perPage > 200:
		perPage = 200
	}
	pages := 0
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResetHistoryResponse{
		Resets:      logs,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	})
}
