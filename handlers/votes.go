// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

type VoteHandler struct {
	store *store.Store
	cache *cache.Transients
}

func NewVoteHandler(st *store.Store, tc *cache.Transients) *VoteHandler {
	return &VoteHandler{store: st, cache: tc}
}

// SubmitVote handles POST /votes
func (h *VoteHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	if req.Score < models.MinScore || req.Score > models.MaxScore {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be between 0 and 10")
		return
	}
	if req.Round == 0 {
		req.Round = 1
	}
	if req.Round < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round must be at least 1")
		return
	}

	ctx := r.Context()
	juryID, ok := scoringJury(w, r, h.store, id, req.CandidateID, req.JuryMemberID)
	if !ok {
		return
	}

	vote, err := h.store.UpsertVote(ctx, models.Vote{
		CandidateID:  req.CandidateID,
		JuryMemberID: juryID,
		Round:        req.Round,
		Score:        req.Score,
		Comments:     i18n.Normalize(req.Comments),
	})
	if err != nil {
		storeError(w, err, "save vote")
		return
	}

	invalidateVotes(h.cache)
	slog.Info("vote recorded",
		"vote_id", vote.ID,
		"candidate_id", vote.CandidateID,
		"jury_member_id", vote.JuryMemberID,
		"round", vote.Round,
	)

	middleware.JSONResponse(w, http.StatusCreated, vote)
}

// ListVotes handles GET /votes?candidate_id=&jury_member_id=&round=
// Callers without mt_view_all_evaluations only see their own votes.
func (h *VoteHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var (
		f   store.VoteFilter
		err error
	)
	if f.CandidateID, err = queryInt64(r, "candidate_id"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.JuryMemberID, err = queryInt64(r, "jury_member_id"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if round := queryInt(r, "round", 0); round > 0 {
		f.Round = &round
	}

	if !id.Can(roles.CapViewAllEvaluations) {
		if id.JuryMember == nil {
			middleware.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		own := id.JuryMember.ID
		f.JuryMemberID = &own
	}

	votes, err := h.store.ListVotes(r.Context(), f)
	if err != nil {
		storeError(w, err, "list votes")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, votes)
}

// scoringJury resolves which jury member is scoring the candidate and
// rejects the request when voting is closed or the caller may not score it.
// Managers may score on behalf of a jury member; everyone else scores as
// themselves and only their assigned candidates. It writes the error
// response itself.
func scoringJury(w http.ResponseWriter, r *http.Request, st *store.Store, id *middleware.Identity, candidateID, requestedJury int64) (int64, bool) {
	ctx := r.Context()
	enabled, err := st.VotingEnabled(ctx)
	if err != nil {
		slog.Error("failed to read voting setting", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return 0, false
	}
	if !enabled {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting is currently disabled")
		return 0, false
	}

	manager := id.Can(roles.CapManageVoting)
	var juryID int64
	switch {
	case requestedJury != 0 && manager:
		juryID = requestedJury
	case id.JuryMember != nil && (requestedJury == 0 || requestedJury == id.JuryMember.ID):
		juryID = id.JuryMember.ID
	default:
		middleware.ErrorResponse(w, http.StatusForbidden, "Not a jury member")
		return 0, false
	}

	if _, err := st.GetJuryMember(ctx, juryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Jury member not found")
			return 0, false
		}
		storeError(w, err, "load jury member")
		return 0, false
	}

	candidate, err := st.GetCandidate(ctx, candidateID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return 0, false
	}
	if err != nil {
		storeError(w, err, "load candidate")
		return 0, false
	}

	if !manager && (candidate.AssignedJuryID == nil || *candidate.AssignedJuryID != juryID) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Candidate is not assigned to you")
		return 0, false
	}
	return juryID, true
}
