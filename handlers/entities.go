// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/auth"
	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

// EntityHandler manages users, candidates, jury members and submissions.
type EntityHandler struct {
	store       *store.Store
	cache       *cache.Transients
	userKeySalt string
}

func NewEntityHandler(st *store.Store, tc *cache.Transients, userKeySalt string) *EntityHandler {
	return &EntityHandler{store: st, cache: tc, userKeySalt: userKeySalt}
}

// ListHandler returns the listing handler for a registered entity type, or
// nil when the type has no listing.
func (h *EntityHandler) ListHandler(name string) http.HandlerFunc {
	switch name {
	case models.EntityCandidate:
		return h.ListCandidates
	case models.EntityJury:
		return h.ListJuryMembers
	case models.EntitySubmission:
		return h.ListSubmissions
	}
	return nil
}

// CreateUser handles POST /users. The response carries the user key, which
// is not stored and cannot be retrieved again.
func (h *EntityHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Login = i18n.Normalize(req.Login)
	if req.Login == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "login is required")
		return
	}
	if !roles.Valid(req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
		return
	}
	display := i18n.Normalize(req.DisplayName)
	if display == "" {
		display = req.Login
	}

	u, err := h.store.CreateUser(r.Context(), req.Login, display, req.Role)
	if err != nil {
		storeError(w, err, "create user")
		return
	}

	slog.Info("user created", "user_id", u.ID, "login", u.Login, "role", u.Role)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateUserResponse{
		User:    *u,
		UserKey: auth.GenerateUserKey(u.ID, h.userKeySalt),
	})
}

// CreateCandidate handles POST /candidates
func (h *EntityHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := i18n.Normalize(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.store.CreateCandidate(r.Context(), name, i18n.Normalize(req.Company), i18n.Normalize(req.Category))
	if err != nil {
		storeError(w, err, "create candidate")
		return
	}

	invalidateAssignments(h.cache)
	h.cache.DeletePrefix(cache.KeyRankings)
	slog.Info("candidate created", "candidate_id", c.ID, "name", c.Name)

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// GetCandidate handles GET /candidates/{id}
func (h *EntityHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid candidate ID")
		return
	}

	c, err := h.store.GetCandidate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		storeError(w, err, "load candidate")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, c)
}

// ListCandidates handles GET /candidates
func (h *EntityHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.ListCandidates(r.Context())
	if err != nil {
		storeError(w, err, "list candidates")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// CreateJuryMember handles POST /jury
func (h *EntityHandler) CreateJuryMember(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJuryMemberRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := i18n.Normalize(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.MaxAssignments < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "max_assignments must not be negative")
		return
	}

	ctx := r.Context()
	if req.UserID != nil {
		if _, err := h.store.GetUser(ctx, *req.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown user")
				return
			}
			storeError(w, err, "load user")
			return
		}
	}

	j, err := h.store.CreateJuryMember(ctx, name, req.UserID, req.MaxAssignments)
	if err != nil {
		storeError(w, err, "create jury member")
		return
	}

	invalidateAssignments(h.cache)
	slog.Info("jury member created", "jury_member_id", j.ID, "name", j.Name)

	middleware.JSONResponse(w, http.StatusCreated, j)
}

// ListJuryMembers handles GET /jury
func (h *EntityHandler) ListJuryMembers(w http.ResponseWriter, r *http.Request) {
	jury, err := h.store.ListJuryMembers(r.Context())
	if err != nil {
		storeError(w, err, "list jury members")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, jury)
}

// CreateSubmission handles POST /submissions
func (h *EntityHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubmissionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	title := i18n.Normalize(req.Title)
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	sub, err := h.store.CreateSubmission(r.Context(), req.CandidateID, title, i18n.Normalize(req.Content))
	if err != nil {
		storeError(w, err, "create submission")
		return
	}

	slog.Info("submission created", "submission_id", sub.ID)
	middleware.JSONResponse(w, http.StatusCreated, sub)
}

// ListSubmissions handles GET /submissions?status=
func (h *EntityHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !store.ValidStatus(status) {
		middleware.ErrorResponse(w, http.StatusBadRequest, store.ErrInvalidStatus.Error())
		return
	}

	subs, err := h.store.ListSubmissions(r.Context(), status)
	if err != nil {
		storeError(w, err, "list submissions")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, subs)
}

// SetSubmissionStatus handles POST /submissions/{id}/status
func (h *EntityHandler) SetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var req models.SetSubmissionStatusRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.store.SetSubmissionStatus(r.Context(), id, req.Status); err != nil {
		storeError(w, err, "update submission")
		return
	}

	slog.Info("submission status changed", "submission_id", id, "status", req.Status)
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": req.Status,
	})
}
