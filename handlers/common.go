// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/store"
)

// pathID parses a positive integer path value
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional positive integer query parameter
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, errors.New(name + " must be a positive integer")
	}
	return &v, nil
}

// queryInt parses an optional integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// caller returns the identity placed by the guard. Routes that reach a
// handler without one are misconfigured, so a 401 is written.
func caller(w http.ResponseWriter, r *http.Request) (*middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return id, true
}

// storeError maps repository errors onto HTTP statuses
func storeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrBackupNotFound),
		errors.Is(err, store.ErrNoActiveVote),
		errors.Is(err, store.ErrNoActiveEvaluation):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidScope),
		errors.Is(err, store.ErrConfirmRequired),
		errors.Is(err, store.ErrInvalidStatus):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrBackupIntegrity):
		middleware.ErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// invalidateVotes drops transients derived from votes and backups
func invalidateVotes(tc *cache.Transients) {
	tc.DeletePrefix(cache.KeyRankings)
	tc.Delete(cache.KeyBackupStats)
}

// invalidateAssignments drops transients derived from assignments
func invalidateAssignments(tc *cache.Transients) {
	tc.Delete(cache.KeyAssignmentStats)
}
