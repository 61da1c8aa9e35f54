// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/trailblazers/assign"
	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/export"
	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

// NonceAction guards every assignment AJAX action
const NonceAction = "mt_nonce"

type AssignmentHandler struct {
	store *store.Store
	cache *cache.Transients
	now   func() time.Time
}

func NewAssignmentHandler(st *store.Store, tc *cache.Transients) *AssignmentHandler {
	return &AssignmentHandler{store: st, cache: tc, now: time.Now}
}

// AssignCandidates handles POST /ajax/mt_assign_candidates
func (h *AssignmentHandler) AssignCandidates(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.AjaxError(w, "Invalid form data")
		return
	}

	juryID, err := strconv.ParseInt(r.PostFormValue("jury_member_id"), 10, 64)
	if err != nil {
		middleware.AjaxError(w, "Invalid jury member")
		return
	}
	if _, err := h.store.GetJuryMember(r.Context(), juryID); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to load jury member", "error", err, "jury_member_id", juryID)
		}
		middleware.AjaxError(w, "Invalid jury member")
		return
	}

	now := h.now()
	assigned := 0
	for _, raw := range candidateIDs(r) {
		candidateID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ok, err := h.store.AssignCandidate(r.Context(), candidateID, juryID, now)
		if err != nil {
			slog.Error("failed to assign candidate", "error", err, "candidate_id", candidateID)
			continue
		}
		if ok {
			assigned++
		}
	}

	invalidateAssignments(h.cache)
	slog.Info("candidates assigned", "jury_member_id", juryID, "count", assigned)

	middleware.AjaxSuccess(w, models.AjaxMessage{
		Message: fmt.Sprintf("%d candidates assigned successfully", assigned),
	})
}

// candidateIDs accepts both candidate_ids[] and candidate_ids
func candidateIDs(r *http.Request) []string {
	ids := append([]string(nil), r.PostForm["candidate_ids[]"]...)
	return append(ids, r.PostForm["candidate_ids"]...)
}

// AutoAssign handles POST /ajax/mt_auto_assign
func (h *AssignmentHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	perJury, err := strconv.Atoi(strings.TrimSpace(r.FormValue("candidates_per_jury")))
	if err != nil || perJury < 1 {
		middleware.AjaxError(w, "Invalid candidates per jury value")
		return
	}

	algorithm, err := assign.ValidateAlgorithm(r.FormValue("algorithm"))
	if err != nil {
		middleware.AjaxError(w, "Invalid algorithm")
		return
	}

	res, err := assign.Auto(r.Context(), h.store, perJury, r.FormValue("clear_existing") == "true", h.now())
	if errors.Is(err, assign.ErrNoJuryMembers) {
		middleware.AjaxError(w, "No jury members available")
		return
	}
	if err != nil {
		slog.Error("failed to auto-assign candidates", "error", err)
		invalidateAssignments(h.cache)
		middleware.AjaxError(w, "Failed to save assignments")
		return
	}

	invalidateAssignments(h.cache)
	slog.Info("auto-assignment completed",
		"algorithm", algorithm,
		"per_jury", perJury,
		"total_assigned", res.TotalAssigned,
		"cleared", res.Cleared,
	)

	middleware.AjaxSuccess(w, models.AutoAssignResult{
		Message:       "Auto-assignment completed successfully",
		Assignments:   res.PerJury,
		TotalAssigned: res.TotalAssigned,
		Algorithm:     algorithm,
		Cleared:       res.Cleared,
	})
}

// ExportAssignments handles POST /ajax/mt_export_assignments
func (h *AssignmentHandler) ExportAssignments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.AssignmentRows(r.Context())
	if err != nil {
		slog.Error("failed to load assignment rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export assignments")
		return
	}

	labels := i18n.New(i18n.Match(r.Header.Get("Accept-Language")))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, export.AssignmentsFilename(h.now())))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteAssignmentsCSV(w, rows, labels); err != nil {
		slog.Error("failed to write assignments export", "error", err)
	}
}

// GetAssignmentData handles POST /ajax/mt_get_assignment_data
func (h *AssignmentHandler) GetAssignmentData(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cache.KeyAssignmentStats); ok {
		if data, ok := cached.(models.AssignmentData); ok {
			middleware.AjaxSuccess(w, data)
			return
		}
	}

	data, err := h.assignmentData(r)
	if err != nil {
		slog.Error("failed to build assignment data", "error", err)
		middleware.AjaxError(w, "Failed to load assignment data")
		return
	}

	h.cache.Set(cache.KeyAssignmentStats, data, 0)
	middleware.AjaxSuccess(w, data)
}

func (h *AssignmentHandler) assignmentData(r *http.Request) (models.AssignmentData, error) {
	ctx := r.Context()

	candidates, err := h.store.ListCandidates(ctx)
	if err != nil {
		return models.AssignmentData{}, err
	}
	jury, err := h.store.ListJuryMembers(ctx)
	if err != nil {
		return models.AssignmentData{}, err
	}
	counts, err := h.store.CountAssignmentsByJury(ctx)
	if err != nil {
		return models.AssignmentData{}, err
	}

	data := models.AssignmentData{
		Candidates:  make([]models.AssignmentCandidate, 0, len(candidates)),
		JuryMembers: make([]models.AssignmentJuryMember, 0, len(jury)),
	}

	assigned := 0
	for _, c := range candidates {
		if c.AssignedJuryID != nil {
			assigned++
		}
		data.Candidates = append(data.Candidates, models.AssignmentCandidate{
			ID:           c.ID,
			Name:         c.Name,
			Company:      c.Company,
			Category:     c.Category,
			Assigned:     c.AssignedJuryID != nil,
			JuryMemberID: c.AssignedJuryID,
			DateCreated:  c.CreatedAt.UTC().Format(time.DateTime),
		})
	}
	for _, j := range jury {
		data.JuryMembers = append(data.JuryMembers, models.AssignmentJuryMember{
			ID:             j.ID,
			Name:           j.Name,
			Assignments:    counts[j.ID],
			MaxAssignments: j.MaxAssignments,
		})
	}

	// Both lists are ordered by name
	sort.SliceStable(data.Candidates, func(a, b int) bool {
		return data.Candidates[a].Name < data.Candidates[b].Name
	})
	sort.SliceStable(data.JuryMembers, func(a, b int) bool {
		return data.JuryMembers[a].Name < data.JuryMembers[b].Name
	})

	data.Statistics = assignmentStatistics(len(candidates), len(jury), assigned)
	return data, nil
}

func assignmentStatistics(totalCandidates, totalJury, assigned int) models.AssignmentStatistics {
	completion, avg := 0.0, 0.0
	if totalCandidates > 0 {
		completion = float64(assigned) / float64(totalCandidates) * 100
	}
	if totalJury > 0 {
		avg = float64(assigned) / float64(totalJury)
	}
	return models.AssignmentStatistics{
		TotalCandidates: totalCandidates,
		TotalJury:       totalJury,
		AssignedCount:   assigned,
		CompletionRate:  fmt.Sprintf("%.1f%%", completion),
		AvgPerJury:      fmt.Sprintf("%.1f", avg),
	}
}
