// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

type EvaluationHandler struct {
	store *store.Store
}

func NewEvaluationHandler(st *store.Store) *EvaluationHandler {
	return &EvaluationHandler{store: st}
}

// criteria checks the submitted scores. An empty status becomes completed
// when all five are present and draft otherwise.
func criteria(req *models.SubmitEvaluationRequest) (models.Criteria, string) {
	var c models.Criteria
	fields := []struct {
		name  string
		value *float64
		dest  *float64
	}{
		{"courage_score", req.Courage, &c.Courage},
		{"innovation_score", req.Innovation, &c.Innovation},
		{"implementation_score", req.Implementation, &c.Implementation},
		{"relevance_score", req.Relevance, &c.Relevance},
		{"visibility_score", req.Visibility, &c.Visibility},
	}

	var missing string
	for _, f := range fields {
		if f.value == nil {
			if missing == "" {
				missing = f.name
			}
			continue
		}
		if *f.value < models.MinScore || *f.value > models.MaxScore {
			return c, f.name + " must be between 0 and 10"
		}
		*f.dest = *f.value
	}

	switch req.Status {
	case "":
		req.Status = models.EvaluationCompleted
		if missing != "" {
			req.Status = models.EvaluationDraft
		}
	case models.EvaluationCompleted:
		if missing != "" {
			return c, missing + " is required for a completed evaluation"
		}
	case models.EvaluationDraft:
	default:
		return c, "status must be draft or completed"
	}
	return c, ""
}

// SubmitEvaluation handles POST /evaluations
func (h *EvaluationHandler) SubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.SubmitEvaluationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.CandidateID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}
	c, problem := criteria(&req)
	if problem != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, problem)
		return
	}
	if req.Round == 0 {
		req.Round = 1
	}
	if req.Round < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "round must be at least 1")
		return
	}

	juryID, ok := scoringJury(w, r, h.store, id, req.CandidateID, req.JuryMemberID)
	if !ok {
		return
	}

	eval, err := h.store.UpsertEvaluation(r.Context(), models.Evaluation{
		CandidateID:  req.CandidateID,
		JuryMemberID: juryID,
		Round:        req.Round,
		Criteria:     c,
		Comments:     i18n.Normalize(req.Comments),
		Status:       req.Status,
	})
	if err != nil {
		storeError(w, err, "save evaluation")
		return
	}

	slog.Info("evaluation recorded",
		"evaluation_id", eval.ID,
		"candidate_id", eval.CandidateID,
		"jury_member_id", eval.JuryMemberID,
		"status", eval.Status,
		"total_score", eval.TotalScore,
	)

	middleware.JSONResponse(w, http.StatusCreated, eval)
}

// ListEvaluations handles GET /evaluations?candidate_id=&jury_member_id=&round=&status=
// Callers without mt_view_all_evaluations only see their own.
func (h *EvaluationHandler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var (
		f   store.EvaluationFilter
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
	f.Status = r.URL.Query().Get("status")

	if !id.Can(roles.CapViewAllEvaluations) {
		if id.JuryMember == nil {
			middleware.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		own := id.JuryMember.ID
		f.JuryMemberID = &own
	}

	evals, err := h.store.ListEvaluations(r.Context(), f)
	if err != nil {
		storeError(w, err, "list evaluations")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, evals)
}

// CreateBackup handles POST /evaluations/backups
func (h *EvaluationHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.EvaluationBackupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID <= 0 || req.JuryMemberID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id and jury_member_id are required")
		return
	}

	backupID, err := h.store.BackupEvaluation(r.Context(), req.CandidateID, req.JuryMemberID, id.User.ID, req.Reason)
	if err != nil {
		storeError(w, err, "back up evaluation")
		return
	}

	slog.Info("evaluation backed up", "backup_id", backupID, "candidate_id", req.CandidateID,
		"jury_member_id", req.JuryMemberID, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.BackupResponse{
		BackupID: backupID,
		Message:  "Evaluation backed up successfully",
	})
}

// RestoreBackup handles POST /evaluations/backups/{id}/restore
func (h *EvaluationHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	backupID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid backup ID")
		return
	}

	eval, err := h.store.RestoreEvaluationBackup(r.Context(), backupID, id.User.ID)
	if err != nil {
		storeError(w, err, "restore evaluation")
		return
	}

	slog.Info("evaluation restored", "backup_id", backupID, "evaluation_id", eval.ID, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusOK, models.EvaluationRestoreResponse{
		Evaluation: *eval,
		Message:    "Evaluation restored successfully",
	})
}

// GetHistory handles GET /evaluations/backups?candidate_id=&jury_member_id=&page=&per_page=
func (h *EvaluationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	var (
		hq  store.HistoryQuery
		err error
	)
	if hq.CandidateID, err = queryInt64(r, "candidate_id"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if hq.JuryMemberID, err = queryInt64(r, "jury_member_id"); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	hq.Page = queryInt(r, "page", 1)
	hq.PerPage = queryInt(r, "per_page", 20)

	history, err := h.store.EvaluationBackupHistory(r.Context(), hq)
	if err != nil {
		storeError(w, err, "load evaluation backup history")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, history)
}
