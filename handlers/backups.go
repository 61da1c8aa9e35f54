// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/export"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

type BackupHandler struct {
	store         *store.Store
	cache         *cache.Transients
	retentionDays int
	now           func() time.Time
}

func NewBackupHandler(st *store.Store, tc *cache.Transients, retentionDays int) *BackupHandler {
	return &BackupHandler{store: st, cache: tc, retentionDays: retentionDays, now: time.Now}
}

// CreateBackup handles POST /backups
func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.BackupVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID <= 0 || req.JuryMemberID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id and jury_member_id are required")
		return
	}

	backupID, err := h.store.BackupVote(r.Context(), req.CandidateID, req.JuryMemberID, id.User.ID, req.Reason)
	if err != nil {
		storeError(w, err, "back up vote")
		return
	}

	h.cache.Delete(cache.KeyBackupStats)
	slog.Info("vote backed up", "backup_id", backupID, "candidate_id", req.CandidateID,
		"jury_member_id", req.JuryMemberID, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.BackupResponse{
		BackupID: backupID,
		Message:  "Vote backed up successfully",
	})
}

// BulkBackup handles POST /backups/bulk
func (h *BackupHandler) BulkBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.BulkBackupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	f := store.VoteFilter{CandidateID: req.CandidateID, JuryMemberID: req.JuryMemberID, Round: req.Round}
	count, err := h.store.BulkBackup(r.Context(), f, id.User.ID, req.Reason)
	if err != nil {
		storeError(w, err, "back up votes")
		return
	}

	h.cache.Delete(cache.KeyBackupStats)
	slog.Info("votes backed up", "count", count, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.BulkBackupResponse{
		Count:   count,
		Message: fmt.Sprintf("%d votes backed up successfully", count),
	})
}

// RestoreBackup handles POST /backups/{id}/restore
func (h *BackupHandler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	backupID, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid backup ID")
		return
	}

	vote, err := h.store.RestoreBackup(r.Context(), backupID, id.User.ID)
	if err != nil {
		storeError(w, err, "restore backup")
		return
	}

	invalidateVotes(h.cache)
	slog.Info("vote restored", "backup_id", backupID, "vote_id", vote.ID, "user_id", id.User.ID)

	middleware.JSONResponse(w, http.StatusOK, models.RestoreResponse{
		Vote:    *vote,
		Message: "Vote restored successfully",
	})
}

// GetHistory handles GET /backups?candidate_id=&jury_member_id=&page=&per_page=&orderby=&order=
func (h *BackupHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
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
	hq.OrderBy = r.URL.Query().Get("orderby")
	hq.Order = r.URL.Query().Get("order")

	page, err := h.store.BackupHistory(r.Context(), hq)
	if err != nil {
		storeError(w, err, "load backup history")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BackupHistoryResponse{
		Backups:     page.Backups,
		Total:       page.Total,
		Pages:       page.Pages,
		CurrentPage: page.Page,
	})
}

// GetStats handles GET /backups/stats
func (h *BackupHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cache.KeyBackupStats); ok {
		if stats, ok := cached.(models.BackupStatsResponse); ok {
			middleware.JSONResponse(w, http.StatusOK, stats)
			return
		}
	}

	stats, err := h.store.BackupStats(r.Context(), h.now())
	if err != nil {
		storeError(w, err, "load backup statistics")
		return
	}
	stats.StorageSize = humanize.Bytes(uint64(stats.StorageBytes))

	h.cache.Set(cache.KeyBackupStats, stats, 0)
	middleware.JSONResponse(w, http.StatusOK, stats)
}

// Cleanup handles POST /backups/cleanup. An empty body uses the configured retention.
func (h *BackupHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	req := models.CleanupRequest{Days: h.retentionDays}
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Days < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "days must be at least 1")
		return
	}

	cutoff := h.now().UTC().AddDate(0, 0, -req.Days)
	deleted, err := h.store.CleanOldBackups(r.Context(), cutoff)
	if err != nil {
		storeError(w, err, "clean old backups")
		return
	}

	h.cache.Delete(cache.KeyBackupStats)
	slog.Info("old backups cleaned", "deleted", deleted, "days", req.Days)

	middleware.JSONResponse(w, http.StatusOK, models.CleanupResponse{Deleted: deleted, Days: req.Days})
}

// Export handles GET /backups/export?format=csv|json
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	backups, err := h.store.ListBackups(r.Context())
	if err != nil {
		storeError(w, err, "export backups")
		return
	}

	now := h.now()
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, export.BackupsFilename(now, format)))

	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		exportID, err := export.WriteBackupsJSON(w, backups, now)
		if err != nil {
			slog.Error("failed to write backup export", "error", err)
			return
		}
		slog.Info("backups exported", "format", format, "export_id", exportID, "count", len(backups))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := export.WriteBackupsCSV(w, backups); err != nil {
		slog.Error("failed to write backup export", "error", err)
		return
	}
	slog.Info("backups exported", "format", format, "count", len(backups))
}
