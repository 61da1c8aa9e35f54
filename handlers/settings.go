// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

// SettingsGroup is the single registered option group
const SettingsGroup = "mt_settings"

type SettingsHandler struct {
	store *store.Store
}

func NewSettingsHandler(st *store.Store) *SettingsHandler {
	return &SettingsHandler{store: st}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.writeSettings(w, r)
}

// UpdateSettings handles PUT /settings. Omitted fields keep their value.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.VotingEnabled != nil {
		if err := h.store.SetVotingEnabled(r.Context(), *req.VotingEnabled); err != nil {
			slog.Error("failed to save settings", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
		slog.Info("settings updated", "group", SettingsGroup, "voting_enabled", *req.VotingEnabled)
	}

	h.writeSettings(w, r)
}

func (h *SettingsHandler) writeSettings(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.store.VotingEnabled(r.Context())
	if err != nil {
		slog.Error("failed to read settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SettingsResponse{
		Group:         SettingsGroup,
		VotingEnabled: enabled,
	})
}
