// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/scheduler"
)

// menu is the admin navigation before capability filtering
var menu = models.MenuItem{
	Slug:       "mobility-trailblazers",
	Title:      i18n.MenuMain,
	Capability: roles.CapManageAwards,
	Children: []models.MenuItem{
		{Slug: "mt-submissions", Title: i18n.MenuSubmissions, Capability: roles.CapManageAwards},
		{Slug: "mt-voting", Title: i18n.MenuVoting, Capability: roles.CapManageVoting},
		{Slug: "mt-reports", Title: i18n.MenuReports, Capability: roles.CapViewAllEvaluations},
		{Slug: "mt-settings", Title: i18n.MenuSettings, Capability: roles.CapManageOptions},
	},
}

type AdminHandler struct {
	guard *middleware.Guard
	jobs  *scheduler.Scheduler
	cache *cache.Transients
}

func NewAdminHandler(guard *middleware.Guard, jobs *scheduler.Scheduler, tc *cache.Transients) *AdminHandler {
	return &AdminHandler{guard: guard, jobs: jobs, cache: tc}
}

// GetMenu handles GET /admin/menu
// Entries the caller cannot open are left out; titles follow Accept-Language.
func (h *AdminHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, visibleMenu(id, i18n.New(i18n.Match(r.Header.Get("Accept-Language")))))
}

func visibleMenu(id *middleware.Identity, tr i18n.Translator) []models.MenuItem {
	items := []models.MenuItem{}
	if !id.Can(menu.Capability) {
		return items
	}

	top := models.MenuItem{Slug: menu.Slug, Title: tr.T(menu.Title), Capability: menu.Capability}
	for _, child := range menu.Children {
		if id.Can(child.Capability) {
			child.Title = tr.T(child.Title)
			top.Children = append(top.Children, child)
		}
	}
	return append(items, top)
}

// GetNonce handles GET /nonce?action=
func (h *AdminHandler) GetNonce(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "action is required")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NonceResponse{
		Action: action,
		Nonce:  h.guard.CreateNonce(id.User.ID, action),
	})
}

// Deactivate handles POST /admin/deactivate
// It unschedules the maintenance jobs and drops every transient.
func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	cleared := h.jobs.Clear(scheduler.JobNames...)
	flushed := h.cache.Flush()

	slog.Warn("plugin deactivated", "cleared_jobs", cleared, "cleared_transients", flushed)

	middleware.JSONResponse(w, http.StatusOK, models.DeactivateResponse{
		ClearedJobs:       cleared,
		ClearedTransients: flushed,
	})
}
