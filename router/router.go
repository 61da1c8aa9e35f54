// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/cliparse"
	"github.com/danielhkuo/trailblazers/handlers"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/scheduler"
	"github.com/danielhkuo/trailblazers/store"
)

func NewRouter(st *store.Store, cfg cliparse.Config, tc *cache.Transients, jobs *scheduler.Scheduler) *http.ServeMux {
	mux := http.NewServeMux()
	guard := middleware.NewGuard(st, cfg.UserKeySalt, cfg.NonceSalt, cfg.NonceLifetime)

	// Initialize handlers
	assignmentHandler := handlers.NewAssignmentHandler(st, tc)
	voteHandler := handlers.NewVoteHandler(st, tc)
	evaluationHandler := handlers.NewEvaluationHandler(st)
	backupHandler := handlers.NewBackupHandler(st, tc, cfg.BackupRetentionDays)
	resetHandler := handlers.NewResetHandler(st, tc)
	entityHandler := handlers.NewEntityHandler(st, tc, cfg.UserKeySalt)
	settingsHandler := handlers.NewSettingsHandler(st)
	adminHandler := handlers.NewAdminHandler(guard, jobs, tc)
	reportsHandler := handlers.NewReportsHandler(st, tc)

	// capability wraps a handler with logging, authentication and a capability check
	capability := func(required string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(guard.RequireCapability(required, h))
	}
	// ajax verifies the assignment nonce before the capability
	ajax := func(required string, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(guard.Authenticate(
			guard.VerifyNonce(handlers.NonceAction, middleware.Allow(required, h))))
	}
	authenticated := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(guard.Authenticate(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Assignment AJAX actions (form-encoded, nonce-protected)
	mux.HandleFunc("POST /ajax/mt_assign_candidates", ajax(roles.CapManageAssignments, assignmentHandler.AssignCandidates))
	mux.HandleFunc("POST /ajax/mt_auto_assign", ajax(roles.CapManageAssignments, assignmentHandler.AutoAssign))
	mux.HandleFunc("POST /ajax/mt_export_assignments", ajax(roles.CapExportData, assignmentHandler.ExportAssignments))
	mux.HandleFunc("POST /ajax/mt_get_assignment_data", ajax(roles.CapManageAssignments, assignmentHandler.GetAssignmentData))

	// Votes
	mux.HandleFunc("POST /votes", authenticated(voteHandler.SubmitVote))
	mux.HandleFunc("GET /votes", authenticated(voteHandler.ListVotes))

	// Criteria evaluations and their backups
	mux.HandleFunc("POST /evaluations", authenticated(evaluationHandler.SubmitEvaluation))
	mux.HandleFunc("GET /evaluations", authenticated(evaluationHandler.ListEvaluations))
	mux.HandleFunc("POST /evaluations/backups", capability(roles.CapManageVoting, evaluationHandler.CreateBackup))
	mux.HandleFunc("GET /evaluations/backups", capability(roles.CapManageVoting, evaluationHandler.GetHistory))
	mux.HandleFunc("POST /evaluations/backups/{id}/restore", capability(roles.CapManageVoting, evaluationHandler.RestoreBackup))

	// Vote backups
	mux.HandleFunc("POST /backups", capability(roles.CapManageVoting, backupHandler.CreateBackup))
	mux.HandleFunc("POST /backups/bulk", capability(roles.CapManageVoting, backupHandler.BulkBackup))
	mux.HandleFunc("POST /backups/{id}/restore", capability(roles.CapManageVoting, backupHandler.RestoreBackup))
	mux.HandleFunc("GET /backups", capability(roles.CapManageVoting, backupHandler.GetHistory))
	mux.HandleFunc("GET /backups/stats", capability(roles.CapManageVoting, backupHandler.GetStats))
	mux.HandleFunc("POST /backups/cleanup", capability(roles.CapManageVoting, backupHandler.Cleanup))
	mux.HandleFunc("GET /backups/export", capability(roles.CapManageVoting, backupHandler.Export))

	// Vote resets. Individual resets check ownership in the handler.
	mux.HandleFunc("POST /resets", authenticated(resetHandler.ResetVote))
	mux.HandleFunc("POST /resets/bulk", capability(roles.CapResetVotes, resetHandler.BulkReset))
	mux.HandleFunc("GET /resets", capability(roles.CapManageVoting, resetHandler.GetHistory))

	// Entity writes
	mux.HandleFunc("POST /users", capability(roles.CapManageOptions, entityHandler.CreateUser))
	mux.HandleFunc("POST /candidates", capability(roles.CapManageAwards, entityHandler.CreateCandidate))
	mux.HandleFunc("POST /jury", capability(roles.CapManageJuryMembers, entityHandler.CreateJuryMember))
	mux.HandleFunc("POST /submissions", capability(roles.CapRead, entityHandler.CreateSubmission))
	mux.HandleFunc("POST /submissions/{id}/status", capability(roles.CapManageAwards, entityHandler.SetSubmissionStatus))

	// Entity reads, mounted from the registry
	for _, et := range models.EntityTypes {
		list := entityHandler.ListHandler(et.Name)
		if !et.ShowInREST || list == nil {
			continue
		}
		mux.HandleFunc("GET /"+et.RESTBase, entityRead(et, list, capability))
		if et.Name == models.EntityCandidate {
			mux.HandleFunc("GET /"+et.RESTBase+"/{id}", entityRead(et, entityHandler.GetCandidate, capability))
		}
	}

	// Settings
	mux.HandleFunc("GET /settings", capability(roles.CapManageVoting, settingsHandler.GetSettings))
	mux.HandleFunc("PUT /settings", capability(roles.CapManageOptions, settingsHandler.UpdateSettings))

	// Administration
	mux.HandleFunc("GET /admin/menu", authenticated(adminHandler.GetMenu))
	mux.HandleFunc("GET /nonce", authenticated(adminHandler.GetNonce))
	mux.HandleFunc("POST /admin/deactivate", capability(roles.CapManageOptions, adminHandler.Deactivate))

	// Reports
	mux.HandleFunc("GET /reports/rankings", capability(roles.CapViewAllEvaluations, reportsHandler.GetRankings))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mobility-trailblazers API v1"))
	})

	return mux
}

// Handler wraps the mux with request ids and CORS
func Handler(mux http.Handler) http.Handler {
	return middleware.RequestID(middleware.CORS(mux))
}

// entityRead exposes a public entity type to anonymous clients and guards
// the rest with the type's capability.
func entityRead(et models.EntityType, h http.HandlerFunc, capability func(string, http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	if et.Public {
		return middleware.WithLogging(h)
	}
	return capability(et.Capability, h)
}
