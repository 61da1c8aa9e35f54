// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Mobility Trailblazers API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints, and
Handler adds request ids and CORS around it:

	mux := router.NewRouter(st, cfg, transients, jobs)
	server.Handler = router.Handler(mux)

# Guards

Routes are wrapped by one of:

  - authenticated: X-User-ID and X-User-Key must resolve to a user
  - capability: authenticated, and the user's role must grant the capability
  - ajax: authenticated, then a valid mt_nonce nonce, then the capability

# Endpoints

Health:

	GET /health

Assignments (ajax):

	POST /ajax/mt_assign_candidates
	POST /ajax/mt_auto_assign
	POST /ajax/mt_export_assignments
	POST /ajax/mt_get_assignment_data

Votes, backups and resets:

	POST /votes, GET /votes
	POST /evaluations, GET /evaluations
	POST /evaluations/backups, GET /evaluations/backups
	POST /evaluations/backups/{id}/restore
	POST /backups, POST /backups/bulk, POST /backups/{id}/restore
	GET  /backups, GET /backups/stats, GET /backups/export
	POST /backups/cleanup
	POST /resets, POST /resets/bulk, GET /resets

Entities:

	POST /users, POST /candidates, POST /jury, POST /submissions
	POST /submissions/{id}/status
	GET  /candidates, GET /candidates/{id}, GET /jury, GET /submissions

Read routes come from models.EntityTypes. Public types are served without
credentials.

Administration:

	GET /settings, PUT /settings
	GET /admin/menu, GET /nonce, POST /admin/deactivate
	GET /reports/rankings
*/
package router
