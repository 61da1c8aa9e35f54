// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Mobility Trailblazers API.

# Handler Types

Each handler is a struct holding the store and, where results are cached,
the transient cache:

  - AssignmentHandler: manual and automatic candidate assignment, CSV export
  - VoteHandler: vote submission and listing
  - EvaluationHandler: criteria evaluations and their backups
  - BackupHandler: vote backups, restores, history, statistics and export
  - ResetHandler: individual and bulk vote resets with their audit log
  - EntityHandler: users, candidates, jury members and submissions
  - SettingsHandler: the mt_settings option group
  - AdminHandler: admin menu, nonces and deactivation
  - ReportsHandler: candidate rankings

Handlers are created via constructor functions:

	voteHandler := handlers.NewVoteHandler(st, transients)

The caller identity is placed in the request context by the middleware
guard; handlers read it back with middleware.GetIdentity.

# Assignment Actions

The assignment endpoints keep the form-encoded AJAX contract of the admin
screens. Every response is an envelope:

	{"success": true,  "data": {...}}
	{"success": false, "data": {"message": "..."}}

and every request carries a nonce for the mt_nonce action.

# Votes, Backups and Resets

A vote is unique per candidate, jury member and round. Resets copy each
vote into vote_backups before deleting it, and every reset or restore is
written to the reset log:

	POST /resets               → ResetVote (backs up, then deletes)
	POST /backups/{id}/restore → RestoreBackup (backs up, then replaces the pair's votes)

# Rankings

Rankings are computed in rankings.go:

	rankings, err := ComputeRankings(ctx, st, round)

Candidates are ordered by median score, then p10, p90 and mean, with ties
broken by candidate id.
*/
package handlers
