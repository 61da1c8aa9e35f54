// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - User: an account with one role
  - Candidate: a nominee, optionally assigned to one jury member
  - JuryMember: an evaluator, optionally linked to a user
  - Vote: one score per candidate, jury member and round
  - VoteBackup: a copy of a vote taken before it was changed or removed
  - ResetLog: audit entry for an individual or bulk reset
  - Submission: an entry with mirrored vote aggregates

# Entity Registry

EntityTypes lists the content types with their REST base, capability and
visibility. The router mounts read routes from it.

# Constants

Submission status values:

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

Bulk reset scopes:

	ResetAllUserVotes, ResetAllCandidate, ResetFull
*/
package models
