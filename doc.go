// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Mobility Trailblazers API server.

Mobility Trailblazers is the back office of an award competition: candidates
are assigned to jury members, jury members score them, and administrators
back up, restore and reset votes.

# Starting the Server

The server reads flags, environment variables (a .env file is loaded if
present) and an optional TOML file:

	DATABASE_URL=trailblazers.db USER_KEY_SALT=... NONCE_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - USER_KEY_SALT (--user-salt): Secret for user key HMAC
  - NONCE_SALT (--nonce-salt): Secret for action nonces

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MT_CONFIG (-c): TOML config file
  - BACKUP_RETENTION_DAYS (--retention-days): default 365
  - JOB_INTERVAL (--job-interval): maintenance job period (default: 24h)
  - LOCK_FILE (--lock-file): single-instance lock, defaulted for SQLite
  - LOG_LEVEL, LOG_FORMAT: slog level and auto/json/text output

# Architecture

  - handlers: HTTP request handlers (assignments, votes, evaluations, backups, resets, entities, admin)
  - router: Route definitions and guards using Go 1.22+ routing
  - middleware: identity, capabilities, nonces, CORS, request ids, JSON helpers
  - store: SQL storage for SQLite and PostgreSQL
  - scheduler: maintenance jobs run alongside the server
  - cmd/mtadmin: admin CLI over the same store

See package documentation for each component.
*/
package main
