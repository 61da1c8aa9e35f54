// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and applies schema migrations.

# Connecting

Open accepts a database type and a DSN:

	conn, err := db.Open(db.TypeSQLite, "trailblazers.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite connections carry their pragmas (foreign keys, busy timeout, WAL,
immediate write transactions) in the DSN so every pooled connection gets
them.

# Migrations

Migrate applies the embedded SQL files under migrations/<type>/ in lexical
order inside one transaction and records each version in schema_migrations:

	if err := db.Migrate(ctx, conn, db.TypeSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times.

# Tables

  - users: actors with a role name
  - jury_members: evaluators, optionally linked to a user
  - candidates: nominees with assignment and vote aggregates
  - submissions: nomination entries with a review status
  - votes: active votes, unique per (candidate, jury member, round)
  - vote_backups: point-in-time vote copies with actor and reason
  - vote_reset_logs: audit trail for resets and restores
  - settings: name/value options (voting_enabled)

# Relationships

	jury_members 1──* candidates (assigned_jury_id, SET NULL)
	candidates 1──* votes (CASCADE)
	jury_members 1──* votes (CASCADE)
	candidates 1──* submissions (SET NULL)
	users 1──1 jury_members (SET NULL)

Backups and reset logs keep plain ids so they outlive the rows they describe.
*/
package db
