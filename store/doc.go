// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the repository layer of the award back office.

A Store wraps a migrated *sql.DB (SQLite or PostgreSQL) and owns every SQL
statement the application issues. Queries use numbered placeholders ($1, $2)
which both drivers accept.

# Votes

The votes table only holds active votes, at most one per candidate, jury
member and round. The active vote of a pair is the one with the highest
round. Every write that changes votes also refreshes the candidate's
vote_count and average_score and mirrors them onto linked submissions.

# Backups, restores and resets

Backups are point-in-time copies of votes. Restoring a backup runs in one
transaction:

 1. load the backup (ErrBackupNotFound if missing)
 2. check it names a pair and round with an in-range score (ErrBackupIntegrity)
 3. back up every vote of the pair as pre_restore, then delete it
 4. reinsert the backed-up vote
 5. stamp restored_at and restored_by on the backup
 6. write a "restore" entry to the reset log
 7. recompute aggregates

Resets back each vote up before deleting it, then log the reset. Backup,
restore and reset failures are returned as *OpError so callers can report
the operation and unwrap the cause:

	_, err := s.RestoreBackup(ctx, backupID, actorID)
	if errors.Is(err, store.ErrBackupNotFound) {
		// 404
	}

Retention cleanup never deletes a backup that has been restored.

# Evaluations

Evaluations score a candidate on five criteria and keep their own backup
table. Their restore follows the same steps without the reset log and
aggregates, since evaluations do not feed vote statistics.
*/
package store
