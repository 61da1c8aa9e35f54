// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package scheduler runs the periodic maintenance jobs.

	s := scheduler.New(logger)
	s.Schedule(scheduler.JobCleanupBackups, 24*time.Hour, cleanup)
	go s.Run(ctx)

The server schedules three jobs:

  - mt_cleanup_backups: purge unrestored backups and reset logs past retention
  - mt_jury_reminders: log jury members with unscored assigned candidates
  - mt_daily_report: log totals of candidates, assignments, votes and backups

Clear removes jobs and reports which ones were scheduled. Deactivation uses
it so nothing keeps firing afterwards.
*/
package scheduler
