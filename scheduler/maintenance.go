// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/trailblazers/models"
)

// MaintenanceStore is the storage the maintenance jobs work on.
type MaintenanceStore interface {
	CleanOldBackups(ctx context.Context, cutoff time.Time) (int64, error)
	CleanOldResetLogs(ctx context.Context, cutoff time.Time) (int64, error)
	PendingEvaluations(ctx context.Context) ([]models.PendingEvaluation, error)
	Summary(ctx context.Context) (models.Summary, error)
}

// ScheduleMaintenance registers the three maintenance jobs at interval.
func (s *Scheduler) ScheduleMaintenance(st MaintenanceStore, retentionDays int, interval time.Duration) error {
	jobs := map[string]JobFunc{
		JobCleanupBackups: s.cleanupJob(st, retentionDays),
		JobJuryReminders:  s.remindersJob(st),
		JobDailyReport:    s.reportJob(st),
	}
	for _, name := range JobNames {
		if err := s.Schedule(name, interval, jobs[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) cleanupJob(st MaintenanceStore, retentionDays int) JobFunc {
	return func(ctx context.Context) error {
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

		backups, err := st.CleanOldBackups(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup backups: %w", err)
		}
		resets, err := st.CleanOldResetLogs(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup reset logs: %w", err)
		}

		s.logger.Info("old backups cleaned",
			"backups_deleted", backups,
			"reset_logs_deleted", resets,
			"retention_days", retentionDays)
		return nil
	}
}

func (s *Scheduler) remindersJob(st MaintenanceStore) JobFunc {
	return func(ctx context.Context) error {
		pending, err := st.PendingEvaluations(ctx)
		if err != nil {
			return err
		}
		// Reminders are logged; nothing is mailed
		for _, p := range pending {
			s.logger.Info("jury member has pending evaluations",
				"jury_member_id", p.JuryMemberID,
				"name", p.Name,
				"pending", p.Pending)
		}
		return nil
	}
}

func (s *Scheduler) reportJob(st MaintenanceStore) JobFunc {
	return func(ctx context.Context) error {
		sum, err := st.Summary(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("daily report",
			"candidates", sum.Candidates,
			"assigned", sum.Assigned,
			"jury_members", sum.JuryMembers,
			"votes", sum.Votes,
			"backups", sum.Backups,
			"submissions", sum.Submissions)
		return nil
	}
}
