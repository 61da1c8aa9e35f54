// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/store"
)

func newBackupsCommand(ctx *commandContext) *cobra.Command {
	backupsCmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect and manage vote backups",
	}

	backupsCmd.AddCommand(newBackupsListCommand(ctx))
	backupsCmd.AddCommand(newBackupsRestoreCommand(ctx))
	backupsCmd.AddCommand(newBackupsStatsCommand(ctx))
	backupsCmd.AddCommand(newBackupsCleanCommand(ctx))

	return backupsCmd
}

func newBackupsListCommand(ctx *commandContext) *cobra.Command {
	var page, perPage int
	var candidateID, juryID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vote backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}

			hq := store.HistoryQuery{Page: page, PerPage: perPage}
			if cmd.Flags().Changed("candidate") {
				hq.CandidateID = &candidateID
			}
			if cmd.Flags().Changed("jury") {
				hq.JuryMemberID = &juryID
			}

			hp, err := st.BackupHistory(cmd.Context(), hq)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if hp.Total == 0 {
				fmt.Fprintln(out, "No backups")
				return nil
			}

			rows := make([][]string, 0, len(hp.Backups))
			for _, b := range hp.Backups {
				restored := "-"
				if b.RestoredAt != nil {
					restored = humanize.Time(*b.RestoredAt)
				}
				rows = append(rows, []string{
					strconv.FormatInt(b.ID, 10),
					b.CandidateName,
					b.JuryMemberName,
					strconv.Itoa(b.Round),
					strconv.FormatFloat(b.Score, 'f', -1, 64),
					b.BackupReason,
					humanize.Time(b.BackedUpAt),
					restored,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Candidate", "Jury member", "Round", "Score", "Reason", "Backed up", "Restored"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Page %d of %d (%d backups)\n", hp.Page, hp.Pages, hp.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Backups per page")
	cmd.Flags().Int64Var(&candidateID, "candidate", 0, "Only backups of this candidate")
	cmd.Flags().Int64Var(&juryID, "jury", 0, "Only backups of this jury member")
	return cmd
}

func newBackupsRestoreCommand(ctx *commandContext) *cobra.Command {
	var actorID int64

	cmd := &cobra.Command{
		Use:   "restore BACKUP_ID",
		Short: "Restore a backed-up vote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backupID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || backupID <= 0 {
				return fmt.Errorf("invalid backup id %q", args[0])
			}

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := st.GetUser(cmd.Context(), actorID); err != nil {
				return fmt.Errorf("actor %d: %w", actorID, err)
			}

			vote, err := st.RestoreBackup(cmd.Context(), backupID, actorID)
			if errors.Is(err, store.ErrBackupNotFound) {
				return fmt.Errorf("backup %d not found", backupID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored vote %d (candidate %d, jury member %d, score %s)\n",
				vote.ID, vote.CandidateID, vote.JuryMemberID, strconv.FormatFloat(vote.Score, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().Int64Var(&actorID, "actor", 0, "User id recorded as restoring the vote")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func newBackupsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show backup statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := st.BackupStats(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backups:      %s\n", humanize.Comma(int64(stats.TotalBackups)))
			fmt.Fprintf(out, "Last 7 days:  %s\n", humanize.Comma(int64(stats.RecentBackups)))
			fmt.Fprintf(out, "Restorations: %s\n", humanize.Comma(int64(stats.Restorations)))
			fmt.Fprintf(out, "Storage:      %s\n", humanize.Bytes(uint64(stats.StorageBytes)))

			if len(stats.ByReason) > 0 {
				rows := make([][]string, 0, len(stats.ByReason))
				for _, rc := range stats.ByReason {
					rows = append(rows, []string{rc.Reason, strconv.Itoa(rc.Count)})
				}
				fmt.Fprintln(out, renderTable([]string{"Reason", "Backups"}, rows, []columnAlignment{alignLeft, alignRight}))
			}
			return nil
		},
	}
}

func newBackupsCleanCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete unrestored backups and reset logs past retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				cfg, _ := ctx.ensureConfig()
				days = cfg.BackupRetentionDays
			}
			if days < 1 {
				return errors.New("days must be at least 1")
			}

			cutoff := time.Now().UTC().AddDate(0, 0, -days)
			backups, err := st.CleanOldBackups(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			resets, err := st.CleanOldResetLogs(cmd.Context(), cutoff)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d backups and %d reset log entries older than %d days\n",
				backups, resets, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention in days (default from configuration)")
	return cmd
}
