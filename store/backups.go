// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/trailblazers/models"
)

// backupRowOverhead approximates the fixed columns of a backup row when
// estimating storage.
const backupRowOverhead = 96

// HistoryQuery selects a page of backup history.
type HistoryQuery struct {
	CandidateID  *int64
	JuryMemberID *int64
	Page         int
	PerPage      int
	OrderBy      string // backed_up_at | id | score
	Order        string // asc | desc
}

// HistoryPage is one page of backup history.
type HistoryPage struct {
	Backups []models.VoteBackup
	Total   int
	Pages   int
	Page    int
}

var backupOrderColumns = map[string]string{
	"backed_up_at": "b.backed_up_at",
	"id":           "b.id",
	"score":        "b.score",
}

const backupColumns = `b.id, b.original_vote_id, b.candidate_id, b.jury_member_id, b.round, b.score,
	b.comments, b.voted_at, b.backed_up_by, b.backup_reason, b.backed_up_at, b.restored_at, b.restored_by`

const backupJoins = `
	FROM vote_backups b
	LEFT JOIN candidates c ON c.id = b.candidate_id
	LEFT JOIN jury_members j ON j.id = b.jury_member_id
	LEFT JOIN users u ON u.id = b.backed_up_by`

func scanBackup(row interface{ Scan(...any) error }, withNames bool) (models.VoteBackup, error) {
	var (
		b          models.VoteBackup
		restoredAt sql.NullTime
		restoredBy sql.NullInt64
	)
	dest := []any{&b.ID, &b.OriginalVoteID, &b.CandidateID, &b.JuryMemberID, &b.Round, &b.Score,
		&b.Comments, &b.VotedAt, &b.BackedUpBy, &b.BackupReason, &b.BackedUpAt, &restoredAt, &restoredBy}
	if withNames {
		dest = append(dest, &b.CandidateName, &b.JuryMemberName, &b.BackedUpByName)
	}
	if err := row.Scan(dest...); err != nil {
		return b, err
	}
	b.RestoredAt = nullTimePtr(restoredAt)
	b.RestoredBy = nullInt64Ptr(restoredBy)
	return b, nil
}

func insertBackup(ctx context.Context, q querier, v models.Vote, actorID int64, reason string, at time.Time) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO vote_backups (original_vote_id, candidate_id, jury_member_id, round, score,
			comments, voted_at, backed_up_by, backup_reason, backed_up_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, v.ID, v.CandidateID, v.JuryMemberID, v.Round, v.Score,
		v.Comments, v.UpdatedAt, actorID, reason, at).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert backup of vote %d: %w", v.ID, err)
	}
	return id, nil
}

func backupReason(reason string) string {
	if reason == "" {
		return models.DefaultBackupReason
	}
	return reason
}

// BackupVote copies the pair's active vote into the backup table and
// returns the new backup id.
func (s *Store) BackupVote(ctx context.Context, candidateID, juryID, actorID int64, reason string) (int64, error) {
	var backupID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		v, err := activeVote(ctx, tx, candidateID, juryID)
		if errors.Is(err, ErrNotFound) {
			return ErrNoActiveVote
		}
		if err != nil {
			return err
		}
		backupID, err = insertBackup(ctx, tx, *v, actorID, backupReason(reason), s.now())
		return err
	})
	if err != nil {
		return 0, &OpError{Op: "backup", Err: err}
	}
	return backupID, nil
}

// BulkBackup copies every active vote matching the filter and returns the
// number of backups written.
func (s *Store) BulkBackup(ctx context.Context, f VoteFilter, actorID int64, reason string) (int, error) {
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		votes, err := listVotes(ctx, tx, f)
		if err != nil {
			return err
		}
		now := s.now()
		for _, v := range votes {
			if _, err := insertBackup(ctx, tx, v, actorID, backupReason(reason), now); err != nil {
				return err
			}
		}
		count = len(votes)
		return nil
	})
	if err != nil {
		return 0, &OpError{Op: "bulk backup", Err: err}
	}
	return count, nil
}

// GetBackup loads a backup by id.
func (s *Store) GetBackup(ctx context.Context, id int64) (*models.VoteBackup, error) {
	return getBackup(ctx, s.db, id)
}

func getBackup(ctx context.Context, q querier, id int64) (*models.VoteBackup, error) {
	b, err := scanBackup(q.QueryRowContext(ctx,
		"SELECT "+backupColumns+" FROM vote_backups b WHERE b.id = $1", id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return &b, nil
}

// verifyVoteBackup rejects backups missing the fields a restore needs.
func verifyVoteBackup(b *models.VoteBackup) error {
	switch {
	case b.CandidateID <= 0:
		return fmt.Errorf("%w: candidate_id is missing", ErrBackupIntegrity)
	case b.JuryMemberID <= 0:
		return fmt.Errorf("%w: jury_member_id is missing", ErrBackupIntegrity)
	case b.Round < 1:
		return fmt.Errorf("%w: round is missing", ErrBackupIntegrity)
	case b.Score < 0 || b.Score > 10:
		return fmt.Errorf("%w: score %v is out of range", ErrBackupIntegrity, b.Score)
	}
	return nil
}

// RestoreBackup makes a backed-up vote the pair's only active vote. The
// votes it replaces, in any round, are backed up first with the
// pre_restore reason. Every step runs in one transaction; on failure the
// active votes are untouched.
func (s *Store) RestoreBackup(ctx context.Context, backupID, actorID int64) (*models.Vote, error) {
	var restored models.Vote
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getBackup(ctx, tx, backupID)
		if err != nil {
			return err
		}
		if err := verifyVoteBackup(b); err != nil {
			return err
		}

		now := s.now()
		current, err := listVotes(ctx, tx, VoteFilter{CandidateID: &b.CandidateID, JuryMemberID: &b.JuryMemberID})
		if err != nil {
			return err
		}
		if _, err := resetVotes(ctx, tx, current, actorID, models.PreRestoreBackupReason, now); err != nil {
			return fmt.Errorf("set aside current votes: %w", err)
		}

		restored = models.Vote{
			CandidateID:  b.CandidateID,
			JuryMemberID: b.JuryMemberID,
			Round:        b.Round,
			Score:        b.Score,
			Comments:     b.Comments,
			CreatedAt:    b.VotedAt,
			UpdatedAt:    now,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO votes (candidate_id, jury_member_id, round, score, comments, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, restored.CandidateID, restored.JuryMemberID, restored.Round, restored.Score,
			restored.Comments, restored.CreatedAt, restored.UpdatedAt).Scan(&restored.ID)
		if err != nil {
			return fmt.Errorf("reinsert vote: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE vote_backups SET restored_at = $1, restored_by = $2 WHERE id = $3",
			now, actorID, backupID); err != nil {
			return fmt.Errorf("mark backup restored: %w", err)
		}

		candidateID, juryID, id := b.CandidateID, b.JuryMemberID, backupID
		if _, err := insertResetLog(ctx, tx, models.ResetLog{
			ResetType:           models.ResetRestore,
			InitiatedBy:         actorID,
			AffectedJuryMember:  &juryID,
			AffectedCandidateID: &candidateID,
			Reason:              fmt.Sprintf("Restored from backup #%d", backupID),
			VotesAffected:       1,
			BackupID:            &id,
			ResetAt:             now,
		}); err != nil {
			return err
		}

		return recomputeAggregates(ctx, tx, b.CandidateID)
	})
	if err != nil {
		return nil, &OpError{Op: "restore", Err: err}
	}
	return &restored, nil
}

// BackupHistory returns one page of backups with display names joined in.
func (s *Store) BackupHistory(ctx context.Context, hq HistoryQuery) (HistoryPage, error) {
	page, perPage := normalizePage(hq.Page, hq.PerPage)

	orderCol, ok := backupOrderColumns[hq.OrderBy]
	if !ok {
		orderCol = backupOrderColumns["backed_up_at"]
	}
	dir := "DESC"
	if hq.Order == "asc" || hq.Order == "ASC" {
		dir = "ASC"
	}

	var w whereBuilder
	if hq.CandidateID != nil {
		w.add("b.candidate_id = $%d", *hq.CandidateID)
	}
	if hq.JuryMemberID != nil {
		w.add("b.jury_member_id = $%d", *hq.JuryMemberID)
	}

	result := HistoryPage{Backups: []models.VoteBackup{}, Page: page}

	countArgs := append([]any(nil), w.args...)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vote_backups b"+w.sql(), countArgs...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count backups: %w", err)
	}
	result.Pages = pageCount(result.Total, perPage)

	where := w.sql()
	limit := w.next(perPage)
	offset := w.next((page - 1) * perPage)
	query := "SELECT " + backupColumns + `,
		COALESCE(c.name, ''), COALESCE(j.name, ''), COALESCE(u.display_name, '')` +
		backupJoins + where +
		fmt.Sprintf(" ORDER BY %s %s, b.id %s LIMIT %s OFFSET %s", orderCol, dir, dir, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return result, fmt.Errorf("backup history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBackup(rows, true)
		if err != nil {
			return result, fmt.Errorf("scan backup: %w", err)
		}
		result.Backups = append(result.Backups, b)
	}
	return result, rows.Err()
}

// ListBackups returns every backup in id order, for export.
func (s *Store) ListBackups(ctx context.Context) ([]models.VoteBackup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+backupColumns+`,
		COALESCE(c.name, ''), COALESCE(j.name, ''), COALESCE(u.display_name, '')`+
		backupJoins+" ORDER BY b.id")
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	backups := []models.VoteBackup{}
	for rows.Next() {
		b, err := scanBackup(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, b)
	}
	return backups, rows.Err()
}

// BackupStats summarizes the backup table. Recent means the seven days
// before now. StorageSize is left for the caller to format.
func (s *Store) BackupStats(ctx context.Context, now time.Time) (models.BackupStatsResponse, error) {
	stats := models.BackupStatsResponse{ByReason: []models.ReasonCount{}}

	var textBytes int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(LENGTH(comments) + LENGTH(backup_reason)), 0)
		FROM vote_backups
	`).Scan(&stats.TotalBackups, &textBytes)
	if err != nil {
		return stats, fmt.Errorf("count backups: %w", err)
	}
	stats.StorageBytes = textBytes + int64(stats.TotalBackups)*backupRowOverhead

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vote_backups WHERE backed_up_at >= $1",
		now.UTC().Add(-7*24*time.Hour)).Scan(&stats.RecentBackups); err != nil {
		return stats, fmt.Errorf("count recent backups: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vote_backups WHERE restored_at IS NOT NULL").Scan(&stats.Restorations); err != nil {
		return stats, fmt.Errorf("count restorations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT backup_reason, COUNT(*)
		FROM vote_backups
		GROUP BY backup_reason
		ORDER BY COUNT(*) DESC, backup_reason
	`)
	if err != nil {
		return stats, fmt.Errorf("backups by reason: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rc models.ReasonCount
		if err := rows.Scan(&rc.Reason, &rc.Count); err != nil {
			return stats, fmt.Errorf("scan reason count: %w", err)
		}
		stats.ByReason = append(stats.ByReason, rc)
	}
	return stats, rows.Err()
}

// CleanOldBackups deletes unrestored backups taken before cutoff. Restored
// backups are kept as the record of what was reinstated.
func (s *Store) CleanOldBackups(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM vote_backups WHERE backed_up_at < $1 AND restored_at IS NULL", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clean old backups: %w", err)
	}
	return res.RowsAffected()
}
