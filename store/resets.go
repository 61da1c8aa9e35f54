// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/trailblazers/models"
)

// ResetResult reports what a reset removed.
type ResetResult struct {
	VotesReset int
	BackupIDs  []int64
}

// BulkResetRequest selects the votes a bulk reset removes.
type BulkResetRequest struct {
	Scope        string
	CandidateID  *int64
	JuryMemberID *int64
	Confirm      bool
	ActorID      int64
	Reason       string
}

func insertResetLog(ctx context.Context, q querier, l models.ResetLog) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO vote_reset_logs (reset_type, initiated_by, affected_jury_member_id,
			affected_candidate_id, reset_reason, votes_affected, backup_id, reset_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, l.ResetType, l.InitiatedBy, int64Arg(l.AffectedJuryMember), int64Arg(l.AffectedCandidateID),
		l.Reason, l.VotesAffected, int64Arg(l.BackupID), l.ResetAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert reset log: %w", err)
	}
	return id, nil
}

// resetVotes backs up each vote, deletes it and refreshes the affected
// candidates' aggregates.
func resetVotes(ctx context.Context, tx *sql.Tx, votes []models.Vote, actorID int64, reason string, now time.Time) ([]int64, error) {
	ids := make([]int64, 0, len(votes))
	touched := make(map[int64]bool)
	var order []int64

	for _, v := range votes {
		id, err := insertBackup(ctx, tx, v, actorID, reason, now)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)

		if _, err := tx.ExecContext(ctx, "DELETE FROM votes WHERE id = $1", v.ID); err != nil {
			return nil, fmt.Errorf("delete vote %d: %w", v.ID, err)
		}
		if !touched[v.CandidateID] {
			touched[v.CandidateID] = true
			order = append(order, v.CandidateID)
		}
	}

	for _, candidateID := range order {
		if err := recomputeAggregates(ctx, tx, candidateID); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// ResetVote removes every active vote of a jury member on a candidate,
// backing each one up first and logging the reset.
func (s *Store) ResetVote(ctx context.Context, candidateID, juryID, actorID int64, reason string) (ResetResult, error) {
	var result ResetResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		votes, err := listVotes(ctx, tx, VoteFilter{CandidateID: &candidateID, JuryMemberID: &juryID})
		if err != nil {
			return err
		}
		if len(votes) == 0 {
			return ErrNoActiveVote
		}

		now := s.now()
		ids, err := resetVotes(ctx, tx, votes, actorID, "individual_reset", now)
		if err != nil {
			return err
		}

		_, err = insertResetLog(ctx, tx, models.ResetLog{
			ResetType:           models.ResetIndividual,
			InitiatedBy:         actorID,
			AffectedJuryMember:  &juryID,
			AffectedCandidateID: &candidateID,
			Reason:              reason,
			VotesAffected:       len(votes),
			BackupID:            &ids[0],
			ResetAt:             now,
		})
		if err != nil {
			return err
		}

		result = ResetResult{VotesReset: len(votes), BackupIDs: ids}
		return nil
	})
	if err != nil {
		return ResetResult{}, &OpError{Op: "reset", Err: err}
	}
	return result, nil
}

// BulkReset removes the votes selected by scope. all_user_votes needs a jury
// member, all_candidate_votes needs a candidate and full_reset needs Confirm.
// Every removed vote is backed up first.
func (s *Store) BulkReset(ctx context.Context, req BulkResetRequest) (ResetResult, error) {
	var f VoteFilter
	switch req.Scope {
	case models.ResetAllUserVotes:
		if req.JuryMemberID == nil {
			return ResetResult{}, &OpError{Op: "bulk reset", Err: fmt.Errorf("%s needs a jury member: %w", req.Scope, ErrInvalidScope)}
		}
		f.JuryMemberID = req.JuryMemberID
	case models.ResetAllCandidate:
		if req.CandidateID == nil {
			return ResetResult{}, &OpError{Op: "bulk reset", Err: fmt.Errorf("%s needs a candidate: %w", req.Scope, ErrInvalidScope)}
		}
		f.CandidateID = req.CandidateID
	case models.ResetFull:
		if !req.Confirm {
			return ResetResult{}, &OpError{Op: "bulk reset", Err: ErrConfirmRequired}
		}
	default:
		return ResetResult{}, &OpError{Op: "bulk reset", Err: fmt.Errorf("%q: %w", req.Scope, ErrInvalidScope)}
	}

	result := ResetResult{BackupIDs: []int64{}}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		votes, err := listVotes(ctx, tx, f)
		if err != nil {
			return err
		}

		now := s.now()
		ids, err := resetVotes(ctx, tx, votes, req.ActorID, "bulk_reset_"+req.Scope, now)
		if err != nil {
			return err
		}

		entry := models.ResetLog{
			ResetType:           req.Scope,
			InitiatedBy:         req.ActorID,
			AffectedJuryMember:  req.JuryMemberID,
			AffectedCandidateID: req.CandidateID,
			Reason:              req.Reason,
			VotesAffected:       len(votes),
			ResetAt:             now,
		}
		if len(ids) > 0 {
			entry.BackupID = &ids[0]
		}
		if _, err := insertResetLog(ctx, tx, entry); err != nil {
			return err
		}

		result.VotesReset = len(votes)
		result.BackupIDs = ids
		return nil
	})
	if err != nil {
		return ResetResult{}, &OpError{Op: "bulk reset", Err: err}
	}
	return result, nil
}

// ResetHistory returns one page of the reset log, newest first.
func (s *Store) ResetHistory(ctx context.Context, page, perPage int) ([]models.ResetLog, int, error) {
	page, perPage = normalizePage(page, perPage)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vote_reset_logs").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reset logs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.reset_type, l.initiated_by, l.affected_jury_member_id, l.affected_candidate_id,
			l.reset_reason, l.votes_affected, l.backup_id, l.reset_at, COALESCE(u.display_name, '')
		FROM vote_reset_logs l
		LEFT JOIN users u ON u.id = l.initiated_by
		ORDER BY l.reset_at DESC, l.id DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("reset history: %w", err)
	}
	defer rows.Close()

	logs := []models.ResetLog{}
	for rows.Next() {
		var (
			l                        models.ResetLog
			juryID, candID, backupID sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.ResetType, &l.InitiatedBy, &juryID, &candID,
			&l.Reason, &l.VotesAffected, &backupID, &l.ResetAt, &l.InitiatedByName); err != nil {
			return nil, 0, fmt.Errorf("scan reset log: %w", err)
		}
		l.AffectedJuryMember = nullInt64Ptr(juryID)
		l.AffectedCandidateID = nullInt64Ptr(candID)
		l.BackupID = nullInt64Ptr(backupID)
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// CleanOldResetLogs deletes reset log entries older than cutoff.
func (s *Store) CleanOldResetLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM vote_reset_logs WHERE reset_at < $1", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("clean old reset logs: %w", err)
	}
	return res.RowsAffected()
}
