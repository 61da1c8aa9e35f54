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

// EvaluationFilter narrows evaluation listings. Nil fields match everything.
type EvaluationFilter struct {
	CandidateID  *int64
	JuryMemberID *int64
	Round        *int
	Status       string
}

const evaluationColumns = `id, candidate_id, jury_member_id, round, courage_score, innovation_score,
	implementation_score, relevance_score, visibility_score, total_score, comments, status, created_at, updated_at`

func scanEvaluation(row interface{ Scan(...any) error }) (models.Evaluation, error) {
	var e models.Evaluation
	err := row.Scan(&e.ID, &e.CandidateID, &e.JuryMemberID, &e.Round, &e.Courage, &e.Innovation,
		&e.Implementation, &e.Relevance, &e.Visibility, &e.TotalScore, &e.Comments, &e.Status,
		&e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func listEvaluations(ctx context.Context, q querier, f EvaluationFilter) ([]models.Evaluation, error) {
	var w whereBuilder
	if f.CandidateID != nil {
		w.add("candidate_id = $%d", *f.CandidateID)
	}
	if f.JuryMemberID != nil {
		w.add("jury_member_id = $%d", *f.JuryMemberID)
	}
	if f.Round != nil {
		w.add("round = $%d", *f.Round)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}

	rows, err := q.QueryContext(ctx, "SELECT "+evaluationColumns+" FROM evaluations"+w.sql()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	evals := []models.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}

func activeEvaluation(ctx context.Context, q querier, candidateID, juryID int64) (*models.Evaluation, error) {
	e, err := scanEvaluation(q.QueryRowContext(ctx, `
		SELECT `+evaluationColumns+`
		FROM evaluations
		WHERE candidate_id = $1 AND jury_member_id = $2
		ORDER BY round DESC, id DESC
		LIMIT 1
	`, candidateID, juryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("active evaluation: %w", err)
	}
	return &e, nil
}

func insertEvaluation(ctx context.Context, q querier, e *models.Evaluation) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO evaluations (candidate_id, jury_member_id, round, courage_score, innovation_score,
			implementation_score, relevance_score, visibility_score, total_score, comments, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`, e.CandidateID, e.JuryMemberID, e.Round, e.Courage, e.Innovation, e.Implementation,
		e.Relevance, e.Visibility, e.TotalScore, e.Comments, e.Status, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// UpsertEvaluation records an evaluation, replacing the criteria, comments
// and status of an existing one for the same candidate, jury member and
// round. The total score is derived from the criteria.
func (s *Store) UpsertEvaluation(ctx context.Context, e models.Evaluation) (*models.Evaluation, error) {
	if e.Status != models.EvaluationDraft && e.Status != models.EvaluationCompleted {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	now := s.now()
	e.TotalScore = e.Criteria.Total()
	e.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO evaluations (candidate_id, jury_member_id, round, courage_score, innovation_score,
				implementation_score, relevance_score, visibility_score, total_score, comments, status,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (candidate_id, jury_member_id, round)
			DO UPDATE SET courage_score = excluded.courage_score,
				innovation_score = excluded.innovation_score,
				implementation_score = excluded.implementation_score,
				relevance_score = excluded.relevance_score,
				visibility_score = excluded.visibility_score,
				total_score = excluded.total_score,
				comments = excluded.comments,
				status = excluded.status,
				updated_at = excluded.updated_at
			RETURNING id
		`, e.CandidateID, e.JuryMemberID, e.Round, e.Courage, e.Innovation, e.Implementation,
			e.Relevance, e.Visibility, e.TotalScore, e.Comments, e.Status, now, now).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("upsert evaluation: %w", err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT created_at FROM evaluations WHERE id = $1", e.ID).Scan(&e.CreatedAt); err != nil {
			return fmt.Errorf("reload evaluation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvaluations returns every evaluation matching the filter in id order.
func (s *Store) ListEvaluations(ctx context.Context, f EvaluationFilter) ([]models.Evaluation, error) {
	return listEvaluations(ctx, s.db, f)
}

// ActiveEvaluation returns the latest-round evaluation for the pair, or ErrNotFound.
func (s *Store) ActiveEvaluation(ctx context.Context, candidateID, juryID int64) (*models.Evaluation, error) {
	return activeEvaluation(ctx, s.db, candidateID, juryID)
}

const evaluationBackupColumns = `b.id, b.original_evaluation_id, b.candidate_id, b.jury_member_id, b.round,
	b.courage_score, b.innovation_score, b.implementation_score, b.relevance_score, b.visibility_score,
	b.total_score, b.comments, b.status, b.evaluated_at, b.backed_up_by, b.backup_reason, b.backed_up_at,
	b.restored_at, b.restored_by`

func scanEvaluationBackup(row interface{ Scan(...any) error }, withNames bool) (models.EvaluationBackup, error) {
	var (
		b          models.EvaluationBackup
		restoredAt sql.NullTime
		restoredBy sql.NullInt64
	)
	dest := []any{&b.ID, &b.OriginalEvaluationID, &b.CandidateID, &b.JuryMemberID, &b.Round,
		&b.Courage, &b.Innovation, &b.Implementation, &b.Relevance, &b.Visibility,
		&b.TotalScore, &b.Comments, &b.Status, &b.EvaluatedAt, &b.BackedUpBy, &b.BackupReason, &b.BackedUpAt,
		&restoredAt, &restoredBy}
	if withNames {
		dest = append(dest, &b.CandidateName, &b.JuryMemberName)
	}
	if err := row.Scan(dest...); err != nil {
		return b, err
	}
	b.RestoredAt = nullTimePtr(restoredAt)
	b.RestoredBy = nullInt64Ptr(restoredBy)
	return b, nil
}

func insertEvaluationBackup(ctx context.Context, q querier, e models.Evaluation, actorID int64, reason string, at time.Time) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO evaluation_backups (original_evaluation_id, candidate_id, jury_member_id, round,
			courage_score, innovation_score, implementation_score, relevance_score, visibility_score,
			total_score, comments, status, evaluated_at, backed_up_by, backup_reason, backed_up_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, e.ID, e.CandidateID, e.JuryMemberID, e.Round, e.Courage, e.Innovation, e.Implementation,
		e.Relevance, e.Visibility, e.TotalScore, e.Comments, e.Status, e.UpdatedAt, actorID, reason, at).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert backup of evaluation %d: %w", e.ID, err)
	}
	return id, nil
}

// BackupEvaluation copies the pair's latest evaluation into the backup table
// and returns the new backup id.
func (s *Store) BackupEvaluation(ctx context.Context, candidateID, juryID, actorID int64, reason string) (int64, error) {
	var backupID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := activeEvaluation(ctx, tx, candidateID, juryID)
		if errors.Is(err, ErrNotFound) {
			return ErrNoActiveEvaluation
		}
		if err != nil {
			return err
		}
		backupID, err = insertEvaluationBackup(ctx, tx, *e, actorID, backupReason(reason), s.now())
		return err
	})
	if err != nil {
		return 0, &OpError{Op: "backup evaluation", Err: err}
	}
	return backupID, nil
}

// GetEvaluationBackup loads an evaluation backup by id.
func (s *Store) GetEvaluationBackup(ctx context.Context, id int64) (*models.EvaluationBackup, error) {
	return getEvaluationBackup(ctx, s.db, id)
}

func getEvaluationBackup(ctx context.Context, q querier, id int64) (*models.EvaluationBackup, error) {
	b, err := scanEvaluationBackup(q.QueryRowContext(ctx,
		"SELECT "+evaluationBackupColumns+" FROM evaluation_backups b WHERE b.id = $1", id), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBackupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation backup %d: %w", id, err)
	}
	return &b, nil
}

// verifyEvaluationBackup rejects backups missing the fields a restore needs.
func verifyEvaluationBackup(b *models.EvaluationBackup) error {
	switch {
	case b.CandidateID <= 0:
		return fmt.Errorf("%w: candidate_id is missing", ErrBackupIntegrity)
	case b.JuryMemberID <= 0:
		return fmt.Errorf("%w: jury_member_id is missing", ErrBackupIntegrity)
	case b.Round < 1:
		return fmt.Errorf("%w: round is missing", ErrBackupIntegrity)
	case b.Status != models.EvaluationDraft && b.Status != models.EvaluationCompleted:
		return fmt.Errorf("%w: status %q is unknown", ErrBackupIntegrity, b.Status)
	case b.TotalScore < 0 || b.TotalScore > 10:
		return fmt.Errorf("%w: total_score %v is out of range", ErrBackupIntegrity, b.TotalScore)
	}
	for _, score := range b.Criteria.Scores() {
		if score < 0 || score > 10 {
			return fmt.Errorf("%w: criterion score %v is out of range", ErrBackupIntegrity, score)
		}
	}
	return nil
}

// RestoreEvaluationBackup makes a backed-up evaluation the pair's only
// evaluation. The evaluations it replaces are backed up first with the
// pre_restore reason, all in one transaction.
func (s *Store) RestoreEvaluationBackup(ctx context.Context, backupID, actorID int64) (*models.Evaluation, error) {
	var restored models.Evaluation
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getEvaluationBackup(ctx, tx, backupID)
		if err != nil {
			return err
		}
		if err := verifyEvaluationBackup(b); err != nil {
			return err
		}

		now := s.now()
		current, err := listEvaluations(ctx, tx, EvaluationFilter{CandidateID: &b.CandidateID, JuryMemberID: &b.JuryMemberID})
		if err != nil {
			return err
		}
		for _, e := range current {
			if _, err := insertEvaluationBackup(ctx, tx, e, actorID, models.PreRestoreBackupReason, now); err != nil {
				return fmt.Errorf("set aside current evaluations: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM evaluations WHERE id = $1", e.ID); err != nil {
				return fmt.Errorf("delete evaluation %d: %w", e.ID, err)
			}
		}

		restored = models.Evaluation{
			CandidateID:  b.CandidateID,
			JuryMemberID: b.JuryMemberID,
			Round:        b.Round,
			Criteria:     b.Criteria,
			TotalScore:   b.TotalScore,
			Comments:     b.Comments,
			Status:       b.Status,
			CreatedAt:    b.EvaluatedAt,
			UpdatedAt:    now,
		}
		if err := insertEvaluation(ctx, tx, &restored); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE evaluation_backups SET restored_at = $1, restored_by = $2 WHERE id = $3",
			now, actorID, backupID); err != nil {
			return fmt.Errorf("mark evaluation backup restored: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &OpError{Op: "restore evaluation", Err: err}
	}
	return &restored, nil
}

// EvaluationBackupHistory returns one page of evaluation backups, newest first.
func (s *Store) EvaluationBackupHistory(ctx context.Context, hq HistoryQuery) (models.EvaluationBackupHistoryResponse, error) {
	page, perPage := normalizePage(hq.Page, hq.PerPage)

	var w whereBuilder
	if hq.CandidateID != nil {
		w.add("b.candidate_id = $%d", *hq.CandidateID)
	}
	if hq.JuryMemberID != nil {
		w.add("b.jury_member_id = $%d", *hq.JuryMemberID)
	}

	result := models.EvaluationBackupHistoryResponse{Backups: []models.EvaluationBackup{}, CurrentPage: page}

	countArgs := append([]any(nil), w.args...)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM evaluation_backups b"+w.sql(), countArgs...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count evaluation backups: %w", err)
	}
	result.Pages = pageCount(result.Total, perPage)

	where := w.sql()
	limit := w.next(perPage)
	offset := w.next((page - 1) * perPage)
	query := "SELECT " + evaluationBackupColumns + `, COALESCE(c.name, ''), COALESCE(j.name, '')
		FROM evaluation_backups b
		LEFT JOIN candidates c ON c.id = b.candidate_id
		LEFT JOIN jury_members j ON j.id = b.jury_member_id` + where +
		fmt.Sprintf(" ORDER BY b.backed_up_at DESC, b.id DESC LIMIT %s OFFSET %s", limit, offset)

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return result, fmt.Errorf("evaluation backup history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanEvaluationBackup(rows, true)
		if err != nil {
			return result, fmt.Errorf("scan evaluation backup: %w", err)
		}
		result.Backups = append(result.Backups, b)
	}
	return result, rows.Err()
}
