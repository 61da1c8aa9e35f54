// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/trailblazers/models"
)

// ValidStatus reports whether status is a known submission status.
func ValidStatus(status string) bool {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return true
	}
	return false
}

// CreateSubmission inserts a pending submission. When it is linked to a
// candidate it starts with that candidate's vote aggregates.
func (s *Store) CreateSubmission(ctx context.Context, candidateID *int64, title, content string) (*models.Submission, error) {
	sub := &models.Submission{
		CandidateID: candidateID,
		Title:       title,
		Content:     content,
		Status:      models.StatusPending,
		CreatedAt:   s.now(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if candidateID != nil {
			err := tx.QueryRowContext(ctx,
				"SELECT vote_count, average_score FROM candidates WHERE id = $1", *candidateID,
			).Scan(&sub.VoteCount, &sub.AverageScore)
			if err == sql.ErrNoRows {
				return fmt.Errorf("candidate %d: %w", *candidateID, ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("load candidate aggregates: %w", err)
			}
		}

		err := tx.QueryRowContext(ctx, `
			INSERT INTO submissions (candidate_id, title, content, status, vote_count, average_score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, int64Arg(candidateID), sub.Title, sub.Content, sub.Status, sub.VoteCount, sub.AverageScore, sub.CreatedAt).Scan(&sub.ID)
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions returns submissions in id order, optionally filtered by status.
func (s *Store) ListSubmissions(ctx context.Context, status string) ([]models.Submission, error) {
	var w whereBuilder
	if status != "" {
		w.add("status = $%d", status)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, title, content, status, vote_count, average_score, created_at
		FROM submissions`+w.sql()+`
		ORDER BY id
	`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		var (
			sub         models.Submission
			candidateID sql.NullInt64
		)
		if err := rows.Scan(&sub.ID, &candidateID, &sub.Title, &sub.Content, &sub.Status,
			&sub.VoteCount, &sub.AverageScore, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.CandidateID = nullInt64Ptr(candidateID)
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetSubmissionStatus moves a submission to pending, approved or rejected.
func (s *Store) SetSubmissionStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	res, err := s.db.ExecContext(ctx, "UPDATE submissions SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("update submission %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
