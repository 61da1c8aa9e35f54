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

const candidateColumns = `id, name, company, category, assigned_jury_id, assigned_at, vote_count, average_score, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (models.Candidate, error) {
	var (
		c          models.Candidate
		juryID     sql.NullInt64
		assignedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Category, &juryID, &assignedAt,
		&c.VoteCount, &c.AverageScore, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.AssignedJuryID = nullInt64Ptr(juryID)
	c.AssignedAt = nullTimePtr(assignedAt)
	return c, nil
}

func (s *Store) queryCandidates(ctx context.Context, query string, args ...any) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CreateCandidate inserts an unassigned candidate.
func (s *Store) CreateCandidate(ctx context.Context, name, company, category string) (*models.Candidate, error) {
	c := &models.Candidate{
		Name:      name,
		Company:   company,
		Category:  category,
		CreatedAt: s.now(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO candidates (name, company, category, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, c.Name, c.Company, c.Category, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("insert candidate: %w", err)
	}
	return c, nil
}

// GetCandidate loads a candidate by id.
func (s *Store) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx,
		"SELECT "+candidateColumns+" FROM candidates WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}
	return &c, nil
}

// ListCandidates returns every candidate in id order.
func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	return s.queryCandidates(ctx, "SELECT "+candidateColumns+" FROM candidates ORDER BY id")
}

// ListUnassignedCandidates returns candidates without a jury member, in id order.
func (s *Store) ListUnassignedCandidates(ctx context.Context) ([]models.Candidate, error) {
	return s.queryCandidates(ctx,
		"SELECT "+candidateColumns+" FROM candidates WHERE assigned_jury_id IS NULL ORDER BY id")
}

// AssignCandidate points a candidate at a jury member. It reports false
// when the candidate does not exist.
func (s *Store) AssignCandidate(ctx context.Context, candidateID, juryID int64, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET assigned_jury_id = $1, assigned_at = $2
		WHERE id = $3
	`, juryID, at.UTC(), candidateID)
	if err != nil {
		return false, fmt.Errorf("assign candidate %d: %w", candidateID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("assign candidate %d: %w", candidateID, err)
	}
	return n > 0, nil
}

// ClearAssignments unassigns every candidate and returns how many were cleared.
func (s *Store) ClearAssignments(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET assigned_jury_id = NULL, assigned_at = NULL
		WHERE assigned_jury_id IS NOT NULL
	`)
	if err != nil {
		return 0, fmt.Errorf("clear assignments: %w", err)
	}
	return res.RowsAffected()
}

// CountAssignmentsByJury returns assigned candidate counts keyed by jury member.
// Jury members without candidates are absent from the map.
func (s *Store) CountAssignmentsByJury(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assigned_jury_id, COUNT(*)
		FROM candidates
		WHERE assigned_jury_id IS NOT NULL
		GROUP BY assigned_jury_id
	`)
	if err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			juryID int64
			n      int
		)
		if err := rows.Scan(&juryID, &n); err != nil {
			return nil, fmt.Errorf("scan assignment count: %w", err)
		}
		counts[juryID] = n
	}
	return counts, rows.Err()
}

// AssignmentRows lists every candidate with its assigned jury member's name
// for export, in id order.
func (s *Store) AssignmentRows(ctx context.Context) ([]models.AssignmentRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, c.company, c.category, COALESCE(j.name, ''), c.assigned_at
		FROM candidates c
		LEFT JOIN jury_members j ON j.id = c.assigned_jury_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("assignment rows: %w", err)
	}
	defer rows.Close()

	out := []models.AssignmentRow{}
	for rows.Next() {
		var (
			r  models.AssignmentRow
			at sql.NullTime
		)
		if err := rows.Scan(&r.CandidateName, &r.Company, &r.Category, &r.JuryName, &at); err != nil {
			return nil, fmt.Errorf("scan assignment row: %w", err)
		}
		r.AssignedAt = nullTimePtr(at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary counts the main tables for the daily report.
func (s *Store) Summary(ctx context.Context) (models.Summary, error) {
	var sum models.Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM candidates),
			(SELECT COUNT(*) FROM candidates WHERE assigned_jury_id IS NOT NULL),
			(SELECT COUNT(*) FROM jury_members),
			(SELECT COUNT(*) FROM votes),
			(SELECT COUNT(*) FROM vote_backups),
			(SELECT COUNT(*) FROM submissions)
	`).Scan(&sum.Candidates, &sum.Assigned, &sum.JuryMembers, &sum.Votes, &sum.Backups, &sum.Submissions)
	if err != nil {
		return sum, fmt.Errorf("summary: %w", err)
	}
	return sum, nil
}
