// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/trailblazers/models"
)

// DefaultMaxAssignments applies when a jury member is created without a cap.
const DefaultMaxAssignments = 15

const juryColumns = `id, name, user_id, max_assignments, created_at`

func scanJuryMember(row interface{ Scan(...any) error }) (models.JuryMember, error) {
	var (
		j      models.JuryMember
		userID sql.NullInt64
	)
	if err := row.Scan(&j.ID, &j.Name, &userID, &j.MaxAssignments, &j.CreatedAt); err != nil {
		return j, err
	}
	j.UserID = nullInt64Ptr(userID)
	return j, nil
}

// CreateJuryMember inserts a jury member, optionally linked to a user.
func (s *Store) CreateJuryMember(ctx context.Context, name string, userID *int64, maxAssignments int) (*models.JuryMember, error) {
	if maxAssignments <= 0 {
		maxAssignments = DefaultMaxAssignments
	}
	j := &models.JuryMember{
		Name:           name,
		UserID:         userID,
		MaxAssignments: maxAssignments,
		CreatedAt:      s.now(),
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO jury_members (name, user_id, max_assignments, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, j.Name, int64Arg(userID), j.MaxAssignments, j.CreatedAt).Scan(&j.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("jury member for user: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert jury member: %w", err)
	}
	return j, nil
}

// GetJuryMember loads a jury member by id.
func (s *Store) GetJuryMember(ctx context.Context, id int64) (*models.JuryMember, error) {
	j, err := scanJuryMember(s.db.QueryRowContext(ctx,
		"SELECT "+juryColumns+" FROM jury_members WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get jury member %d: %w", id, err)
	}
	return &j, nil
}

// JuryMemberForUser resolves the jury member linked to a user.
func (s *Store) JuryMemberForUser(ctx context.Context, userID int64) (*models.JuryMember, error) {
	j, err := scanJuryMember(s.db.QueryRowContext(ctx,
		"SELECT "+juryColumns+" FROM jury_members WHERE user_id = $1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("jury member for user %d: %w", userID, err)
	}
	return &j, nil
}

// ListJuryMembers returns every jury member in id order.
func (s *Store) ListJuryMembers(ctx context.Context) ([]models.JuryMember, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+juryColumns+" FROM jury_members ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list jury members: %w", err)
	}
	defer rows.Close()

	members := []models.JuryMember{}
	for rows.Next() {
		j, err := scanJuryMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan jury member: %w", err)
		}
		members = append(members, j)
	}
	return members, rows.Err()
}

// PendingEvaluations counts, per jury member, the assigned candidates that
// member has not voted on yet. Members with nothing pending are omitted.
func (s *Store) PendingEvaluations(ctx context.Context) ([]models.PendingEvaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.id, j.name, COUNT(c.id)
		FROM jury_members j
		JOIN candidates c ON c.assigned_jury_id = j.id
		WHERE NOT EXISTS (
			SELECT 1 FROM votes v
			WHERE v.candidate_id = c.id AND v.jury_member_id = j.id
		)
		GROUP BY j.id, j.name
		ORDER BY j.id
	`)
	if err != nil {
		return nil, fmt.Errorf("pending evaluations: %w", err)
	}
	defer rows.Close()

	pending := []models.PendingEvaluation{}
	for rows.Next() {
		var p models.PendingEvaluation
		if err := rows.Scan(&p.JuryMemberID, &p.Name, &p.Pending); err != nil {
			return nil, fmt.Errorf("scan pending evaluation: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}
