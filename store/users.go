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

// CreateUser inserts a user. Logins are unique; a clash returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, login, displayName, role string) (*models.User, error) {
	u := &models.User{
		Login:       login,
		DisplayName: displayName,
		Role:        role,
		CreatedAt:   s.now(),
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, role, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, u.Login, u.DisplayName, u.Role, u.CreatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %q: %w", login, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, login, display_name, role, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Login, &u.DisplayName, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// ListUsers returns every user in id order.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, login, display_name, role, created_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Login, &u.DisplayName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
