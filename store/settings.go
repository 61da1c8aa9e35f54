// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingVotingEnabled is the option that gates vote submission.
const SettingVotingEnabled = "voting_enabled"

// GetSetting returns a stored option and whether it exists.
func (s *Store) GetSetting(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE name = $1", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", name, err)
	}
	return value, true, nil
}

// SetSetting creates or replaces an option.
func (s *Store) SetSetting(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return nil
}

// VotingEnabled reads the voting switch. A missing option counts as enabled.
func (s *Store) VotingEnabled(ctx context.Context) (bool, error) {
	value, ok, err := s.GetSetting(ctx, SettingVotingEnabled)
	if err != nil || !ok {
		return true, err
	}
	return value == "1", nil
}

// SetVotingEnabled stores the voting switch as "1" or "0".
func (s *Store) SetVotingEnabled(ctx context.Context, enabled bool) error {
	value := "0"
	if enabled {
		value = "1"
	}
	return s.SetSetting(ctx, SettingVotingEnabled, value)
}
