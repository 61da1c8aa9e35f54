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

// VoteFilter narrows vote listings. Nil fields match everything.
type VoteFilter struct {
	CandidateID  *int64
	JuryMemberID *int64
	Round        *int
}

const voteColumns = `id, candidate_id, jury_member_id, round, score, comments, created_at, updated_at`

func scanVote(row interface{ Scan(...any) error }) (models.Vote, error) {
	var v models.Vote
	err := row.Scan(&v.ID, &v.CandidateID, &v.JuryMemberID, &v.Round, &v.Score,
		&v.Comments, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// listVotes reads the whole result before returning so callers inside a
// transaction can issue further statements on the same connection.
func listVotes(ctx context.Context, q querier, f VoteFilter) ([]models.Vote, error) {
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

	rows, err := q.QueryContext(ctx, "SELECT "+voteColumns+" FROM votes"+w.sql()+" ORDER BY id", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// activeVote returns the pair's vote with the highest round.
func activeVote(ctx context.Context, q querier, candidateID, juryID int64) (*models.Vote, error) {
	v, err := scanVote(q.QueryRowContext(ctx, `
		SELECT `+voteColumns+`
		FROM votes
		WHERE candidate_id = $1 AND jury_member_id = $2
		ORDER BY round DESC, id DESC
		LIMIT 1
	`, candidateID, juryID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("active vote: %w", err)
	}
	return &v, nil
}

// recomputeAggregates refreshes the candidate's vote count and average and
// mirrors them onto linked submissions.
func recomputeAggregates(ctx context.Context, q querier, candidateID int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE candidates
		SET vote_count = (SELECT COUNT(*) FROM votes WHERE candidate_id = $1),
			average_score = COALESCE((SELECT AVG(score) FROM votes WHERE candidate_id = $1), 0)
		WHERE id = $1
	`, candidateID)
	if err != nil {
		return fmt.Errorf("recompute candidate %d aggregates: %w", candidateID, err)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE submissions
		SET vote_count = (SELECT vote_count FROM candidates WHERE id = $1),
			average_score = (SELECT average_score FROM candidates WHERE id = $1)
		WHERE candidate_id = $1
	`, candidateID)
	if err != nil {
		return fmt.Errorf("recompute submission aggregates for candidate %d: %w", candidateID, err)
	}
	return nil
}

// UpsertVote records a vote, replacing the score and comments of an
// existing vote for the same candidate, jury member and round.
func (s *Store) UpsertVote(ctx context.Context, v models.Vote) (*models.Vote, error) {
	now := s.now()
	v.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO votes (candidate_id, jury_member_id, round, score, comments, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (candidate_id, jury_member_id, round)
			DO UPDATE SET score = excluded.score, comments = excluded.comments, updated_at = excluded.updated_at
			RETURNING id
		`, v.CandidateID, v.JuryMemberID, v.Round, v.Score, v.Comments, now, now).Scan(&v.ID)
		if err != nil {
			return fmt.Errorf("upsert vote: %w", err)
		}
		if err := tx.QueryRowContext(ctx, "SELECT created_at FROM votes WHERE id = $1", v.ID).Scan(&v.CreatedAt); err != nil {
			return fmt.Errorf("reload vote: %w", err)
		}
		return recomputeAggregates(ctx, tx, v.CandidateID)
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListVotes returns every stored vote matching the filter, one per round,
// in id order. Use ActiveVote for the latest round of a pair.
func (s *Store) ListVotes(ctx context.Context, f VoteFilter) ([]models.Vote, error) {
	return listVotes(ctx, s.db, f)
}

// ActiveVote returns the latest-round vote for the pair, or ErrNotFound.
func (s *Store) ActiveVote(ctx context.Context, candidateID, juryID int64) (*models.Vote, error) {
	return activeVote(ctx, s.db, candidateID, juryID)
}

// ScoresByCandidate groups vote scores per candidate. Round 0 means every round.
func (s *Store) ScoresByCandidate(ctx context.Context, round int) (map[int64][]float64, error) {
	query := "SELECT candidate_id, score FROM votes"
	var args []any
	if round > 0 {
		query += " WHERE round = $1"
		args = append(args, round)
	}
	query += " ORDER BY candidate_id, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scores by candidate: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64][]float64)
	for rows.Next() {
		var (
			candidateID int64
			score       float64
		)
		if err := rows.Scan(&candidateID, &score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores[candidateID] = append(scores[candidateID], score)
	}
	return scores, rows.Err()
}
