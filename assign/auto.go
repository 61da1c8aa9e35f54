// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assign

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/trailblazers/models"
)

// Store is the storage an automatic assignment reads and writes.
type Store interface {
	ListJuryMembers(ctx context.Context) ([]models.JuryMember, error)
	ListUnassignedCandidates(ctx context.Context) ([]models.Candidate, error)
	ClearAssignments(ctx context.Context) (int64, error)
	AssignCandidate(ctx context.Context, candidateID, juryID int64, at time.Time) (bool, error)
}

// Result is an applied plan and the number of assignments cleared first.
type Result struct {
	Plan
	Cleared int64
}

// Auto distributes every unassigned candidate over all jury members and
// stores the plan. With clearExisting all current assignments are dropped
// first, once jury members are known to exist.
func Auto(ctx context.Context, st Store, perJury int, clearExisting bool, now time.Time) (Result, error) {
	if perJury < 1 {
		return Result{}, ErrInvalidPerJury
	}

	jury, err := st.ListJuryMembers(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list jury members: %w", err)
	}
	if len(jury) == 0 {
		return Result{}, ErrNoJuryMembers
	}

	var res Result
	if clearExisting {
		if res.Cleared, err = st.ClearAssignments(ctx); err != nil {
			return Result{}, fmt.Errorf("clear assignments: %w", err)
		}
	}

	candidates, err := st.ListUnassignedCandidates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list unassigned candidates: %w", err)
	}

	candIDs := make([]int64, len(candidates))
	for i, c := range candidates {
		candIDs[i] = c.ID
	}
	juryIDs := make([]int64, len(jury))
	for i, j := range jury {
		juryIDs[i] = j.ID
	}

	if res.Plan, err = Distribute(candIDs, juryIDs, perJury); err != nil {
		return Result{}, err
	}

	for _, a := range res.Assignments {
		if _, err := st.AssignCandidate(ctx, a.CandidateID, a.JuryMemberID, now); err != nil {
			return res, fmt.Errorf("assign candidate %d to jury member %d: %w", a.CandidateID, a.JuryMemberID, err)
		}
	}
	return res, nil
}
