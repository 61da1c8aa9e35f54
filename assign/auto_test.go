// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package assign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/models"
)

// memStore keeps assignments as candidate id -> jury member id
type memStore struct {
	jury       []int64
	candidates []int64
	assigned   map[int64]int64
	failAssign error
}

func (m *memStore) ListJuryMembers(ctx context.Context) ([]models.JuryMember, error) {
	out := make([]models.JuryMember, len(m.jury))
	for i, id := range m.jury {
		out[i] = models.JuryMember{ID: id}
	}
	return out, nil
}

func (m *memStore) ListUnassignedCandidates(ctx context.Context) ([]models.Candidate, error) {
	var out []models.Candidate
	for _, id := range m.candidates {
		if _, ok := m.assigned[id]; !ok {
			out = append(out, models.Candidate{ID: id})
		}
	}
	return out, nil
}

func (m *memStore) ClearAssignments(ctx context.Context) (int64, error) {
	n := int64(len(m.assigned))
	m.assigned = map[int64]int64{}
	return n, nil
}

func (m *memStore) AssignCandidate(ctx context.Context, candidateID, juryID int64, at time.Time) (bool, error) {
	if m.failAssign != nil {
		return false, m.failAssign
	}
	m.assigned[candidateID] = juryID
	return true, nil
}

func TestAuto(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("assigns only unassigned candidates", func(t *testing.T) {
		st := &memStore{jury: []int64{1, 2}, candidates: ids(4, 10), assigned: map[int64]int64{10: 2}}

		res, err := Auto(context.Background(), st, 5, false, now)
		if err != nil {
			t.Fatalf("Auto() error = %v", err)
		}
		if res.TotalAssigned != 3 || res.Cleared != 0 {
			t.Errorf("expected 3 assigned and none cleared, got %+v", res)
		}
		if st.assigned[10] != 2 {
			t.Error("existing assignment was changed")
		}
	})

	t.Run("clear existing first", func(t *testing.T) {
		st := &memStore{jury: []int64{1, 2}, candidates: ids(4, 10), assigned: map[int64]int64{10: 2, 11: 2}}

		res, err := Auto(context.Background(), st, 5, true, now)
		if err != nil {
			t.Fatalf("Auto() error = %v", err)
		}
		if res.Cleared != 2 || res.TotalAssigned != 4 {
			t.Errorf("expected 2 cleared and 4 assigned, got %+v", res)
		}
		if st.assigned[10] != 1 {
			t.Errorf("candidate 10 should be dealt to jury 1, got %d", st.assigned[10])
		}
	})

	t.Run("no jury keeps assignments", func(t *testing.T) {
		st := &memStore{candidates: ids(2, 10), assigned: map[int64]int64{10: 1}}

		_, err := Auto(context.Background(), st, 5, true, now)
		if !errors.Is(err, ErrNoJuryMembers) {
			t.Errorf("Auto() error = %v, want ErrNoJuryMembers", err)
		}
		if len(st.assigned) != 1 {
			t.Error("assignments must not be cleared without jury members")
		}
	})

	t.Run("invalid per jury", func(t *testing.T) {
		st := &memStore{jury: []int64{1}, assigned: map[int64]int64{}}
		if _, err := Auto(context.Background(), st, 0, false, now); !errors.Is(err, ErrInvalidPerJury) {
			t.Errorf("Auto() error = %v, want ErrInvalidPerJury", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		boom := errors.New("boom")
		st := &memStore{jury: []int64{1}, candidates: ids(1, 10), assigned: map[int64]int64{}, failAssign: boom}
		if _, err := Auto(context.Background(), st, 5, false, now); !errors.Is(err, boom) {
			t.Errorf("Auto() error = %v, want %v", err, boom)
		}
	})
}
