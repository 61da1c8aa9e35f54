// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
	"github.com/danielhkuo/trailblazers/testutil"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different jury members on one candidate all land and leave consistent
// aggregates
func TestConcurrentVoteSubmissions(t *testing.T) {
	f := newFixture(t)
	voteHandler := NewVoteHandler(f.st, f.tc)

	candidate := testutil.CreateTestCandidate(t, f.st, "Contested")

	numJurors := 10
	juryIDs := make([]int64, numJurors)
	for i := range juryIDs {
		juryIDs[i] = testutil.CreateTestJuryMember(t, f.st, "Concurrent Juror "+strconv.Itoa(i), nil).ID
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	// Scores 0..9 average to 4.5
	for i := 0; i < numJurors; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/votes", models.SubmitVoteRequest{
				CandidateID:  candidate.ID,
				JuryMemberID: juryIDs[idx],
				Score:        float64(idx),
			}, nil)
			w := serve(voteHandler.SubmitVote, as(req, f.award))

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numJurors {
		t.Errorf("Expected %d successful submissions, got %d", numJurors, successCount.Load())
	}

	votes, err := f.st.ListVotes(context.Background(), store.VoteFilter{CandidateID: &candidate.ID})
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if len(votes) != numJurors {
		t.Errorf("Expected %d votes in database, got %d", numJurors, len(votes))
	}

	// The last aggregate recompute sees every vote
	got, err := f.st.GetCandidate(context.Background(), candidate.ID)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.VoteCount != numJurors || got.AverageScore != 4.5 {
		t.Errorf("Expected %d votes averaging 4.5, got %d averaging %f", numJurors, got.VoteCount, got.AverageScore)
	}
}

// TestConcurrentSameVote verifies that racing submissions for the same
// candidate, jury member and round collapse into one vote
func TestConcurrentSameVote(t *testing.T) {
	f := newFixture(t)
	voteHandler := NewVoteHandler(f.st, f.tc)

	candidate := testutil.CreateTestCandidate(t, f.st, "Anna")
	testutil.AssignTestCandidate(t, f.st, candidate.ID, f.juror.JuryMember.ID)

	numAttempts := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/votes", models.SubmitVoteRequest{
				CandidateID: candidate.ID,
				Score:       float64(5 + idx),
			}, nil)
			w := serve(voteHandler.SubmitVote, as(req, f.juror))

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	// Upserts never conflict, so every attempt succeeds
	if int(successCount.Load()) != numAttempts {
		t.Errorf("Expected %d successful submissions, got %d", numAttempts, successCount.Load())
	}

	votes, err := f.st.ListVotes(context.Background(), store.VoteFilter{CandidateID: &candidate.ID})
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Errorf("Expected exactly 1 vote, got %d", len(votes))
	}
}
