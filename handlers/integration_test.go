// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/testutil"
)

// TestFullAwardWorkflow tests the complete end-to-end workflow:
// 1. Create candidates
// 2. Create a jury user and link a jury member
// 3. Auto-assign candidates
// 4. Jury member scores every assigned candidate
// 5. Update a vote
// 6. Jury member resets one vote
// 7. Restore the reset vote from its backup
// 8. Verify rankings
func TestFullAwardWorkflow(t *testing.T) {
	f := newFixture(t)

	entityHandler := NewEntityHandler(f.st, f.tc, testUserKeySalt)
	assignmentHandler := NewAssignmentHandler(f.st, f.tc)
	voteHandler := NewVoteHandler(f.st, f.tc)
	resetHandler := NewResetHandler(f.st, f.tc)
	backupHandler := NewBackupHandler(f.st, f.tc, 365)
	reportsHandler := NewReportsHandler(f.st, f.tc)

	// Step 1: Create candidates
	names := []string{"Anna Schmidt", "Ben Okafor", "Clara Jensen"}
	candidateIDs := make([]int64, 0, len(names))
	for _, name := range names {
		req := testutil.MakeRequest("POST", "/candidates", models.CreateCandidateRequest{
			Name:     name,
			Company:  "Mobility AG",
			Category: "Startups",
		}, nil)
		w := serve(entityHandler.CreateCandidate, as(req, f.admin))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Create candidate %q failed: %d - %s", name, w.Code, w.Body.String())
		}
		var c models.Candidate
		testutil.AssertJSON(t, w, &c)
		candidateIDs = append(candidateIDs, c.ID)
	}
	t.Logf("Step 1 - Created candidates: %v", candidateIDs)

	// Step 2: Create the jury user and link a jury member
	req := testutil.MakeRequest("POST", "/users", models.CreateUserRequest{
		Login:       "lena",
		DisplayName: "Lena Weber",
		Role:        roles.JuryMember,
	}, nil)
	w := serve(entityHandler.CreateUser, as(req, f.admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create user failed: %d - %s", w.Code, w.Body.String())
	}
	var created models.CreateUserResponse
	testutil.AssertJSON(t, w, &created)

	req = testutil.MakeRequest("POST", "/jury", models.CreateJuryMemberRequest{
		Name:   "Lena Weber",
		UserID: &created.User.ID,
	}, nil)
	w = serve(entityHandler.CreateJuryMember, as(req, f.admin))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create jury member failed: %d - %s", w.Code, w.Body.String())
	}
	var jury models.JuryMember
	testutil.AssertJSON(t, w, &jury)
	lena := &middleware.Identity{User: created.User, JuryMember: &jury}
	t.Logf("Step 2 - Jury member %d linked to user %d", jury.ID, created.User.ID)

	// Step 3: Auto-assign, clearing the fixture juror's share
	form := url.Values{
		"candidates_per_jury": {"5"},
		"algorithm":           {"balanced"},
		"clear_existing":      {"true"},
	}
	w = serve(assignmentHandler.AutoAssign, as(testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", form, nil), f.admin))
	result := decodeAjax[models.AutoAssignResult](t, w)
	if !result.Success || result.Data.TotalAssigned != len(names) {
		t.Fatalf("Step 3 - Auto-assign failed: %s", w.Body.String())
	}

	// Two jury members: the fixture juror gets candidates 1 and 3, Lena gets 2
	lenaCandidate := candidateIDs[1]
	if result.Data.Assignments[jury.ID] != 1 {
		t.Fatalf("Step 3 - Expected 1 candidate for Lena, got %v", result.Data.Assignments)
	}

	// Step 4: Lena scores her candidate; scoring someone else's is refused
	vote := func(id *middleware.Identity, candidateID int64, score float64) int {
		req := testutil.MakeRequest("POST", "/votes", models.SubmitVoteRequest{CandidateID: candidateID, Score: score}, nil)
		return serve(voteHandler.SubmitVote, as(req, id)).Code
	}
	if code := vote(lena, lenaCandidate, 6); code != http.StatusCreated {
		t.Fatalf("Step 4 - Vote failed: %d", code)
	}
	if code := vote(lena, candidateIDs[0], 9); code != http.StatusForbidden {
		t.Fatalf("Step 4 - Vote on unassigned candidate should be forbidden, got %d", code)
	}
	for _, id := range []int64{candidateIDs[0], candidateIDs[2]} {
		if code := vote(f.juror, id, 5); code != http.StatusCreated {
			t.Fatalf("Step 4 - Fixture juror vote failed: %d", code)
		}
	}
	t.Log("Step 4 - All assigned candidates scored")

	// Step 5: Lena changes her mind
	if code := vote(lena, lenaCandidate, 9); code != http.StatusCreated {
		t.Fatalf("Step 5 - Vote update failed: %d", code)
	}
	w = serve(voteHandler.ListVotes, as(testutil.MakeRequest("GET", "/votes", nil, nil), lena))
	var lenaVotes []models.Vote
	testutil.AssertJSON(t, w, &lenaVotes)
	if len(lenaVotes) != 1 || lenaVotes[0].Score != 9 {
		t.Fatalf("Step 5 - Expected one vote scored 9, got %+v", lenaVotes)
	}

	// Step 6: Lena resets her own vote
	req = testutil.MakeRequest("POST", "/resets", models.ResetVoteRequest{
		CandidateID:  lenaCandidate,
		JuryMemberID: jury.ID,
		Reason:       "Conflict of interest",
	}, nil)
	w = serve(resetHandler.ResetVote, as(req, lena))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Reset failed: %d - %s", w.Code, w.Body.String())
	}
	var reset models.ResetResponse
	testutil.AssertJSON(t, w, &reset)
	if reset.VotesReset != 1 || len(reset.BackupIDs) != 1 {
		t.Fatalf("Step 6 - Unexpected reset %+v", reset)
	}
	t.Logf("Step 6 - Vote backed up as %d", reset.BackupIDs[0])

	// Step 7: Admin restores it
	backupID := strconv.FormatInt(reset.BackupIDs[0], 10)
	req = testutil.MakeRequest("POST", "/backups/"+backupID+"/restore", nil, nil)
	req.SetPathValue("id", backupID)
	w = serve(backupHandler.RestoreBackup, as(req, f.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Restore failed: %d - %s", w.Code, w.Body.String())
	}
	var restored models.RestoreResponse
	testutil.AssertJSON(t, w, &restored)
	if restored.Vote.Score != 9 || restored.Vote.CandidateID != lenaCandidate {
		t.Fatalf("Step 7 - Unexpected restored vote %+v", restored.Vote)
	}

	// Step 8: Rankings put Lena's candidate first
	w = serve(reportsHandler.GetRankings, as(testutil.MakeRequest("GET", "/reports/rankings", nil, nil), f.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("Step 8 - Rankings failed: %d - %s", w.Code, w.Body.String())
	}
	var rankings models.RankingsResponse
	testutil.AssertJSON(t, w, &rankings)
	if len(rankings.Rankings) != len(names) {
		t.Fatalf("Step 8 - Expected %d ranked candidates, got %d", len(names), len(rankings.Rankings))
	}
	top := rankings.Rankings[0]
	if top.CandidateID != lenaCandidate || top.Median != 9 || top.Rank != 1 {
		t.Errorf("Step 8 - Expected %d first with median 9, got %+v", lenaCandidate, top)
	}
	t.Log("Step 8 - Workflow complete")
}
