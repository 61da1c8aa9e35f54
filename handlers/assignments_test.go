// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/testutil"
)

func TestAssignCandidates(t *testing.T) {
	f := newFixture(t)
	h := NewAssignmentHandler(f.st, f.tc)

	c1 := testutil.CreateTestCandidate(t, f.st, "Anna")
	c2 := testutil.CreateTestCandidate(t, f.st, "Ben")
	juryID := strconv.FormatInt(f.juror.JuryMember.ID, 10)

	t.Run("invalid jury member", func(t *testing.T) {
		for _, jury := range []string{"", "abc", "999"} {
			req := testutil.MakeFormRequest("POST", "/ajax/mt_assign_candidates", url.Values{
				"jury_member_id":  {jury},
				"candidate_ids[]": {strconv.FormatInt(c1.ID, 10)},
			}, nil)
			w := serve(h.AssignCandidates, as(req, f.admin))

			testutil.AssertStatus(t, w, http.StatusBadRequest)
			env := decodeAjax[models.AjaxMessage](t, w)
			if env.Success || env.Data.Message != "Invalid jury member" {
				t.Errorf("jury %q: unexpected envelope %+v", jury, env)
			}
		}
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/ajax/mt_assign_candidates", url.Values{
			"jury_member_id":  {juryID},
			"candidate_ids[]": {strconv.FormatInt(c1.ID, 10), "9999", "junk"},
			"candidate_ids":   {strconv.FormatInt(c2.ID, 10)},
		}, nil)
		w := serve(h.AssignCandidates, as(req, f.admin))

		testutil.AssertStatus(t, w, http.StatusOK)
		env := decodeAjax[models.AjaxMessage](t, w)
		if !env.Success {
			t.Fatal("Expected success")
		}
		if env.Data.Message != "2 candidates assigned successfully" {
			t.Errorf("Unexpected message %q", env.Data.Message)
		}

		got, err := f.st.GetCandidate(context.Background(), c2.ID)
		if err != nil {
			t.Fatalf("GetCandidate: %v", err)
		}
		if got.AssignedJuryID == nil || *got.AssignedJuryID != f.juror.JuryMember.ID {
			t.Errorf("Candidate not assigned: %+v", got.AssignedJuryID)
		}
	})
}

func TestAutoAssignValidation(t *testing.T) {
	f := newFixture(t)
	h := NewAssignmentHandler(f.st, f.tc)

	testCases := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"missing count", url.Values{"algorithm": {"balanced"}}, "Invalid candidates per jury value"},
		{"zero count", url.Values{"candidates_per_jury": {"0"}}, "Invalid candidates per jury value"},
		{"bad count", url.Values{"candidates_per_jury": {"five"}}, "Invalid candidates per jury value"},
		{"bad algorithm", url.Values{"candidates_per_jury": {"2"}, "algorithm": {"alphabetical"}}, "Invalid algorithm"},
		// Count is checked before the algorithm
		{"both invalid", url.Values{"candidates_per_jury": {"-1"}, "algorithm": {"nope"}}, "Invalid candidates per jury value"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", tc.form, nil)
			w := serve(h.AutoAssign, as(req, f.admin))

			testutil.AssertStatus(t, w, http.StatusBadRequest)
			env := decodeAjax[models.AjaxMessage](t, w)
			if env.Data.Message != tc.message {
				t.Errorf("Expected %q, got %q", tc.message, env.Data.Message)
			}
		})
	}
}

func TestAutoAssignNoJury(t *testing.T) {
	st := testutil.SetupTestStore(t)
	h := NewAssignmentHandler(st, cache.New(time.Hour))
	testutil.CreateTestCandidate(t, st, "Anna")

	req := testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", url.Values{
		"candidates_per_jury": {"3"},
	}, nil)
	w := serve(h.AutoAssign, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	env := decodeAjax[models.AjaxMessage](t, w)
	if env.Data.Message != "No jury members available" {
		t.Errorf("Unexpected message %q", env.Data.Message)
	}
}

func TestAutoAssignDistributes(t *testing.T) {
	f := newFixture(t)
	h := NewAssignmentHandler(f.st, f.tc)

	j1 := f.juror.JuryMember
	j2 := testutil.CreateTestJuryMember(t, f.st, "Juror Two", nil)
	for i := 0; i < 5; i++ {
		testutil.CreateTestCandidate(t, f.st, "Candidate "+strconv.Itoa(i))
	}

	req := testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", url.Values{
		"candidates_per_jury": {"2"},
		"algorithm":           {"random"},
	}, nil)
	w := serve(h.AutoAssign, as(req, f.admin))

	testutil.AssertStatus(t, w, http.StatusOK)
	env := decodeAjax[models.AutoAssignResult](t, w)
	if !env.Success {
		t.Fatal("Expected success")
	}
	if env.Data.Message != "Auto-assignment completed successfully" {
		t.Errorf("Unexpected message %q", env.Data.Message)
	}
	if env.Data.TotalAssigned != 4 {
		t.Errorf("Expected 4 assigned, got %d", env.Data.TotalAssigned)
	}
	if env.Data.Assignments[j1.ID] != 2 || env.Data.Assignments[j2.ID] != 2 {
		t.Errorf("Unexpected per-jury counts %v", env.Data.Assignments)
	}
	if env.Data.Algorithm != "random" {
		t.Errorf("Expected algorithm random, got %q", env.Data.Algorithm)
	}

	unassigned, err := f.st.ListUnassignedCandidates(context.Background())
	if err != nil {
		t.Fatalf("ListUnassignedCandidates: %v", err)
	}
	if len(unassigned) != 1 {
		t.Errorf("Expected 1 unassigned candidate, got %d", len(unassigned))
	}

	// A second run only sees the leftover candidate
	req = testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", url.Values{
		"candidates_per_jury": {"2"},
	}, nil)
	w = serve(h.AutoAssign, as(req, f.admin))
	env = decodeAjax[models.AutoAssignResult](t, w)
	if env.Data.TotalAssigned != 1 {
		t.Errorf("Expected 1 assigned on second run, got %d", env.Data.TotalAssigned)
	}

	// Clearing first redistributes everyone
	req = testutil.MakeFormRequest("POST", "/ajax/mt_auto_assign", url.Values{
		"candidates_per_jury": {"3"},
		"clear_existing":      {"true"},
	}, nil)
	w = serve(h.AutoAssign, as(req, f.admin))
	env = decodeAjax[models.AutoAssignResult](t, w)
	if env.Data.Cleared != 5 {
		t.Errorf("Expected 5 cleared, got %d", env.Data.Cleared)
	}
	if env.Data.TotalAssigned != 5 {
		t.Errorf("Expected 5 assigned after clearing, got %d", env.Data.TotalAssigned)
	}
}

func TestExportAssignments(t *testing.T) {
	f := newFixture(t)
	h := NewAssignmentHandler(f.st, f.tc)
	h.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	testutil.CreateTestCandidate(t, f.st, "Ben")
	testutil.AssignTestCandidate(t, f.st, c.ID, f.juror.JuryMember.ID)

	t.Run("english", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/ajax/mt_export_assignments", url.Values{}, nil)
		w := serve(h.ExportAssignments, as(req, f.admin))

		testutil.AssertStatus(t, w, http.StatusOK)
		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Expected text/csv, got %q", ct)
		}
		want := `attachment; filename="assignments-2025-03-14.csv"`
		if cd := w.Header().Get("Content-Disposition"); cd != want {
			t.Errorf("Expected %q, got %q", want, cd)
		}

		records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected header and 2 rows, got %d", len(records))
		}
		if records[0][0] != "Candidate Name" || records[0][4] != "Assignment Date" {
			t.Errorf("Unexpected header %v", records[0])
		}
		if records[1][0] != "Anna" || records[1][3] != "Juror One" || records[1][4] == "" {
			t.Errorf("Unexpected assigned row %v", records[1])
		}
		if records[2][3] != "" || records[2][4] != "" {
			t.Errorf("Unassigned row should have empty jury and date: %v", records[2])
		}
	})

	t.Run("german", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/ajax/mt_export_assignments", url.Values{},
			map[string]string{"Accept-Language": "de-DE,de;q=0.9,en;q=0.5"})
		w := serve(h.ExportAssignments, as(req, f.admin))

		records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if records[0][0] != "Kandidatenname" || records[0][1] != "Unternehmen" {
			t.Errorf("Expected German header, got %v", records[0])
		}
	})
}

func TestGetAssignmentData(t *testing.T) {
	f := newFixture(t)
	h := NewAssignmentHandler(f.st, f.tc)

	zoe := testutil.CreateTestCandidate(t, f.st, "Zoe")
	testutil.CreateTestCandidate(t, f.st, "Anna")
	testutil.CreateTestCandidate(t, f.st, "Mia")
	testutil.CreateTestJuryMember(t, f.st, "Albert", nil)
	testutil.AssignTestCandidate(t, f.st, zoe.ID, f.juror.JuryMember.ID)

	req := testutil.MakeFormRequest("POST", "/ajax/mt_get_assignment_data", url.Values{}, nil)
	w := serve(h.GetAssignmentData, as(req, f.admin))

	testutil.AssertStatus(t, w, http.StatusOK)
	env := decodeAjax[models.AssignmentData](t, w)
	data := env.Data

	if len(data.Candidates) != 3 || data.Candidates[0].Name != "Anna" || data.Candidates[2].Name != "Zoe" {
		t.Errorf("Candidates should be sorted by name: %+v", data.Candidates)
	}
	if !data.Candidates[2].Assigned || data.Candidates[2].JuryMemberID == nil {
		t.Errorf("Zoe should be assigned: %+v", data.Candidates[2])
	}
	if len(data.JuryMembers) != 2 || data.JuryMembers[0].Name != "Albert" {
		t.Errorf("Jury members should be sorted by name: %+v", data.JuryMembers)
	}
	if data.JuryMembers[1].Assignments != 1 || data.JuryMembers[1].MaxAssignments != 15 {
		t.Errorf("Unexpected jury counts: %+v", data.JuryMembers[1])
	}

	want := models.AssignmentStatistics{
		TotalCandidates: 3,
		TotalJury:       2,
		AssignedCount:   1,
		CompletionRate:  "33.3%",
		AvgPerJury:      "0.5",
	}
	if data.Statistics != want {
		t.Errorf("Expected statistics %+v, got %+v", want, data.Statistics)
	}

	if _, ok := f.tc.Get(cache.KeyAssignmentStats); !ok {
		t.Error("Expected assignment data to be cached")
	}
}

func TestAssignmentStatisticsEmpty(t *testing.T) {
	got := assignmentStatistics(0, 0, 0)
	if got.CompletionRate != "0.0%" || got.AvgPerJury != "0.0" {
		t.Errorf("Unexpected empty statistics %+v", got)
	}
}
