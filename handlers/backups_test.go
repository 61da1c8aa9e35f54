// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/export"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/testutil"
)

func TestCreateBackup(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 7)
	f.tc.Set(cache.KeyBackupStats, models.BackupStatsResponse{}, 0)

	req := testutil.MakeRequest("POST", "/backups", models.BackupVoteRequest{
		CandidateID:  c.ID,
		JuryMemberID: j,
		Reason:       "before recount",
	}, nil)
	w := serve(h.CreateBackup, as(req, f.award))

	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.BackupResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.BackupID <= 0 {
		t.Fatalf("Expected a backup id, got %+v", resp)
	}

	b, err := f.st.GetBackup(context.Background(), resp.BackupID)
	if err != nil {
		t.Fatalf("GetBackup: %v", err)
	}
	if b.BackedUpBy != f.award.User.ID || b.BackupReason != "before recount" || b.Score != 7 {
		t.Errorf("Unexpected backup %+v", b)
	}
	if _, ok := f.tc.Get(cache.KeyBackupStats); ok {
		t.Error("Backup stats should be invalidated")
	}

	testCases := []struct {
		name           string
		body           models.BackupVoteRequest
		expectedStatus int
	}{
		{"missing ids", models.BackupVoteRequest{}, http.StatusBadRequest},
		{"no active vote", models.BackupVoteRequest{CandidateID: c.ID, JuryMemberID: 999}, http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/backups", tc.body, nil)
			w := serve(h.CreateBackup, as(req, f.award))
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestBulkBackup(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)

	c1 := testutil.CreateTestCandidate(t, f.st, "Anna")
	c2 := testutil.CreateTestCandidate(t, f.st, "Ben")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c1.ID, j, 1, 7)
	testutil.SubmitTestVote(t, f.st, c2.ID, j, 1, 5)

	req := testutil.MakeRequest("POST", "/backups/bulk", models.BulkBackupRequest{
		CandidateID: testutil.Int64Ptr(c1.ID),
	}, nil)
	w := serve(h.BulkBackup, as(req, f.admin))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.BulkBackupResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Count != 1 || resp.Message != "1 votes backed up successfully" {
		t.Errorf("Unexpected response %+v", resp)
	}

	w = serve(h.BulkBackup, as(testutil.MakeRequest("POST", "/backups/bulk", models.BulkBackupRequest{}, nil), f.admin))
	testutil.AssertJSON(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("Expected 2 backups without a filter, got %d", resp.Count)
	}
}

func TestRestoreBackupHandler(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)
	ctx := context.Background()

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 4)

	backupID, err := f.st.BackupVote(ctx, c.ID, j, f.admin.User.ID, "")
	if err != nil {
		t.Fatalf("BackupVote: %v", err)
	}
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 9)
	f.tc.Set(cache.KeyRankings+"0", models.RankingsResponse{}, 0)

	restore := func(id string) *http.Request {
		req := testutil.MakeRequest("POST", "/backups/"+id+"/restore", nil, nil)
		req.SetPathValue("id", id)
		return as(req, f.admin)
	}

	w := serve(h.RestoreBackup, restore(strconv.FormatInt(backupID, 10)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.RestoreResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Vote.Score != 4 || resp.Message != "Vote restored successfully" {
		t.Errorf("Unexpected restore response %+v", resp)
	}

	active, err := f.st.ActiveVote(ctx, c.ID, j)
	if err != nil {
		t.Fatalf("ActiveVote: %v", err)
	}
	if active.Score != 4 {
		t.Errorf("Expected restored score 4, got %f", active.Score)
	}
	if _, ok := f.tc.Get(cache.KeyRankings + "0"); ok {
		t.Error("Rankings should be invalidated after a restore")
	}

	t.Run("unknown backup", func(t *testing.T) {
		w := serve(h.RestoreBackup, restore("999"))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := serve(h.RestoreBackup, restore("abc"))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestBackupHistoryHandler(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)
	ctx := context.Background()

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 5)
	for i := 0; i < 3; i++ {
		if _, err := f.st.BackupVote(ctx, c.ID, j, f.admin.User.ID, ""); err != nil {
			t.Fatalf("BackupVote: %v", err)
		}
	}

	req := testutil.MakeRequest("GET", "/backups?per_page=2&page=2&orderby=id&order=asc", nil, nil)
	w := serve(h.GetHistory, as(req, f.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.BackupHistoryResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Total != 3 || resp.Pages != 2 || resp.CurrentPage != 2 {
		t.Errorf("Unexpected pagination %+v", resp)
	}
	if len(resp.Backups) != 1 || resp.Backups[0].CandidateName != "Anna" {
		t.Errorf("Unexpected page contents %+v", resp.Backups)
	}

	w = serve(h.GetHistory, as(testutil.MakeRequest("GET", "/backups?jury_member_id=0", nil, nil), f.admin))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestBackupStatsHandler(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 5)
	if _, err := f.st.BackupVote(context.Background(), c.ID, j, f.admin.User.ID, ""); err != nil {
		t.Fatalf("BackupVote: %v", err)
	}

	w := serve(h.GetStats, as(testutil.MakeRequest("GET", "/backups/stats", nil, nil), f.admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var stats models.BackupStatsResponse
	testutil.AssertJSON(t, w, &stats)
	if stats.TotalBackups != 1 || stats.RecentBackups != 1 || stats.Restorations != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	// "test vote" + "manual_backup" + row overhead
	if stats.StorageBytes != 118 || stats.StorageSize != "118 B" {
		t.Errorf("Unexpected storage %d / %q", stats.StorageBytes, stats.StorageSize)
	}
	if len(stats.ByReason) != 1 || stats.ByReason[0].Reason != models.DefaultBackupReason {
		t.Errorf("Unexpected reasons %+v", stats.ByReason)
	}

	if _, ok := f.tc.Get(cache.KeyBackupStats); !ok {
		t.Error("Expected stats to be cached")
	}
}

func TestBackupCleanupHandler(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)
	ctx := context.Background()

	c := testutil.CreateTestCandidate(t, f.st, "Anna")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 5)
	for i := 0; i < 2; i++ {
		if _, err := f.st.BackupVote(ctx, c.ID, j, f.admin.User.ID, ""); err != nil {
			t.Fatalf("BackupVote: %v", err)
		}
	}

	t.Run("invalid days", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/backups/cleanup", models.CleanupRequest{Days: 0}, nil)
		w := serve(h.Cleanup, as(req, f.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("nothing old enough", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/backups/cleanup", models.CleanupRequest{Days: 30}, nil)
		w := serve(h.Cleanup, as(req, f.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CleanupResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Deleted != 0 || resp.Days != 30 {
			t.Errorf("Unexpected response %+v", resp)
		}
	})

	t.Run("default retention", func(t *testing.T) {
		h.now = func() time.Time { return time.Now().AddDate(0, 0, 400) }

		w := serve(h.Cleanup, as(testutil.MakeRequest("POST", "/backups/cleanup", nil, nil), f.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.CleanupResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Deleted != 2 || resp.Days != 365 {
			t.Errorf("Unexpected response %+v", resp)
		}
	})
}

func TestBackupExport(t *testing.T) {
	f := newFixture(t)
	h := NewBackupHandler(f.st, f.tc, 365)
	h.now = func() time.Time { return time.Date(2025, 8, 20, 10, 30, 0, 0, time.UTC) }

	c := testutil.CreateTestCandidate(t, f.st, "Jürgen Müller")
	j := f.juror.JuryMember.ID
	testutil.SubmitTestVote(t, f.st, c.ID, j, 1, 5)
	if _, err := f.st.BackupVote(context.Background(), c.ID, j, f.admin.User.ID, ""); err != nil {
		t.Fatalf("BackupVote: %v", err)
	}

	t.Run("csv", func(t *testing.T) {
		w := serve(h.Export, as(testutil.MakeRequest("GET", "/backups/export", nil, nil), f.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		want := `attachment; filename="vote-backups-2025-08-20-103000.csv"`
		if cd := w.Header().Get("Content-Disposition"); cd != want {
			t.Errorf("Expected %q, got %q", want, cd)
		}

		body := w.Body.Bytes()
		if !bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
			t.Fatal("Expected a UTF-8 BOM")
		}
		records, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
		if err != nil {
			t.Fatalf("Failed to parse CSV: %v", err)
		}
		if len(records) != 2 || records[0][0] != "id" {
			t.Fatalf("Unexpected records %v", records)
		}
		if !strings.Contains(strings.Join(records[1], ","), "Jürgen Müller") {
			t.Errorf("Expected candidate name in row, got %v", records[1])
		}
	})

	t.Run("json", func(t *testing.T) {
		w := serve(h.Export, as(testutil.MakeRequest("GET", "/backups/export?format=json", nil, nil), f.admin))
		testutil.AssertStatus(t, w, http.StatusOK)

		var doc export.BackupDocument
		testutil.AssertJSON(t, w, &doc)
		if doc.ExportID == "" || doc.Count != 1 || doc.ExportVersion != export.FormatVersion {
			t.Errorf("Unexpected document %+v", doc)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		w := serve(h.Export, as(testutil.MakeRequest("GET", "/backups/export?format=xml", nil, nil), f.admin))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
