// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/auth"
	"github.com/danielhkuo/trailblazers/cliparse"
	"github.com/danielhkuo/trailblazers/db"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/store"
)

// SetupTestDB creates a fresh SQLite database file with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trailblazers_test.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// SetupTestStore returns a store over a fresh test database
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Default()
	cfg.DatabaseURL = "file:test.db"
	cfg.UserKeySalt = "test-user-salt"
	cfg.NonceSalt = "test-nonce-salt"
	cfg.LogFormat = "text"
	return cfg
}

// CreateTestUser inserts a user with role and returns it with its user key
func CreateTestUser(t *testing.T, s *store.Store, cfg cliparse.Config, login, role string) (*models.User, string) {
	t.Helper()

	u, err := s.CreateUser(context.Background(), login, strings.ToUpper(login[:1])+login[1:], role)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u, auth.GenerateUserKey(u.ID, cfg.UserKeySalt)
}

// CreateTestJuryMember inserts a jury member, optionally linked to a user
func CreateTestJuryMember(t *testing.T, s *store.Store, name string, userID *int64) *models.JuryMember {
	t.Helper()

	j, err := s.CreateJuryMember(context.Background(), name, userID, 0)
	if err != nil {
		t.Fatalf("Failed to create test jury member: %v", err)
	}
	return j
}

// CreateTestCandidate inserts an unassigned candidate
func CreateTestCandidate(t *testing.T, s *store.Store, name string) *models.Candidate {
	t.Helper()

	c, err := s.CreateCandidate(context.Background(), name, name+" GmbH", "Startups")
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return c
}

// AssignTestCandidate assigns a candidate to a jury member
func AssignTestCandidate(t *testing.T, s *store.Store, candidateID, juryID int64) {
	t.Helper()

	ok, err := s.AssignCandidate(context.Background(), candidateID, juryID, time.Now())
	if err != nil || !ok {
		t.Fatalf("Failed to assign test candidate: ok=%v err=%v", ok, err)
	}
}

// SubmitTestVote records a vote directly through the store
func SubmitTestVote(t *testing.T, s *store.Store, candidateID, juryID int64, round int, score float64) *models.Vote {
	t.Helper()

	v, err := s.UpsertVote(context.Background(), models.Vote{
		CandidateID:  candidateID,
		JuryMemberID: juryID,
		Round:        round,
		Score:        score,
		Comments:     "test vote",
	})
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return v
}

// AuthHeaders returns the identity headers for a user
func AuthHeaders(u *models.User, userKey string) map[string]string {
	return map[string]string{
		"X-User-ID":  strconv.FormatInt(u.ID, 10),
		"X-User-Key": userKey,
	}
}

// Nonce mints a valid nonce for the user and action under cfg
func Nonce(cfg cliparse.Config, userID int64, action string) string {
	return auth.CreateNonce(cfg.NonceSalt, userID, action, time.Now(), cfg.NonceLifetime)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a form-encoded HTTP test request
func MakeFormRequest(method, path string, form url.Values, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}
