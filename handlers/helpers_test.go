// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/middleware"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
	"github.com/danielhkuo/trailblazers/testutil"
)

// fixture is a fresh store and cache with an administrator, an award admin
// and one linked jury member
type fixture struct {
	st    *store.Store
	tc    *cache.Transients
	admin *middleware.Identity
	award *middleware.Identity
	juror *middleware.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()

	admin, _ := testutil.CreateTestUser(t, st, cfg, "admin", roles.Administrator)
	award, _ := testutil.CreateTestUser(t, st, cfg, "manager", roles.AwardAdmin)
	juror, _ := testutil.CreateTestUser(t, st, cfg, "juror", roles.JuryMember)
	jury := testutil.CreateTestJuryMember(t, st, "Juror One", &juror.ID)

	return &fixture{
		st:    st,
		tc:    cache.New(time.Hour),
		admin: &middleware.Identity{User: *admin},
		award: &middleware.Identity{User: *award},
		juror: &middleware.Identity{User: *juror, JuryMember: jury},
	}
}

// as attaches the caller identity the guard would have placed
func as(req *http.Request, id *middleware.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

// serve runs h against req and returns the recorder
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// ajaxEnvelope decodes the success/data envelope with a typed payload
type ajaxEnvelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decodeAjax[T any](t *testing.T, w *httptest.ResponseRecorder) ajaxEnvelope[T] {
	t.Helper()
	var env ajaxEnvelope[T]
	testutil.AssertJSON(t, w, &env)
	return env
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}
