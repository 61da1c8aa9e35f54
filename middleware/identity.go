// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/trailblazers/auth"
	"github.com/danielhkuo/trailblazers/models"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

// Identity headers
const (
	UserIDHeader  = "X-User-ID"
	UserKeyHeader = "X-User-Key"
	NonceHeader   = "X-MT-Nonce"
	NonceField    = "nonce"
)

// SecurityCheckFailed is the plain body of a rejected nonce
const SecurityCheckFailed = "Security check failed"

// Identity is the authenticated caller of a request.
type Identity struct {
	User       models.User
	JuryMember *models.JuryMember // nil unless the user is linked to a jury record
}

// Can reports whether the caller holds capability.
func (id *Identity) Can(capability string) bool {
	return roles.Can(id.User.Role, id.JuryMember != nil, capability)
}

// IsAdmin reports whether the caller is a site administrator.
func (id *Identity) IsAdmin() bool {
	return id.User.Role == roles.Administrator
}

type identityKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity returns the caller stored by Authenticate.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// UserLookup resolves users and their jury records.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	JuryMemberForUser(ctx context.Context, userID int64) (*models.JuryMember, error)
}

// Guard authenticates callers and enforces capabilities and nonces.
type Guard struct {
	users         UserLookup
	userKeySalt   string
	nonceSalt     string
	nonceLifetime time.Duration
	now           func() time.Time
}

// NewGuard builds a Guard using the given secrets.
func NewGuard(users UserLookup, userKeySalt, nonceSalt string, nonceLifetime time.Duration) *Guard {
	return &Guard{
		users:         users,
		userKeySalt:   userKeySalt,
		nonceSalt:     nonceSalt,
		nonceLifetime: nonceLifetime,
		now:           time.Now,
	}
}

// CreateNonce mints a nonce for the user and action at the current time.
func (g *Guard) CreateNonce(userID int64, action string) string {
	return auth.CreateNonce(g.nonceSalt, userID, action, g.now(), g.nonceLifetime)
}

// Authenticate resolves X-User-ID and X-User-Key into an Identity.
func (g *Guard) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawID := r.Header.Get(UserIDHeader)
		userKey := r.Header.Get(UserKeyHeader)
		if rawID == "" || userKey == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Missing user credentials")
			return
		}

		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil || userID <= 0 {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid user ID")
			return
		}

		if err := auth.ValidateUserKey(userID, userKey, g.userKeySalt); err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "Invalid user key")
			return
		}

		user, err := g.users.GetUser(r.Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(w, http.StatusUnauthorized, "Unknown user")
			return
		}
		if err != nil {
			slog.Error("failed to load user", "error", err, "user_id", userID)
			ErrorResponse(w, http.StatusInternalServerError, "Failed to authenticate")
			return
		}

		id := &Identity{User: *user}
		jury, err := g.users.JuryMemberForUser(r.Context(), userID)
		switch {
		case err == nil:
			id.JuryMember = jury
		case !errors.Is(err, store.ErrNotFound):
			slog.Error("failed to load jury link", "error", err, "user_id", userID)
			ErrorResponse(w, http.StatusInternalServerError, "Failed to authenticate")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// RequireCapability authenticates the caller and rejects those lacking capability.
func (g *Guard) RequireCapability(capability string, next http.HandlerFunc) http.HandlerFunc {
	return g.Authenticate(Allow(capability, next))
}

// Allow rejects authenticated callers lacking capability. It must run
// inside Authenticate.
func Allow(capability string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		if !ok {
			ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !id.Can(capability) {
			ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		next(w, r)
	}
}

// VerifyNonce rejects requests whose nonce for action does not verify
// against the authenticated user. It must run inside Authenticate.
// The nonce is read from the "nonce" form field or the X-MT-Nonce header.
func (g *Guard) VerifyNonce(action string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentity(r.Context())
		nonce := r.Header.Get(NonceHeader)
		if nonce == "" {
			nonce = r.FormValue(NonceField)
		}

		if !ok || nonce == "" {
			securityCheckFailed(w)
			return
		}
		if _, err := auth.VerifyNonce(g.nonceSalt, id.User.ID, action, nonce, g.now(), g.nonceLifetime); err != nil {
			slog.Warn("nonce rejected", "action", action, "user_id", id.User.ID)
			securityCheckFailed(w)
			return
		}
		next(w, r)
	}
}

func securityCheckFailed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(SecurityCheckFailed))
}
