// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidUserKey = errors.New("invalid user key")
	ErrInvalidNonce   = errors.New("invalid nonce")
)

// GenerateUserKey creates an HMAC-based key for a user
// This is deterministic and verifiable
func GenerateUserKey(userID int64, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte("user:" + strconv.FormatInt(userID, 10)))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateUserKey checks if the provided key belongs to the user
func ValidateUserKey(userID int64, userKey, salt string) error {
	expected := GenerateUserKey(userID, salt)
	if !hmac.Equal([]byte(userKey), []byte(expected)) {
		return ErrInvalidUserKey
	}
	return nil
}

// nonceTick splits time into half-lifetime windows. A nonce minted in one
// tick stays valid through the next.
func nonceTick(now time.Time, lifetime time.Duration) int64 {
	half := int64(lifetime / 2)
	if half <= 0 {
		half = int64(time.Hour)
	}
	return now.UnixNano()/half + 1
}

func nonceForTick(salt string, userID int64, action string, tick int64) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(strconv.FormatInt(tick, 10) + "|" + action + "|" + strconv.FormatInt(userID, 10)))
	sum := h.Sum(nil)
	return base62Encode(sum[:8])
}

// CreateNonce mints a nonce binding a user to an action for the current tick
func CreateNonce(salt string, userID int64, action string, now time.Time, lifetime time.Duration) string {
	return nonceForTick(salt, userID, action, nonceTick(now, lifetime))
}

// VerifyNonce checks a nonce against the current and previous tick.
// It returns 1 when the nonce was minted in the current tick, 2 when it
// comes from the previous one.
func VerifyNonce(salt string, userID int64, action, nonce string, now time.Time, lifetime time.Duration) (int, error) {
	if nonce == "" {
		return 0, ErrInvalidNonce
	}

	tick := nonceTick(now, lifetime)
	if hmac.Equal([]byte(nonce), []byte(nonceForTick(salt, userID, action, tick))) {
		return 1, nil
	}
	if hmac.Equal([]byte(nonce), []byte(nonceForTick(salt, userID, action, tick-1))) {
		return 2, nil
	}
	return 0, ErrInvalidNonce
}

// base62Encode converts bytes to base62 (0-9, a-z, A-Z)
// This keeps nonces safe in form fields and headers
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Convert bytes to a big integer
	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}

	if num == 0 {
		return "0"
	}

	// Convert to base62
	result := make([]byte, 0, 11) // max length for uint64
	for num > 0 {
		result = append(result, base62Chars[num%62])
		num /= 62
	}

	// Reverse the string
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	return string(result)
}
