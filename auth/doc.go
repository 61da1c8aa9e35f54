// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides user keys and request nonces.

# User Keys

User keys use HMAC-SHA256 to create deterministic, verifiable keys:

	userKey := auth.GenerateUserKey(userID, salt)
	err := auth.ValidateUserKey(userID, userKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same user ID and salt always produce the same key. This allows validation
without storing the key in the database. Clients send it as X-User-Key next to
X-User-ID.

# Nonces

Nonces bind a user to an action for a limited time:

	nonce := auth.CreateNonce(salt, userID, "mt_nonce", time.Now(), 24*time.Hour)
	tick, err := auth.VerifyNonce(salt, userID, "mt_nonce", nonce, time.Now(), 24*time.Hour)

Time is cut into ticks of half the lifetime. A nonce verifies in the tick it
was minted (tick 1) and in the following one (tick 2), so its real lifetime
lies between half and the full configured lifetime. Anything else returns
ErrInvalidNonce. Comparisons are constant time.

Nonces are base62 strings, safe in form fields and headers.
*/
package auth
