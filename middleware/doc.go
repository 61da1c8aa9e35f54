// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote, request_id) and completion
(duration_ms). RequestID assigns the id, keeping a client supplied
X-Request-ID:

	handler := middleware.RequestID(middleware.CORS(mux))

# Identity

A Guard turns the X-User-ID and X-User-Key headers into an Identity in the
request context. The key is the HMAC user key handed out when the user was
created. Unknown users and bad keys get 401.

	mux.HandleFunc("POST /backups", guard.RequireCapability(roles.CapManageVoting, h.Create))

RequireCapability answers 403 when the role (or a jury link) does not grant
the capability.

# Nonces

State-changing AJAX endpoints also require a nonce for their action, sent as
the "nonce" form field or the X-MT-Nonce header:

	guard.RequireCapability(roles.CapManageAssignments,
		guard.VerifyNonce("mt_nonce", h.AutoAssign))

A missing or stale nonce ends the request with 403 and the plain text body
"Security check failed".

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

AJAX endpoints use the success/data envelope instead:

	middleware.AjaxSuccess(w, data)       // {"success":true,"data":...}
	middleware.AjaxError(w, "Bad input")  // 400 {"success":false,"data":{"message":"Bad input"}}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, X-Real-IP, then RemoteAddr.
*/
package middleware
