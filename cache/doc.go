// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package cache keeps short-lived derived data (rankings, assignment and
// backup statistics) in memory. Every key carries the mt_ prefix; writers
// that change votes, backups or assignments delete the matching prefixes.
package cache
