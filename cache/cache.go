// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Prefix is carried by every transient key.
const Prefix = "mt_"

// Well-known transient names
const (
	KeyRankings        = "mt_rankings_"
	KeyAssignmentStats = "mt_assignment_stats"
	KeyBackupStats     = "mt_backup_stats"
)

// Transients is a TTL cache for derived data. Keys are namespaced with
// Prefix so clearing the application's entries never touches anything else
// sharing the cache.
type Transients struct {
	c          *gocache.Cache
	defaultTTL time.Duration
}

// New creates a cache whose entries expire after defaultTTL unless Set is
// given another duration.
func New(defaultTTL time.Duration) *Transients {
	return &Transients{
		c:          gocache.New(defaultTTL, 2*defaultTTL),
		defaultTTL: defaultTTL,
	}
}

func key(name string) string {
	if strings.HasPrefix(name, Prefix) {
		return name
	}
	return Prefix + name
}

// Get returns a live transient.
func (t *Transients) Get(name string) (any, bool) {
	return t.c.Get(key(name))
}

// Set stores a transient. A ttl of zero uses the default.
func (t *Transients) Set(name string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}
	t.c.Set(key(name), value, ttl)
}

// Delete removes one transient.
func (t *Transients) Delete(name string) {
	t.c.Delete(key(name))
}

// DeletePrefix removes every transient whose key starts with prefix and
// returns how many were removed.
func (t *Transients) DeletePrefix(prefix string) int {
	prefix = key(prefix)
	n := 0
	for k := range t.c.Items() {
		if strings.HasPrefix(k, prefix) {
			t.c.Delete(k)
			n++
		}
	}
	return n
}

// Flush removes every application transient and returns how many were removed.
func (t *Transients) Flush() int {
	return t.DeletePrefix(Prefix)
}

// Count returns the number of live transients.
func (t *Transients) Count() int {
	return t.c.ItemCount()
}
