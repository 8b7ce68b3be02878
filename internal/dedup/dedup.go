// Package dedup suppresses repeat notifications for the same product
// identifier within a per-guild time window.
package dedup

import (
	"sync"
	"time"
)

// Tracker is a process-wide (guildID, asin) → last-seen cache. Entries are
// only ever overwritten, never deleted; growth is bounded in practice by
// the number of distinct products seen. ShouldNotify is an atomic
// check-and-set so two concurrent messages cannot both pass for the same
// identifier.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]map[string]time.Time
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[string]map[string]time.Time),
		now:  time.Now,
	}
}

// NewTrackerWithClock builds a tracker with an injectable clock for tests.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	t := NewTracker()
	t.now = now
	return t
}

// ShouldNotify reports whether asin has not been seen for guildID within
// the window, recording now as last-seen when it returns true. A zero or
// negative window disables suppression.
func (t *Tracker) ShouldNotify(guildID, asin string, window time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	guild, ok := t.seen[guildID]
	if !ok {
		guild = make(map[string]time.Time)
		t.seen[guildID] = guild
	}

	now := t.now()
	if last, ok := guild[asin]; ok && window > 0 && now.Sub(last) < window {
		return false
	}
	guild[asin] = now
	return true
}

// Filter returns the subset of asins that pass ShouldNotify, preserving
// order. Suppression is per identifier: one message can have some of its
// identifiers suppressed and others allowed.
func (t *Tracker) Filter(guildID string, asins []string, window time.Duration) []string {
	var fresh []string
	for _, a := range asins {
		if t.ShouldNotify(guildID, a, window) {
			fresh = append(fresh, a)
		}
	}
	return fresh
}
