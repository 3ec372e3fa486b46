// This file defines when a cached observation stops being usable.

package expiration

import (
	"time"

	"github.com/krisalay/recency-cache/types"
)

/*
Strategy decides whether an entry is still fresh enough to short-circuit
an extraction. It is kept apart from eviction: eviction bounds memory,
freshness bounds how long an observation may be trusted.

An expired entry is never removed by a Strategy. It stays in the cache
until eviction reaches it or the key is recorded again.
*/
type Strategy interface {
	IsFresh(ent *types.CacheEntry, now time.Time) bool
}

// Window treats an entry as fresh while now - LastSeenAt <= the window.
// The boundary itself counts as fresh.
type Window time.Duration

func (w Window) IsFresh(ent *types.CacheEntry, now time.Time) bool {
	if ent == nil {
		return false
	}
	return now.Sub(ent.LastSeenAt) <= time.Duration(w)
}
