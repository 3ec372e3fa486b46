package types

import "time"

// CacheEntry is what the recency cache remembers about one key.
// It is overwritten on every record, never merged.
type CacheEntry struct {
	Key string

	// LastSeenAt is when the key was last probed to completion.
	// Writes for the same key are expected to carry non-decreasing times.
	LastSeenAt time.Time

	// FoundResult reports whether that probe produced a non-empty result.
	FoundResult bool
}
