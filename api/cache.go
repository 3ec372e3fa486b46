package api

import "time"

/*
RecencyCache is the public contract of the freshness-gated recency cache.

It remembers, per key, when an expensive probe last completed and whether
it found anything. Storage, eviction order and freshness rules stay behind
this interface.

Implementations are owned by a single goroutine. None of the methods are
safe for concurrent use.
*/
type RecencyCache interface {

	/*
		WasSeenRecently reports whether key was recorded and is still fresh:
		now - lastSeen <= window, boundary included.

		- An empty key is always false.
		- A key that was evicted is false, even inside the window.
		- Lookup does NOT change eviction order.
	*/
	WasSeenRecently(key string, now time.Time, window time.Duration) bool

	/*
		HadResultLastTime reports whether the last record for key found a result.
		Only meaningful after WasSeenRecently returned true. Does NOT change
		eviction order.
	*/
	HadResultLastTime(key string) bool

	/*
		Record creates or overwrites the entry for key and marks it most
		recently used. When the cache is over capacity the eviction policy
		drops one key. An empty key is ignored.
	*/
	Record(key string, now time.Time, found bool)

	// Len returns the number of entries, expired or not.
	Len() int

	// Capacity returns the maximum number of entries.
	Capacity() int

	// Reset drops every entry.
	Reset()
}
