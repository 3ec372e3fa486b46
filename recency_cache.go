package cache

import (
	"time"

	"github.com/krisalay/recency-cache/api"
	evict "github.com/krisalay/recency-cache/eviction"
	"github.com/krisalay/recency-cache/expiration"
	"github.com/krisalay/recency-cache/types"
)

// DefaultCapacity is the number of keys kept when no capacity is configured.
const DefaultCapacity = 100

var _ api.RecencyCache = (*RecencyCache)(nil)

/*
RecencyCache is a bounded key -> CacheEntry map.

Two separate rules apply to its entries:
- eviction (LRU by default) keeps the map within capacity
- freshness (a time window) decides whether an entry may still be trusted

It does no locking. The probe engine owns one instance on its event loop
goroutine; anything else must serialize access itself.
*/
type RecencyCache struct {
	entries  map[string]*types.CacheEntry
	policy   evict.Policy
	kind     evict.PolicyType
	capacity int
	metrics  types.Metrics
}

// NewRecencyCache builds an empty cache. A non-positive capacity falls back
// to DefaultCapacity and a nil metrics sink to NoopMetrics.
func NewRecencyCache(capacity int, eviction evict.PolicyType, metrics types.Metrics) *RecencyCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	return &RecencyCache{
		entries:  make(map[string]*types.CacheEntry, capacity),
		policy:   evict.NewEvictionPolicy(eviction),
		kind:     eviction,
		capacity: capacity,
		metrics:  metrics,
	}
}

func (c *RecencyCache) WasSeenRecently(key string, now time.Time, window time.Duration) bool {
	if key == "" {
		return false
	}
	ent, ok := c.entries[key]
	if !ok {
		return false
	}
	return expiration.Window(window).IsFresh(ent, now)
}

func (c *RecencyCache) HadResultLastTime(key string) bool {
	ent, ok := c.entries[key]
	return ok && ent.FoundResult
}

func (c *RecencyCache) Record(key string, now time.Time, found bool) {
	if key == "" {
		return
	}

	c.entries[key] = &types.CacheEntry{
		Key:         key,
		LastSeenAt:  now,
		FoundResult: found,
	}
	c.policy.Touch(key)

	for len(c.entries) > c.capacity {
		victim := c.policy.Evict()
		if victim == "" {
			break
		}
		delete(c.entries, victim)
		c.metrics.Eviction()
	}
}

// Entry returns a copy of the stored entry, expired or not.
func (c *RecencyCache) Entry(key string) (types.CacheEntry, bool) {
	ent, ok := c.entries[key]
	if !ok {
		return types.CacheEntry{}, false
	}
	return *ent, true
}

func (c *RecencyCache) Len() int { return len(c.entries) }

func (c *RecencyCache) Capacity() int { return c.capacity }

func (c *RecencyCache) Reset() {
	c.entries = make(map[string]*types.CacheEntry, c.capacity)
	c.policy = evict.NewEvictionPolicy(c.kind)
}
