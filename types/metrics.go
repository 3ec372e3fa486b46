package types

import "sync/atomic"

// This file defines how the cache and the engine report what they are doing.

/*
Metrics receives one event per classification outcome, plus evictions.
Every probe that is not skipped lands in exactly one of the three
classification buckets.
*/
type Metrics interface {

	// FreshWithResult is called when a fresh entry says the last probe found a result.
	FreshWithResult()

	// FreshWithoutResult is called when a fresh entry says the last probe found nothing.
	FreshWithoutResult()

	// Miss is called when the key is absent or expired and extraction is dispatched.
	Miss()

	// Eviction is called when the cache drops a key to stay within capacity.
	Eviction()
}

// NoopMetrics ignores every event so callers never need nil checks.
type NoopMetrics struct{}

func (NoopMetrics) FreshWithResult()    {}
func (NoopMetrics) FreshWithoutResult() {}
func (NoopMetrics) Miss()               {}
func (NoopMetrics) Eviction()           {}

// Counters is a Metrics implementation backed by atomic counters.
type Counters struct {
	freshWithResult    atomic.Int64
	freshWithoutResult atomic.Int64
	miss               atomic.Int64
	eviction           atomic.Int64
}

func (c *Counters) FreshWithResult()    { c.freshWithResult.Add(1) }
func (c *Counters) FreshWithoutResult() { c.freshWithoutResult.Add(1) }
func (c *Counters) Miss()               { c.miss.Add(1) }
func (c *Counters) Eviction()           { c.eviction.Add(1) }

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	FreshWithResult    int64
	FreshWithoutResult int64
	Miss               int64
	Eviction           int64
}

// Snapshot reads all counters. Counters keep moving while it runs.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		FreshWithResult:    c.freshWithResult.Load(),
		FreshWithoutResult: c.freshWithoutResult.Load(),
		Miss:               c.miss.Load(),
		Eviction:           c.eviction.Load(),
	}
}

// Total is the number of classified probes.
func (s Snapshot) Total() int64 {
	return s.FreshWithResult + s.FreshWithoutResult + s.Miss
}
