package eviction

import (
	"fmt"
	"strings"
)

/*
This file defines how the cache decides which key to drop when it is full.

Policy only tracks keys. It never sees timestamps: freshness is decided
elsewhere, so an expired entry is still subject to normal eviction order.
*/
type Policy interface {

	// Touch is called whenever a key is recorded.
	//
	// A new key starts being tracked. For an existing key:
	// - LRU moves it to the most recently used position
	// - LFU bumps its use count
	// - FIFO ignores it
	Touch(string)

	// Evict picks the victim, stops tracking it and returns it.
	// It returns "" when nothing is tracked.
	Evict() string

	// Len returns how many keys are tracked.
	Len() int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU evicts the key recorded least recently.
	LRU PolicyType = "LRU"

	// LFU evicts the key recorded the fewest times.
	LFU PolicyType = "LFU"

	// FIFO evicts the key first recorded earliest, regardless of later records.
	FIFO PolicyType = "FIFO"
)

// ParsePolicyType accepts a policy name in any case.
func ParsePolicyType(s string) (PolicyType, error) {
	switch t := PolicyType(strings.ToUpper(strings.TrimSpace(s))); t {
	case LRU, LFU, FIFO:
		return t, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", s)
	}
}

// NewEvictionPolicy creates the policy named by t.
func NewEvictionPolicy(t PolicyType) Policy {
	switch t {
	case LRU:
		return newLRU()
	case LFU:
		return newLFU()
	case FIFO:
		return newFIFO()
	default:
		panic("unknown eviction policy")
	}
}
