package eviction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchAll(p Policy, keys ...string) {
	for _, k := range keys {
		p.Touch(k)
	}
}

func TestLRUEvictsLeastRecentlyTouched(t *testing.T) {
	p := NewEvictionPolicy(LRU)
	touchAll(p, "a", "b", "c", "a")

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "c", p.Evict())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "", p.Evict())
	assert.Equal(t, 0, p.Len())
}

func TestLRUSingleKeyRetouch(t *testing.T) {
	p := NewEvictionPolicy(LRU)
	touchAll(p, "a", "a", "a")

	require.Equal(t, 1, p.Len())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestFIFOIgnoresRetouch(t *testing.T) {
	p := NewEvictionPolicy(FIFO)
	touchAll(p, "a", "b", "a", "c")

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "b", p.Evict())
	assert.Equal(t, "c", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestLFUEvictsLeastFrequent(t *testing.T) {
	p := NewEvictionPolicy(LFU)
	touchAll(p, "a", "a", "a", "b", "b", "c")

	assert.Equal(t, "c", p.Evict())
	assert.Equal(t, "b", p.Evict())

	p.Touch("d")
	assert.Equal(t, "d", p.Evict())
	assert.Equal(t, "a", p.Evict())
	assert.Equal(t, "", p.Evict())
}

func TestLFUTiesBreakByArrival(t *testing.T) {
	p := NewEvictionPolicy(LFU)
	touchAll(p, "x", "y", "z", "y", "x")

	// x and y both reached 2; y got there first.
	assert.Equal(t, "z", p.Evict())
	assert.Equal(t, "y", p.Evict())
	assert.Equal(t, "x", p.Evict())
}

func TestParsePolicyType(t *testing.T) {
	for in, want := range map[string]PolicyType{"lru": LRU, " Lfu ": LFU, "FIFO": FIFO} {
		got, err := ParsePolicyType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePolicyType("random")
	assert.Error(t, err)
}

func TestNewEvictionPolicyPanicsOnUnknown(t *testing.T) {
	assert.Panics(t, func() { NewEvictionPolicy("MRU") })
}
