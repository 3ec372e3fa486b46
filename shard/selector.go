package shard

import "hash/fnv"

/*
This file decides which owner handles a key when work is spread over
several independent engines.

A key must always land on the same owner: the recency state for a key
lives in exactly one cache, so routing it elsewhere would read as a miss.
*/

// Selector maps a key to an index in [0, n).
type Selector interface {
	Select(key string, n int) int
}

// FNVSelector hashes keys with 32-bit FNV-1a.
type FNVSelector struct{}

func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

func (FNVSelector) Select(key string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(hash(key) % uint32(n))
}
