package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/recency-cache/types"
)

func TestPoolRoutesKeysToOneOwner(t *testing.T) {
	ex := newFakeExtractor()
	sink := &sinkRecorder{}
	metrics := &types.Counters{}

	p := NewPool(4, Config{Capacity: 100, Window: time.Hour}, ex, sink, WithMetrics(metrics))
	defer p.Close()
	require.Equal(t, 4, p.Shards())

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		o, err := p.Probe(ctx, Page{URL: fmt.Sprintf("https://example.com/%d", i)})
		require.NoError(t, err)
		assert.Equal(t, Miss, o)
	}
	require.NoError(t, p.Flush(ctx))

	// every key is answered by the cache that recorded it
	for i := 0; i < 20; i++ {
		o, err := p.Probe(ctx, Page{URL: fmt.Sprintf("https://example.com/%d", i)})
		require.NoError(t, err)
		assert.Equal(t, FreshWithoutResult, o)
	}
	assert.Equal(t, int32(20), ex.calls.Load())
	assert.Equal(t, int64(40), metrics.Snapshot().Total())
}

func TestPoolSplitsCapacity(t *testing.T) {
	p := NewPool(3, Config{Capacity: 10}, newFakeExtractor(), nil)
	defer p.Close()

	for _, e := range p.engines {
		assert.Equal(t, 4, e.cache.Capacity())
	}
}

func TestPoolClosed(t *testing.T) {
	p := NewPool(0, Config{}, newFakeExtractor(), nil)
	p.Close()

	assert.Equal(t, 1, p.Shards())
	_, err := p.Probe(context.Background(), Page{URL: "https://example.com/"})
	assert.ErrorIs(t, err, ErrClosed)
}
