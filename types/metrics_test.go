package types

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersSnapshot(t *testing.T) {
	c := &Counters{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.FreshWithResult()
			c.FreshWithoutResult()
			c.Miss()
			c.Miss()
			c.Eviction()
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, Snapshot{FreshWithResult: 10, FreshWithoutResult: 10, Miss: 20, Eviction: 10}, s)
	assert.Equal(t, int64(40), s.Total())
}

func TestExtractorFunc(t *testing.T) {
	var ex Extractor = ExtractorFunc(func(_ context.Context, url string) (*Metadata, error) {
		return &Metadata{URL: url}, nil
	})

	md, err := ex.Extract(context.Background(), "https://example.com/")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/", md.URL)
}
