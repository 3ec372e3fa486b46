package engine

import (
	"context"

	"github.com/krisalay/recency-cache/report"
	"github.com/krisalay/recency-cache/shard"
	"github.com/krisalay/recency-cache/types"
)

/*
Pool spreads probes over several Engines, one per shard. Every key is
always routed to the same Engine, so each key still has exactly one
owner and one cache.

Capacity is split across shards and eviction order is per shard: with
more than one shard, the key evicted is the least recently used of its
shard, not of the whole pool.

The sink is shared by every shard loop and must be safe for concurrent
use. LogSink and Queued are.
*/
type Pool struct {
	engines  []*Engine
	selector shard.Selector
}

// NewPool starts shards engines. shards < 1 is treated as 1.
func NewPool(shards int, cfg Config, extractor types.Extractor, sink report.Sink, opts ...Option) *Pool {
	if shards < 1 {
		shards = 1
	}
	if cfg.Capacity > 0 && shards > 1 {
		cfg.Capacity = (cfg.Capacity + shards - 1) / shards
	}

	p := &Pool{
		engines:  make([]*Engine, shards),
		selector: shard.FNVSelector{},
	}
	for i := range p.engines {
		p.engines[i] = New(cfg, extractor, sink, opts...)
	}
	return p
}

func (p *Pool) engineFor(key string) *Engine {
	return p.engines[p.selector.Select(key, len(p.engines))]
}

// Probe routes the page to its shard's Engine.
func (p *Pool) Probe(ctx context.Context, page Page) (Outcome, error) {
	return p.engineFor(page.URL).Probe(ctx, page)
}

// Flush waits for every shard.
func (p *Pool) Flush(ctx context.Context) error {
	for _, e := range p.engines {
		if err := e.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close stops every shard.
func (p *Pool) Close() {
	for _, e := range p.engines {
		e.Close()
	}
}

// Shards returns the number of engines.
func (p *Pool) Shards() int { return len(p.engines) }
