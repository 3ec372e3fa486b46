package report

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/apex/log"

	"github.com/krisalay/recency-cache/types"
)

// job is one pending report. Exactly one of md or title/key is meaningful,
// depending on full.
type job struct {
	ctx   context.Context
	full  bool
	key   string
	title string
	md    *types.Metadata
}

/*
Queued hands reports to a background worker so the engine's owner
goroutine never waits on the downstream Sink.

When the buffer is full the report is dropped and counted. Close stops
accepting reports and waits until everything already queued was delivered.
*/
type Queued struct {
	next   Sink
	ch     chan job
	wg     sync.WaitGroup
	logger log.Interface

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewQueued starts one worker delivering to next.
func NewQueued(next Sink, buffer int, logger log.Interface) *Queued {
	if buffer < 0 {
		buffer = 0
	}
	if logger == nil {
		logger = log.Log
	}
	q := &Queued{
		next:   next,
		ch:     make(chan job, buffer),
		logger: logger,
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *Queued) ReportLight(ctx context.Context, key, title string) error {
	q.enqueue(job{ctx: ctx, key: key, title: title})
	return nil
}

func (q *Queued) ReportFull(ctx context.Context, md *types.Metadata) error {
	q.enqueue(job{ctx: ctx, full: true, md: md})
	return nil
}

// Dropped returns how many reports were discarded because the queue was
// full or already closed.
func (q *Queued) Dropped() int64 {
	return q.dropped.Load()
}

func (q *Queued) enqueue(j job) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.ch <- j:
	default:
		q.dropped.Add(1)
	}
}

func (q *Queued) worker() {
	defer q.wg.Done()

	for j := range q.ch {
		var err error
		if j.full {
			err = q.next.ReportFull(j.ctx, j.md)
		} else {
			err = q.next.ReportLight(j.ctx, j.key, j.title)
		}
		if err != nil {
			q.logger.WithError(err).WithField("full", j.full).Warn("report delivery failed")
		}
	}
}

// Close is safe to call more than once.
func (q *Queued) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
}
