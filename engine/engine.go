package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	cache "github.com/krisalay/recency-cache"
	"github.com/krisalay/recency-cache/eviction"
	"github.com/krisalay/recency-cache/report"
	"github.com/krisalay/recency-cache/types"
)

// ErrClosed is returned by Probe and Flush after Close.
var ErrClosed = errors.New("engine closed")

// Config holds the engine's tunables. Zero values pick defaults.
type Config struct {
	Capacity int
	Window   time.Duration
	Eviction eviction.PolicyType

	// DedupeInFlight collapses concurrent extractions of the same key into
	// one call. Each probe still records and reports on its own.
	DedupeInFlight bool

	// Policy gates extraction. Defaults to http/https, non-private pages.
	Policy Policy
}

// DefaultWindow is how long an observation short-circuits extraction.
const DefaultWindow = time.Hour

/*
Engine runs the probe decision for a stream of page visits.

It owns one RecencyCache on a single event loop goroutine; the cache is
never touched anywhere else. For each probe the loop either answers from
the cache or dispatches the extraction to its own goroutine. The result
comes back to the loop as a message, and only then is the key recorded
and a full report sent.

After Close the loop is gone: completions that arrive later are dropped
and their extraction contexts are already cancelled.
*/
type Engine struct {
	cache     *cache.RecencyCache
	window    time.Duration
	dedupe    bool
	policy    Policy
	extractor types.Extractor
	sink      report.Sink
	metrics   types.Metrics
	logger    log.Interface
	now       func() time.Time

	probes      chan probeReq
	completions chan completion
	flushes     chan chan struct{}
	quit        chan struct{}
	done        chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	workers   sync.WaitGroup
	flight    singleflight.Group

	// owned by the loop
	pending int
	waiters []chan struct{}

	// beforeExtract runs in the worker goroutine just before extraction.
	beforeExtract func(key string)
}

type probeReq struct {
	page  Page
	reply chan Outcome
}

type completion struct {
	key string
	md  *types.Metadata
	err error
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics sets the telemetry sink for classification buckets and evictions.
func WithMetrics(m types.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger. Defaults to the apex package logger.
func WithLogger(l log.Interface) Option {
	return func(e *Engine) { e.logger = l }
}

// New builds an Engine and starts its loop. Call Close to stop it.
func New(cfg Config, extractor types.Extractor, sink report.Sink, opts ...Option) *Engine {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Eviction == "" {
		cfg.Eviction = eviction.LRU
	}
	if cfg.Policy == nil {
		cfg.Policy = NewSchemePolicy()
	}
	if sink == nil {
		sink = report.Discard{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		window:      cfg.Window,
		dedupe:      cfg.DedupeInFlight,
		policy:      cfg.Policy,
		extractor:   extractor,
		sink:        sink,
		metrics:     types.NoopMetrics{},
		logger:      log.Log,
		now:         time.Now,
		probes:      make(chan probeReq),
		completions: make(chan completion),
		flushes:     make(chan chan struct{}),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = types.NoopMetrics{}
	}
	if e.logger == nil {
		e.logger = log.Log
	}
	e.cache = cache.NewRecencyCache(cfg.Capacity, cfg.Eviction, e.metrics)

	go e.run()
	return e
}

/*
Probe classifies one page visit and returns without waiting for any
extraction it starts.

- Skipped: empty URL, private page or a policy rejection. Not counted.
- FreshWithResult: seen within the window with a result; light report sent.
- FreshWithoutResult: seen within the window without a result.
- Miss: extraction dispatched; recorded and reported when it completes.
*/
func (e *Engine) Probe(ctx context.Context, p Page) (Outcome, error) {
	select {
	case <-e.quit:
		return Skipped, ErrClosed
	default:
	}
	if p.URL == "" || !e.policy.Allow(p) {
		return Skipped, nil
	}

	req := probeReq{page: p, reply: make(chan Outcome, 1)}
	select {
	case e.probes <- req:
	case <-e.quit:
		return Skipped, ErrClosed
	case <-ctx.Done():
		return Skipped, ctx.Err()
	}

	// the loop always answers a request it accepted
	select {
	case o := <-req.reply:
		return o, nil
	case <-ctx.Done():
		return Skipped, ctx.Err()
	}
}

// Flush waits until every extraction dispatched so far has been recorded.
func (e *Engine) Flush(ctx context.Context) error {
	w := make(chan struct{})
	select {
	case e.flushes <- w:
	case <-e.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-w:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-e.quit:
		return ErrClosed
	default:
		return nil
	}
}

// Close stops the loop, cancels in-flight extractions and waits for their
// goroutines to exit. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.cancel()
		close(e.quit)
	})
	<-e.done
	e.workers.Wait()
}

func (e *Engine) run() {
	defer close(e.done)

	for {
		select {
		case req := <-e.probes:
			req.reply <- e.classify(req.page)
		case c := <-e.completions:
			e.complete(c)
		case w := <-e.flushes:
			if e.pending == 0 {
				close(w)
			} else {
				e.waiters = append(e.waiters, w)
			}
		case <-e.quit:
			e.releaseWaiters()
			return
		}
	}
}

func (e *Engine) classify(p Page) Outcome {
	key := p.URL

	if e.cache.WasSeenRecently(key, e.now(), e.window) {
		if e.cache.HadResultLastTime(key) {
			e.metrics.FreshWithResult()
			if err := e.sink.ReportLight(e.ctx, key, p.Title); err != nil {
				e.logger.WithError(err).WithField("url", key).Warn("light report failed")
			}
			return FreshWithResult
		}
		e.metrics.FreshWithoutResult()
		return FreshWithoutResult
	}

	e.metrics.Miss()
	e.dispatch(key)
	return Miss
}

func (e *Engine) dispatch(key string) {
	e.pending++
	e.workers.Add(1)

	go func() {
		defer e.workers.Done()

		if e.beforeExtract != nil {
			e.beforeExtract(key)
		}
		md, err := e.extract(key)

		select {
		case e.completions <- completion{key: key, md: md, err: err}:
		case <-e.quit:
		}
	}()
}

func (e *Engine) extract(key string) (*types.Metadata, error) {
	if !e.dedupe {
		return e.extractor.Extract(e.ctx, key)
	}
	v, err, _ := e.flight.Do(key, func() (any, error) {
		return e.extractor.Extract(e.ctx, key)
	})
	md, _ := v.(*types.Metadata)
	return md, err
}

func (e *Engine) complete(c completion) {
	e.pending--

	found := c.err == nil && c.md != nil
	if c.err != nil {
		e.logger.WithError(c.err).WithField("url", c.key).Warn("extraction failed")
	}
	e.cache.Record(c.key, e.now(), found)

	if found {
		if err := e.sink.ReportFull(e.ctx, c.md); err != nil {
			e.logger.WithError(err).WithField("url", c.key).Warn("full report failed")
		}
	} else {
		e.logger.WithField("url", c.key).Debug("no result")
	}

	if e.pending == 0 {
		e.releaseWaiters()
	}
}

func (e *Engine) releaseWaiters() {
	for _, w := range e.waiters {
		close(w)
	}
	e.waiters = nil
}
