package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/krisalay/recency-cache/engine"
	"github.com/krisalay/recency-cache/report"
	"github.com/krisalay/recency-cache/types"
)

type benchOptions struct {
	keys       int
	goroutines int
	opsPerG    int
	extractLag time.Duration
}

func newBenchCmd(opts *rootOptions) *cobra.Command {
	b := benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive the engine with synthetic pages and print throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, opts, b)
		},
	}

	cmd.Flags().IntVar(&b.keys, "keys", 1000, "number of distinct urls")
	cmd.Flags().IntVar(&b.goroutines, "goroutines", 32, "concurrent probers")
	cmd.Flags().IntVar(&b.opsPerG, "ops", 5000, "probes per goroutine")
	cmd.Flags().DurationVar(&b.extractLag, "extract-lag", time.Millisecond, "simulated extraction latency")
	return cmd
}

// syntheticExtractor finds a result on even-numbered pages.
func syntheticExtractor(lag time.Duration) types.Extractor {
	return types.ExtractorFunc(func(ctx context.Context, url string) (*types.Metadata, error) {
		select {
		case <-time.After(lag):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		n, _ := strconv.Atoi(url[strings.LastIndexByte(url, '/')+1:])
		if n%2 != 0 {
			return nil, nil
		}
		return &types.Metadata{URL: url, Entities: []types.Entity{{Type: "WebPage"}}}, nil
	})
}

func runBench(cmd *cobra.Command, opts *rootOptions, b benchOptions) error {
	if b.keys <= 0 || b.goroutines <= 0 || b.opsPerG <= 0 {
		return fmt.Errorf("--keys, --goroutines and --ops must be positive")
	}

	ctx := cmd.Context()
	cfg := opts.cfg
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "CONFIG")
	fmt.Fprintln(out, "---------------------------------")
	fmt.Fprintln(out, "Capacity      :", cfg.Cache.Capacity)
	fmt.Fprintln(out, "Shards        :", cfg.Cache.Shards)
	fmt.Fprintln(out, "Eviction      :", cfg.EvictionPolicy())
	fmt.Fprintln(out, "Window        :", cfg.Cache.Window)
	fmt.Fprintln(out, "Keys          :", b.keys)
	fmt.Fprintln(out, "Goroutines    :", b.goroutines)
	fmt.Fprintln(out, "Ops/Goroutine :", b.opsPerG)
	fmt.Fprintln(out, "---------------------------------")

	counters := &types.Counters{}
	eng := engine.NewPool(cfg.Cache.Shards, engine.Config{
		Capacity:       cfg.Cache.Capacity,
		Window:         cfg.Cache.Window,
		Eviction:       cfg.EvictionPolicy(),
		DedupeInFlight: cfg.Engine.DedupeInFlight,
	}, syntheticExtractor(b.extractLag), report.Discard{}, engine.WithMetrics(counters))
	defer eng.Close()

	start := time.Now()

	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		runErr  error
	)
	wg.Add(b.goroutines)
	for i := 0; i < b.goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < b.opsPerG; j++ {
				url := fmt.Sprintf("https://bench.local/page/%d", (id*b.opsPerG+j)%b.keys)
				if _, err := eng.Probe(ctx, engine.Page{URL: url}); err != nil {
					errOnce.Do(func() { runErr = err })
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if runErr == nil {
		runErr = eng.Flush(ctx)
	}
	duration := time.Since(start)
	total := int64(b.goroutines * b.opsPerG)
	s := counters.Snapshot()

	fmt.Fprintln(out, "\n================ RESULTS =================")
	fmt.Fprintf(out, "Total Probes     : %s\n", humanize.Comma(total))
	fmt.Fprintf(out, "Total Time       : %v\n", duration)
	fmt.Fprintf(out, "Throughput       : %s probes/sec\n", humanize.Commaf(float64(total)/duration.Seconds()))
	fmt.Fprintf(out, "Hit Ratio        : %.2f%%\n", 100*float64(s.FreshWithResult+s.FreshWithoutResult)/float64(max(s.Total(), 1)))
	fmt.Fprintf(out, "Evictions        : %s\n", humanize.Comma(s.Eviction))
	fmt.Fprintln(out, "=========================================")

	log.WithField("duration", duration).Debug("bench finished")
	return runErr
}
