package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/krisalay/recency-cache/config"
	"github.com/krisalay/recency-cache/engine"
	"github.com/krisalay/recency-cache/extract"
	"github.com/krisalay/recency-cache/report"
	"github.com/krisalay/recency-cache/types"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	var (
		title  string
		repeat int
		dedupe bool
	)

	cmd := &cobra.Command{
		Use:   "probe [url...]",
		Short: "Probe pages and report their structured data",
		Long: `Probe each URL through the recency cache. URLs come from the arguments,
or one per line from stdin when none are given. With --repeat the same
list is probed several times, so later passes are answered from the cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				var err error
				if urls, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if len(urls) == 0 {
				return fmt.Errorf("no urls given")
			}

			cfg := opts.cfg
			if cmd.Flags().Changed("dedupe") {
				cfg.Engine.DedupeInFlight = dedupe
			}
			return runProbe(cmd, cfg, urls, title, repeat)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title sent with light reports")
	cmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "number of passes over the url list")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "collapse concurrent extractions of the same url")
	return cmd
}

func runProbe(cmd *cobra.Command, cfg config.Config, urls []string, title string, repeat int) error {
	ctx := cmd.Context()

	ex := extract.NewHTTPExtractor(extract.Options{
		Timeout:   cfg.Fetch.Timeout,
		Retries:   cfg.Fetch.Retries,
		MaxBody:   cfg.Fetch.MaxBody,
		UserAgent: cfg.Fetch.UserAgent,
	})
	sink := report.NewQueued(report.NewLogSink(log.Log), cfg.Report.QueueSize, log.Log)
	counters := &types.Counters{}

	eng := engine.NewPool(cfg.Cache.Shards, engine.Config{
		Capacity:       cfg.Cache.Capacity,
		Window:         cfg.Cache.Window,
		Eviction:       cfg.EvictionPolicy(),
		DedupeInFlight: cfg.Engine.DedupeInFlight,
		Policy:         engine.NewSchemePolicy(cfg.Engine.Schemes...),
	}, ex, sink, engine.WithMetrics(counters))

	var runErr error
	for pass := 0; pass < repeat && runErr == nil; pass++ {
		for _, u := range urls {
			o, err := eng.Probe(ctx, engine.Page{URL: u, Title: title})
			if err != nil {
				runErr = err
				break
			}
			log.WithFields(log.Fields{"url": u, "outcome": o, "pass": pass + 1}).Debug("probed")
		}
		if runErr == nil {
			runErr = eng.Flush(ctx)
		}
	}

	eng.Close()
	sink.Close()

	printStats(cmd.OutOrStdout(), counters.Snapshot(), sink.Dropped())
	return runErr
}

func printStats(w io.Writer, s types.Snapshot, dropped int64) {
	fmt.Fprintln(w, "probes               :", humanize.Comma(s.Total()))
	fmt.Fprintln(w, "fresh_with_result    :", humanize.Comma(s.FreshWithResult))
	fmt.Fprintln(w, "fresh_without_result :", humanize.Comma(s.FreshWithoutResult))
	fmt.Fprintln(w, "miss                 :", humanize.Comma(s.Miss))
	fmt.Fprintln(w, "evictions            :", humanize.Comma(s.Eviction))
	fmt.Fprintln(w, "reports dropped      :", humanize.Comma(dropped))
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
