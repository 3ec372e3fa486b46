package report

import (
	"context"

	"github.com/krisalay/recency-cache/types"
)

/*
Sink is where the probe engine sends its two kinds of reports.

  - ReportLight is the cheap path: the page was seen recently and had a
    result last time, so only its identity is reported.
  - ReportFull carries the freshly extracted payload.

The engine calls a Sink from its owner goroutine, so a slow Sink slows
every probe. Wrap slow sinks with Queued.
*/
type Sink interface {
	ReportLight(ctx context.Context, key, title string) error
	ReportFull(ctx context.Context, md *types.Metadata) error
}

// Discard drops every report.
type Discard struct{}

func (Discard) ReportLight(context.Context, string, string) error { return nil }
func (Discard) ReportFull(context.Context, *types.Metadata) error { return nil }
