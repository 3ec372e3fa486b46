package report

import (
	"context"

	"github.com/apex/log"

	"github.com/krisalay/recency-cache/types"
)

// LogSink writes every report as a structured log entry.
type LogSink struct {
	logger log.Interface
}

// NewLogSink logs through logger, or the apex default logger when nil.
func NewLogSink(logger log.Interface) *LogSink {
	if logger == nil {
		logger = log.Log
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) ReportLight(_ context.Context, key, title string) error {
	s.logger.WithFields(log.Fields{
		"report": "light",
		"url":    key,
		"title":  title,
	}).Info("page view")
	return nil
}

func (s *LogSink) ReportFull(_ context.Context, md *types.Metadata) error {
	if md == nil {
		return nil
	}
	kinds := make([]string, 0, len(md.Entities))
	for _, e := range md.Entities {
		kinds = append(kinds, e.Type)
	}
	s.logger.WithFields(log.Fields{
		"report":   "full",
		"url":      md.URL,
		"title":    md.Title,
		"entities": len(md.Entities),
		"types":    kinds,
	}).Info("page entity")
	return nil
}
