package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/krisalay/recency-cache/types"
)

const defaultMaxBody = 2 << 20

// Options configures an HTTPExtractor. Zero values pick defaults, except
// Retries: zero disables retrying and a negative value keeps the client default.
type Options struct {
	Timeout   time.Duration
	Retries   int
	MaxBody   int64
	Logger    log.Interface
	Client    *http.Client
	WaitMin   time.Duration
	WaitMax   time.Duration
	UserAgent string
}

// HTTPExtractor fetches a page and parses its structured data.
type HTTPExtractor struct {
	client  *retryablehttp.Client
	maxBody int64
	agent   string
	logger  log.Interface
}

var _ types.Extractor = (*HTTPExtractor)(nil)

func NewHTTPExtractor(o Options) *HTTPExtractor {
	if o.Logger == nil {
		o.Logger = log.Log
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	if o.UserAgent == "" {
		o.UserAgent = "pageindex/1"
	}

	c := retryablehttp.NewClient()
	if o.Client != nil {
		c.HTTPClient = o.Client
	}
	if o.Timeout > 0 {
		c.HTTPClient.Timeout = o.Timeout
	}
	if o.Retries >= 0 {
		c.RetryMax = o.Retries
	}
	if o.WaitMin > 0 {
		c.RetryWaitMin = o.WaitMin
	}
	if o.WaitMax > 0 {
		c.RetryWaitMax = o.WaitMax
	}
	c.Logger = leveled{o.Logger}

	return &HTTPExtractor{
		client:  c,
		maxBody: o.MaxBody,
		agent:   o.UserAgent,
		logger:  o.Logger,
	}
}

// Extract returns nil metadata for non-HTML responses and pages without
// entities. Transport failures and non-2xx statuses are errors.
func (x *HTTPExtractor) Extract(ctx context.Context, url string) (*types.Metadata, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", x.agent)
	req.Header.Set("Accept", "text/html")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mt != "text/html" {
		x.logger.WithField("url", url).WithField("content_type", mt).Debug("not html, skipping")
		return nil, nil
	}

	md, err := ParseHTML(io.LimitReader(resp.Body, x.maxBody), url)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return md, nil
}

// leveled adapts an apex logger to retryablehttp.LeveledLogger.
type leveled struct {
	log.Interface
}

func (l leveled) entry(kv []interface{}) *log.Entry {
	f := log.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return l.WithFields(f)
}

func (l leveled) Error(msg string, kv ...interface{}) { l.entry(kv).Error(msg) }
func (l leveled) Info(msg string, kv ...interface{})  { l.entry(kv).Debug(msg) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.entry(kv).Debug(msg) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.entry(kv).Warn(msg) }
