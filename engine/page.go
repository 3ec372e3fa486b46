package engine

import (
	"net/url"
	"strings"
)

// Page is one visit the engine is asked to classify.
type Page struct {
	// URL is the cache key.
	URL string

	// Title is sent with light reports.
	Title string

	// Private pages (incognito tabs) are never extracted or reported.
	Private bool
}

// Outcome is the classification of a single probe.
type Outcome int

const (
	// Skipped means the page was rejected before the cache was consulted.
	Skipped Outcome = iota

	// FreshWithResult means a light report was sent.
	FreshWithResult

	// FreshWithoutResult means nothing was sent.
	FreshWithoutResult

	// Miss means an extraction was dispatched.
	Miss
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case FreshWithResult:
		return "fresh_with_result"
	case FreshWithoutResult:
		return "fresh_without_result"
	case Miss:
		return "miss"
	default:
		return "unknown"
	}
}

// Policy decides whether a page may be extracted at all.
type Policy interface {
	Allow(Page) bool
}

// PolicyFunc adapts a function to a Policy.
type PolicyFunc func(Page) bool

func (f PolicyFunc) Allow(p Page) bool { return f(p) }

// SchemePolicy allows non-private pages whose URL scheme is in the set.
type SchemePolicy struct {
	schemes map[string]struct{}
}

// NewSchemePolicy defaults to http and https when no scheme is given.
func NewSchemePolicy(schemes ...string) SchemePolicy {
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}
	s := SchemePolicy{schemes: make(map[string]struct{}, len(schemes))}
	for _, sc := range schemes {
		s.schemes[strings.ToLower(sc)] = struct{}{}
	}
	return s
}

func (s SchemePolicy) Allow(p Page) bool {
	if p.Private || p.URL == "" {
		return false
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return false
	}
	_, ok := s.schemes[strings.ToLower(u.Scheme)]
	return ok
}
