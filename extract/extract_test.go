package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `<!doctype html>
<html><head>
<title> Tomato Soup </title>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Recipe","name":"Tomato Soup","url":"https://example.com/soup"}
</script>
<script type="application/ld+json; charset=utf-8">
[{"@type":["Person","Author"],"name":"Ann"},{"name":"no type"}]
</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[{"@type":"WebPage","name":"Soup page"},{"@type":"BreadcrumbList"}]}
</script>
<script type="application/ld+json">{not json</script>
<script>var x = {"@type":"Ignored"};</script>
</head><body><title>second title ignored</title></body></html>`

func quietLogger() log.Interface {
	return &log.Logger{Handler: discard.New(), Level: log.DebugLevel}
}

//
// ================= PARSING =================
//

func TestParseHTMLCollectsEntities(t *testing.T) {
	md, err := ParseHTML(strings.NewReader(recipePage), "https://example.com/soup")
	require.NoError(t, err)
	require.NotNil(t, md)

	assert.Equal(t, "https://example.com/soup", md.URL)
	assert.Equal(t, "Tomato Soup", md.Title)

	var kinds []string
	for _, e := range md.Entities {
		kinds = append(kinds, e.Type)
	}
	assert.Equal(t, []string{"Recipe", "Person", "WebPage", "BreadcrumbList"}, kinds)
	assert.Equal(t, "Tomato Soup", md.Entities[0].Name)
	assert.Equal(t, "https://example.com/soup", md.Entities[0].URL)
	assert.Equal(t, "Ann", md.Entities[1].Name)
	assert.Contains(t, md.Entities[2].Raw, `"WebPage"`)
}

func TestParseHTMLWithoutEntitiesIsNoResult(t *testing.T) {
	page := `<html><head><title>Plain</title></head><body><p>hi</p></body></html>`

	md, err := ParseHTML(strings.NewReader(page), "https://example.com/")
	require.NoError(t, err)
	assert.Nil(t, md)
}

//
// ================= HTTP =================
//

func newExtractor(retries int) *HTTPExtractor {
	return NewHTTPExtractor(Options{
		Timeout: 2 * time.Second,
		Retries: retries,
		WaitMin: time.Millisecond,
		WaitMax: 2 * time.Millisecond,
		Logger:  quietLogger(),
	})
}

func TestHTTPExtractorFetchesAndParses(t *testing.T) {
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, recipePage)
	}))
	defer srv.Close()

	md, err := newExtractor(0).Extract(context.Background(), srv.URL+"/soup")
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, srv.URL+"/soup", md.URL)
	assert.Len(t, md.Entities, 4)
	assert.Equal(t, "pageindex/1", agent.Load())
}

func TestHTTPExtractorSkipsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"@type":"Recipe"}`)
	}))
	defer srv.Close()

	md, err := newExtractor(0).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Nil(t, md)
}

func TestHTTPExtractorNotFoundIsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	md, err := newExtractor(0).Extract(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Nil(t, md)
}

func TestHTTPExtractorRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, recipePage)
	}))
	defer srv.Close()

	md, err := newExtractor(2).Extract(context.Background(), srv.URL)
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPExtractorHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newExtractor(0).Extract(ctx, srv.URL)
	assert.Error(t, err)
}
