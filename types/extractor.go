package types

import "context"

/*
Metadata is the payload produced by the expensive extraction path.
A nil *Metadata means "no result": the extraction either failed or ran
and found nothing. Both are treated the same by the cache.
*/
type Metadata struct {
	URL      string
	Title    string
	Entities []Entity
}

// Entity is one structured-data object found on a page.
type Entity struct {
	Type string
	Name string
	URL  string

	// Raw holds the JSON text the entity was decoded from.
	Raw string
}

/*
Extractor is the contract between the probe engine and the expensive
computation it gates.

Extract is only called on a cache miss. It may take a long time and is
always called off the engine's owner goroutine.
*/
type Extractor interface {
	Extract(ctx context.Context, url string) (*Metadata, error)
}

// ExtractorFunc adapts a plain function to an Extractor.
type ExtractorFunc func(ctx context.Context, url string) (*Metadata, error)

func (f ExtractorFunc) Extract(ctx context.Context, url string) (*Metadata, error) {
	return f(ctx, url)
}
