package extract

import (
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/krisalay/recency-cache/types"
)

const jsonLDType = "application/ld+json"

/*
ParseHTML reads an HTML document and collects its structured data.

It returns the page title and every schema.org entity found in
<script type="application/ld+json"> blocks. Top-level arrays and @graph
containers are flattened. Blocks that are not valid JSON are skipped.

A page without entities yields nil metadata: there is nothing worth a full
report, even if the page has a title.
*/
func ParseHTML(r io.Reader, pageURL string) (*types.Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	md := &types.Metadata{URL: pageURL}
	walk(doc, md)

	if len(md.Entities) == 0 {
		return nil, nil
	}
	return md, nil
}

func walk(n *html.Node, md *types.Metadata) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Title:
			if md.Title == "" {
				md.Title = strings.TrimSpace(textOf(n))
			}
			return
		case atom.Script:
			if isJSONLD(n) {
				md.Entities = append(md.Entities, decodeJSONLD(textOf(n))...)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, md)
	}
}

func isJSONLD(n *html.Node) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "type") {
			mt, _, _ := strings.Cut(a.Val, ";")
			return strings.EqualFold(strings.TrimSpace(mt), jsonLDType)
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func decodeJSONLD(text string) []types.Entity {
	text = strings.TrimSpace(text)
	if !gjson.Valid(text) {
		return nil
	}
	var out []types.Entity
	collect(gjson.Parse(text), &out)
	return out
}

func collect(v gjson.Result, out *[]types.Entity) {
	switch {
	case v.IsArray():
		v.ForEach(func(_, item gjson.Result) bool {
			collect(item, out)
			return true
		})
	case v.IsObject():
		if g := member(v, "@graph"); g.Exists() {
			collect(g, out)
			return
		}
		if e, ok := entityOf(v); ok {
			*out = append(*out, e)
		}
	}
}

func entityOf(v gjson.Result) (types.Entity, bool) {
	t := member(v, "@type")
	if t.IsArray() {
		t = t.Get("0")
	}
	if t.String() == "" {
		return types.Entity{}, false
	}
	return types.Entity{
		Type: t.String(),
		Name: member(v, "name").String(),
		URL:  member(v, "url").String(),
		Raw:  v.Raw,
	}, true
}

// member looks up a key by exact name. Keys such as "@type" cannot go
// through gjson paths because a leading '@' selects a modifier.
func member(obj gjson.Result, name string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, val gjson.Result) bool {
		if k.String() == name {
			found = val
			return false
		}
		return true
	})
	return found
}
