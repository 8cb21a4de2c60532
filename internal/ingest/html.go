package ingest

import (
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"

	"github.com/agentic-research/fextract/api"
)

// NewHTMLHandler extracts the title, visible text and anchors of .html files.
func NewHTMLHandler(available bool) *FormatHandler {
	return newGatedHandler(api.FormatHTML, CapHTML, available, extractHTML)
}

func extractHTML(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, parseErrorf("%v", err)
	}

	payload := &api.HTMLPayload{Links: []api.Link{}}
	var text strings.Builder
	collectHTML(doc, payload, &text)
	payload.Text = text.String()
	return payload, nil
}

// collectHTML walks the tree in document order. Script, style and template
// contents are not visible text.
func collectHTML(n *html.Node, p *api.HTMLPayload, text *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		text.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template:
			return
		case atom.Title:
			if p.Title == nil {
				title := nodeText(n)
				p.Title = &title
			}
		case atom.A:
			p.Links = append(p.Links, api.Link{Href: attr(n, "href"), Text: nodeText(n)})
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHTML(c, p, text)
	}
}

// nodeText concatenates every descendant text node of n.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) *string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			v := a.Val
			return &v
		}
	}
	return nil
}
