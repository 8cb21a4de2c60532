package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/agentic-research/fextract/api"
)

// textKey holds the text of an element that also has children.
const textKey = "#text"

// NewXMLHandler converts .xml documents into nested maps.
func NewXMLHandler() *FormatHandler {
	return newFormatHandler(api.FormatXML, extractXML)
}

func extractXML(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	content, err := ConvertXML(f)
	if err != nil {
		return nil, err
	}
	return &api.XMLPayload{Content: content}, nil
}

type xmlFrame struct {
	name     string
	children map[string]any
	text     strings.Builder
	// Only text before the first child element counts as the element's text.
	sawChild bool
}

func (f *xmlFrame) add(name string, value any) {
	if f.children == nil {
		f.children = make(map[string]any)
	}
	coalesce(f.children, name, value)
}

func (f *xmlFrame) value() any {
	text := strings.TrimSpace(f.text.String())
	if f.children == nil {
		if text != "" {
			return text
		}
		return map[string]any{}
	}
	if text != "" {
		f.children[textKey] = text
	}
	return f.children
}

// ConvertXML decodes one XML document into {rootTag: value}. Leaf elements
// become their trimmed text (or an empty map), repeated sibling tags become
// lists and attributes are dropped. Namespaced tags render as {uri}local.
func ConvertXML(r io.Reader) (map[string]any, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack  []*xmlFrame
		result map[string]any
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, xmlError(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if result != nil {
				return nil, parseErrorf("junk after document element")
			}
			if len(stack) > 0 {
				stack[len(stack)-1].sawChild = true
			}
			stack = append(stack, &xmlFrame{name: qualifiedName(t.Name)})
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, parseErrorf("text outside the document element")
				}
				continue
			}
			if top := stack[len(stack)-1]; !top.sawChild {
				top.text.Write(t)
			}
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = map[string]any{top.name: top.value()}
			} else {
				stack[len(stack)-1].add(top.name, top.value())
			}
		}
	}

	if result == nil {
		return nil, parseErrorf("no element found")
	}
	return result, nil
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

func xmlError(err error) error {
	var serr *xml.SyntaxError
	if errors.As(err, &serr) {
		return parseErrorf("%v", err)
	}
	return err
}
