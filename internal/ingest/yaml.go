package ingest

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/fextract/api"
)

// NewYAMLHandler parses YAML streams. A single document is returned as is,
// multi-document streams as a list.
func NewYAMLHandler() *FormatHandler {
	return newFormatHandler(api.FormatYAML, extractYAML)
}

func extractYAML(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	var docs []any
	dec := yaml.NewDecoder(f)
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseUnlessIO("yaml", err)
		}
		docs = append(docs, jsonSafe(doc))
	}

	payload := &api.YAMLPayload{}
	switch len(docs) {
	case 0:
	case 1:
		payload.Content = docs[0]
	default:
		payload.Content = docs
	}
	return payload, nil
}
