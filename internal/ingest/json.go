package ingest

import (
	"bytes"
	"os"

	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/fextract/api"
)

// NewJSONHandler parses .json files into generic values.
func NewJSONHandler() *FormatHandler {
	return newFormatHandler(api.FormatJSON, extractJSON)
}

func extractJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, parseErrorf("expecting value at 1:1")
	}
	// oj reports the failing line and column in its error text.
	v, err := oj.Parse(data)
	if err != nil {
		return nil, parseErrorf("%v", err)
	}
	return &api.JSONPayload{Content: v}, nil
}
