package ingest

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/agentic-research/fextract/api"
)

// NewTextHandler reads .txt, .log and .md files as UTF-8.
func NewTextHandler() *FormatHandler {
	return newFormatHandler(api.FormatText, extractText)
}

func extractText(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, parseErrorf("%s is not valid UTF-8 text", filepath.Base(path))
	}
	return &api.TextPayload{Content: string(data)}, nil
}
