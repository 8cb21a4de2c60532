package ingest

import (
	"sort"

	"github.com/agentic-research/fextract/api"
)

// codeLanguages maps source extensions to language names.
var codeLanguages = map[string]string{
	".go":  "go",
	".py":  "python",
	".js":  "javascript",
	".ts":  "typescript",
	".tsx": "tsx",
	".rs":  "rust",
	".sql": "sql",
}

// CodeExtensions returns the source extensions the code handler accepts.
func CodeExtensions() []string {
	exts := make([]string, 0, len(codeLanguages))
	for ext := range codeLanguages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// NewCodeHandler reads source files and reports tree-sitter syntax errors.
// It is unavailable when built without cgo.
func NewCodeHandler(available bool) *FormatHandler {
	return newGatedHandler(api.FormatCode, CapCode, available && treeSitterAvailable, extractCode)
}
