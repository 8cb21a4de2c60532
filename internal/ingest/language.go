//go:build cgo

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/agentic-research/fextract/api"
)

const treeSitterAvailable = true

// DetectLanguageFromExt returns the language name and tree-sitter Language
// for a given file extension. Returns ok=false for unsupported extensions.
func DetectLanguageFromExt(ext string) (langName string, lang *sitter.Language, ok bool) {
	langName, ok = codeLanguages[ext]
	if !ok {
		return "", nil, false
	}
	switch ext {
	case ".go":
		lang = golang.GetLanguage()
	case ".py":
		lang = python.GetLanguage()
	case ".js":
		lang = javascript.GetLanguage()
	case ".ts":
		lang = typescript.GetLanguage()
	case ".tsx":
		lang = tsx.GetLanguage()
	case ".rs":
		lang = rust.GetLanguage()
	case ".sql":
		lang = sql.GetLanguage()
	default:
		return "", nil, false
	}
	return langName, lang, true
}

func extractCode(path string) (any, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name, lang, ok := DetectLanguageFromExt(ext)
	if !ok {
		return nil, parseErrorf("no grammar for %s", ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, parseErrorf("%s is not valid UTF-8 source", filepath.Base(path))
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, parseErrorf("tree-sitter parse failed: %v", err)
	}

	errs := []api.SyntaxError{}
	if root := tree.RootNode(); root != nil && root.HasError() {
		collectSyntaxErrors(root, &errs)
	}
	return &api.CodePayload{Language: name, Content: string(content), SyntaxErrors: errs}, nil
}

// collectSyntaxErrors gathers ERROR and MISSING nodes, 1-based.
func collectSyntaxErrors(node *sitter.Node, errs *[]api.SyntaxError) {
	if node.IsError() || node.IsMissing() {
		p := node.StartPoint()
		*errs = append(*errs, api.SyntaxError{Line: int(p.Row) + 1, Column: int(p.Column) + 1})
		return // don't recurse into error children
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			collectSyntaxErrors(child, errs)
		}
	}
}
