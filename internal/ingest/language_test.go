//go:build cgo

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fextract/api"
)

func TestDetectLanguageFromExt(t *testing.T) {
	for _, ext := range CodeExtensions() {
		name, lang, ok := DetectLanguageFromExt(ext)
		assert.True(t, ok, ext)
		assert.NotNil(t, lang, ext)
		assert.Equal(t, codeLanguages[ext], name)
	}
	_, _, ok := DetectLanguageFromExt(".hcl")
	assert.False(t, ok)
}

func TestCodeHandler(t *testing.T) {
	dir := t.TempDir()
	h := NewCodeHandler(true)

	good := writeFixture(t, dir, "main.go", []byte("package main\n\nfunc main() {}\n"))
	p := payloadOf[*api.CodePayload](t, h.Extract(good))
	assert.Equal(t, "go", p.Language)
	assert.Equal(t, "package main\n\nfunc main() {}\n", p.Content)
	assert.Empty(t, p.SyntaxErrors)

	bad := writeFixture(t, dir, "broken.py", []byte("def ok():\n    return 1\n\ndef broken(:\n    pass\n"))
	p = payloadOf[*api.CodePayload](t, h.Extract(bad))
	assert.Equal(t, "python", p.Language)
	require.NotEmpty(t, p.SyntaxErrors)
	assert.GreaterOrEqual(t, p.SyntaxErrors[0].Line, 4, "errors are reported 1-based")
	assert.GreaterOrEqual(t, p.SyntaxErrors[0].Column, 1)

	requireFailure(t, NewCodeHandler(false).Extract(good), api.FormatCode, api.KindCapabilityUnavailable)
}
