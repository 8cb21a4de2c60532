//go:build !cgo

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-research/fextract/api"
)

func TestCodeHandler_WithoutCgo(t *testing.T) {
	caps, err := DetectCapabilities(nil)
	assert.NoError(t, err)
	assert.False(t, caps.Available(CapCode))

	path := writeFixture(t, t.TempDir(), "main.go", []byte("package main\n"))
	requireFailure(t, NewCodeHandler(true).Extract(path), api.FormatCode, api.KindCapabilityUnavailable)
}
