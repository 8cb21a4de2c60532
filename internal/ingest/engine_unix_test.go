//go:build unix

package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestWalker_SkipsSpecialFiles(t *testing.T) {
	root := t.TempDir()
	fifo := filepath.Join(root, "pipe.txt")
	if err := unix.Mkfifo(fifo, 0o644); err != nil {
		t.Skipf("mkfifo unsupported: %v", err)
	}
	txt := writeFixture(t, root, "a.txt", []byte("a"))

	results, err := newTestWalker(t, false).Walk(root)
	require.NoError(t, err)
	assert.Equal(t, []string{txt}, keys(results))
}
