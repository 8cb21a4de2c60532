package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fextract/api"
)

// writeFixture creates dir/name (and any parent directories) with data.
func writeFixture(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// payloadOf asserts rec succeeded with a payload of type T.
func payloadOf[T any](t *testing.T, rec api.Record) T {
	t.Helper()
	require.Nil(t, rec.Failure, "unexpected failure: %+v", rec.Failure)
	p, ok := rec.Payload.(T)
	require.True(t, ok, "unexpected payload type %T", rec.Payload)
	return p
}

// requireFailure asserts rec failed with the given tag and kind.
func requireFailure(t *testing.T, rec api.Record, format api.Format, kind api.ErrorKind) {
	t.Helper()
	require.NotNil(t, rec.Failure, "expected failure, got payload %+v", rec.Payload)
	assert.Nil(t, rec.Payload)
	assert.Equal(t, format, rec.Type)
	assert.Equal(t, kind, rec.Failure.Kind, "message: %s", rec.Failure.Message)
	assert.NotEmpty(t, rec.Failure.Message)
}
