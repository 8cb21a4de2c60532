package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fextract/internal/ingest"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	caps, err := ingest.DetectCapabilities(nil)
	require.NoError(t, err)
	return NewServer(ingest.DefaultRegistry(caps), nil, "test")
}

func call(t *testing.T, s *Server, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	st := s.MCP().GetTool(tool)
	require.NotNil(t, st, "tool %s not registered", tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestExtractDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.json"), []byte(`{"k":1}`), 0o644))

	s := newTestServer(t)

	res := call(t, s, "extract_directory", map[string]any{"path": dir})
	require.False(t, res.IsError)
	var flat map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &flat))
	assert.Len(t, flat, 1)
	assert.Equal(t, "hello", flat[filepath.Join(dir, "a.txt")]["content"])

	res = call(t, s, "extract_directory", map[string]any{"path": dir, "recursive": true})
	var deep map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &deep))
	assert.Len(t, deep, 2)
	assert.Equal(t, "json", deep[filepath.Join(dir, "sub", "b.json")]["type"])
}

func TestExtractDirectory_Errors(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "extract_directory", map[string]any{})
	assert.True(t, res.IsError, "missing path")

	res = call(t, s, "extract_directory", map[string]any{"path": filepath.Join(t.TempDir(), "nope")})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not a valid directory")
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.xyz")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	s := newTestServer(t)
	res := call(t, s, "extract_file", map[string]any{"path": path})
	require.False(t, res.IsError)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rec))
	assert.Equal(t, "unknown", rec["type"])
	assert.Contains(t, rec["error"], "No handler for file extension: .xyz")

	res = call(t, s, "extract_file", map[string]any{"path": dir})
	assert.True(t, res.IsError)
}

func TestListFormats(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, "list_formats", nil)

	var formats map[string]string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &formats))
	assert.Equal(t, "text", formats[".txt"])
	assert.Equal(t, "tar", formats[".gz"])
	assert.Equal(t, "excel", formats[".xlsx"])
}

func TestServe_Stdio(t *testing.T) {
	s := newTestServer(t)
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, s.Serve(context.Background(), in, &out))

	var resp struct {
		ID     int `json:"id"`
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, 1, resp.ID)
	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"extract_directory", "extract_file", "list_formats"}, names)
}
