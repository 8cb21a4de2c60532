package ingest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/fextract/api"
)

func allCapabilities(t *testing.T) Capabilities {
	t.Helper()
	caps, err := DetectCapabilities(nil)
	require.NoError(t, err)
	return caps
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, ".json", NormalizeExt("JSON"))
	assert.Equal(t, ".json", NormalizeExt(".Json"))
	assert.Equal(t, ".tar", NormalizeExt(" tar "))
	assert.Equal(t, "", NormalizeExt(""))
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	r := NewRegistry()
	first := HandlerFunc(func(string) api.Record { return api.Success(api.FormatText, &api.TextPayload{Content: "first"}) })
	second := HandlerFunc(func(string) api.Record { return api.Success(api.FormatText, &api.TextPayload{Content: "second"}) })

	r.Register("TXT", first)
	r.Register(".txt", second)

	assert.Equal(t, []string{".txt"}, r.Extensions())
	rec := r.Dispatch("/tmp/notes.TXT")
	p := payloadOf[*api.TextPayload](t, rec)
	assert.Equal(t, "second", p.Content, "last registration wins")
}

func TestRegistry_DispatchUnknownExtension(t *testing.T) {
	r := DefaultRegistry(allCapabilities(t))

	rec := r.Dispatch("/data/notes.xyz")
	requireFailure(t, rec, api.FormatUnknown, api.KindUnsupportedFormat)
	assert.True(t, strings.HasPrefix(rec.Failure.Message, "No handler for file extension: .xyz"), rec.Failure.Message)

	// No extension at all
	rec = r.Dispatch("/data/Makefile")
	requireFailure(t, rec, api.FormatUnknown, api.KindUnsupportedFormat)
	assert.Equal(t, "No handler for file extension: ", rec.Failure.Message)
}

func TestRegistry_SuggestsNearExtension(t *testing.T) {
	r := NewRegistry()
	r.Register(".json", NewJSONHandler())
	r.Register(".csv", NewCSVHandler(','))

	rec := r.Dispatch("data.jsn")
	requireFailure(t, rec, api.FormatUnknown, api.KindUnsupportedFormat)
	assert.Equal(t, "No handler for file extension: .jsn (did you mean .json?)", rec.Failure.Message)

	rec = r.Dispatch("data.parquet")
	assert.Equal(t, "No handler for file extension: .parquet", rec.Failure.Message)
}

func TestRegistry_ContainsHandlerPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(".bad", HandlerFunc(func(string) api.Record { panic("handler bug") }))
	r.Register(".empty", HandlerFunc(func(string) api.Record { return api.Record{Type: api.FormatText} }))

	rec := r.Dispatch("x.bad")
	requireFailure(t, rec, api.FormatUnknown, api.KindParse)
	assert.Contains(t, rec.Failure.Message, "handler bug")

	rec = r.Dispatch("x.empty")
	requireFailure(t, rec, api.FormatText, api.KindParse)
}

func TestRegistry_ContainsUnencodablePayloads(t *testing.T) {
	root := t.TempDir()
	good := writeFixture(t, root, "good.txt", []byte("fine"))
	note := writeFixture(t, root, "x.note", []byte("n"))
	broken := writeFixture(t, root, "y.broken", []byte("b"))

	r := DefaultRegistry(allCapabilities(t))
	r.Register(".note", HandlerFunc(func(string) api.Record {
		return api.Success("note", "text")
	}))
	r.Register(".broken", HandlerFunc(func(string) api.Record {
		return api.Success("broken", map[string]any{"ch": make(chan int)})
	}))

	results, err := NewWalker(r, nil).Walk(root)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[note].OK(), "non-object payloads are kept")
	requireFailure(t, results[broken], api.Format("broken"), api.KindParse)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(results))
	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "fine", decoded[good]["content"])
	assert.Equal(t, map[string]any{"type": "note", "content": "text"}, decoded[note])
	assert.Equal(t, "parse_error", decoded[broken]["error_kind"])
}

func TestDefaultRegistry_Coverage(t *testing.T) {
	r := DefaultRegistry(allCapabilities(t))

	want := map[string]api.Format{
		".txt": api.FormatText, ".log": api.FormatText, ".md": api.FormatText,
		".csv": api.FormatCSV, ".tsv": api.FormatCSV,
		".json": api.FormatJSON, ".xml": api.FormatXML,
		".html": api.FormatHTML, ".htm": api.FormatHTML,
		".jpg": api.FormatImage, ".jpeg": api.FormatImage, ".png": api.FormatImage,
		".gif": api.FormatImage, ".bmp": api.FormatImage, ".tif": api.FormatImage,
		".tiff": api.FormatImage, ".webp": api.FormatImage,
		".pdf":  api.FormatPDF,
		".xlsx": api.FormatExcel, ".xlsm": api.FormatExcel, ".xls": api.FormatExcel,
		".zip": api.FormatZip,
		".tar": api.FormatTar, ".gz": api.FormatTar, ".tgz": api.FormatTar,
		".zst": api.FormatTar, ".tzst": api.FormatTar, ".bz2": api.FormatTar,
		".tbz2": api.FormatTar, ".xz": api.FormatTar, ".txz": api.FormatTar,
		".yaml": api.FormatYAML, ".yml": api.FormatYAML,
		".hcl": api.FormatHCL, ".tf": api.FormatHCL,
		".db": api.FormatSQLite, ".sqlite": api.FormatSQLite, ".sqlite3": api.FormatSQLite,
		".go": api.FormatCode, ".py": api.FormatCode, ".js": api.FormatCode,
		".ts": api.FormatCode, ".tsx": api.FormatCode, ".rs": api.FormatCode, ".sql": api.FormatCode,
		".eml":  api.FormatEmail,
		".mbox": api.FormatMbox,
	}
	assert.Len(t, r.Extensions(), len(want))
	for ext, format := range want {
		assert.Equal(t, format, r.FormatOf(ext), ext)
	}
}

// Every supported extension yields a record tagged with its family, even
// for content the handler cannot decode.
func TestDefaultRegistry_EveryExtensionTagsItsRecord(t *testing.T) {
	r := DefaultRegistry(allCapabilities(t))
	dir := t.TempDir()

	for _, ext := range r.Extensions() {
		path := writeFixture(t, dir, "sample"+ext, []byte("not really \xff"+ext))
		rec := r.Dispatch(path)
		assert.True(t, rec.Valid(), ext)
		assert.Equal(t, r.FormatOf(ext), rec.Type, ext)
	}
}
