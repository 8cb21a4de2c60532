package ingest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/agentic-research/fextract/api"
)

// Registry maps lower-cased file extensions to handlers.
//
// Register is not safe to call concurrently with Dispatch. Finish all
// registrations before handing the registry to a Walker.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// DefaultRegistry returns a registry populated with every built-in handler.
// Handlers whose capability is absent in caps are registered anyway and
// report capability_unavailable.
func DefaultRegistry(caps Capabilities) *Registry {
	r := NewRegistry()

	text := NewTextHandler()
	for _, ext := range []string{".txt", ".log", ".md"} {
		r.Register(ext, text)
	}
	r.Register(".csv", NewCSVHandler(','))
	r.Register(".tsv", NewCSVHandler('\t'))
	r.Register(".json", NewJSONHandler())
	r.Register(".xml", NewXMLHandler())

	html := NewHTMLHandler(caps.Available(CapHTML))
	r.Register(".html", html)
	r.Register(".htm", html)

	img := NewImageHandler(caps.Available(CapImage))
	for _, ext := range imageExtensions {
		r.Register(ext, img)
	}

	r.Register(".pdf", NewPDFHandler(caps.Available(CapPDF)))

	sheet := NewSpreadsheetHandler(caps.Available(CapSpreadsheet))
	for _, ext := range []string{".xlsx", ".xlsm", ".xls"} {
		r.Register(ext, sheet)
	}

	r.Register(".zip", NewZipHandler())
	tarball := NewTarHandler()
	for _, ext := range tarExtensions {
		r.Register(ext, tarball)
	}

	yml := NewYAMLHandler()
	r.Register(".yaml", yml)
	r.Register(".yml", yml)

	hcl := NewHCLHandler()
	r.Register(".hcl", hcl)
	r.Register(".tf", hcl)

	db := NewSQLiteHandler()
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		r.Register(ext, db)
	}

	code := NewCodeHandler(caps.Available(CapCode))
	for _, ext := range CodeExtensions() {
		r.Register(ext, code)
	}

	r.Register(".eml", NewEmailHandler())
	r.Register(".mbox", NewMboxHandler())
	return r
}

// NormalizeExt lower-cases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register binds ext to h. A later registration for the same extension
// replaces the earlier one.
func (r *Registry) Register(ext string, h Handler) {
	r.handlers[NormalizeExt(ext)] = h
}

// Lookup returns the handler bound to ext.
func (r *Registry) Lookup(ext string) (Handler, bool) {
	h, ok := r.handlers[NormalizeExt(ext)]
	return h, ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.handlers))
	for ext := range r.handlers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatOf returns the format tag of the handler bound to ext, or
// api.FormatUnknown when the handler does not advertise one.
func (r *Registry) FormatOf(ext string) api.Format {
	h, ok := r.Lookup(ext)
	if !ok {
		return api.FormatUnknown
	}
	if f, ok := h.(Formatter); ok {
		return f.Format()
	}
	return api.FormatUnknown
}

// Dispatch resolves the handler for path's extension and runs it.
// Unknown extensions yield an unsupported_format Record.
func (r *Registry) Dispatch(path string) (rec api.Record) {
	ext := strings.ToLower(filepath.Ext(path))
	h, ok := r.handlers[ext]
	if !ok {
		return api.Fail(api.FormatUnknown, api.KindUnsupportedFormat, r.unsupportedMessage(ext))
	}

	format := r.FormatOf(ext)
	// Built-in handlers contain their own panics; registered ones may not.
	defer func() {
		if p := recover(); p != nil {
			rec = api.Fail(format, api.KindParse, fmt.Sprintf("handler panic: %v", p))
		}
	}()

	rec = h.Extract(path)
	if rec.Type != "" {
		format = rec.Type
	}
	if !rec.Valid() {
		return api.Fail(format, api.KindParse, "handler returned an incomplete record")
	}
	// Built-in payloads always encode; registered ones are checked here so
	// one record cannot break the encoding of a whole ResultMap.
	if _, builtin := h.(*FormatHandler); !builtin && rec.OK() {
		if _, err := rec.MarshalJSON(); err != nil {
			return api.Fail(format, api.KindParse, fmt.Sprintf("unencodable payload: %v", err))
		}
	}
	return rec
}

func (r *Registry) unsupportedMessage(ext string) string {
	msg := "No handler for file extension: " + ext
	if hint := r.suggest(ext); hint != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", hint)
	}
	return msg
}

// suggest returns the first registered extension one edit away from ext.
func (r *Registry) suggest(ext string) string {
	if len(ext) < 2 {
		return ""
	}
	for _, candidate := range r.Extensions() {
		if levenshtein.Distance(ext, candidate, nil) == 1 {
			return candidate
		}
	}
	return ""
}
