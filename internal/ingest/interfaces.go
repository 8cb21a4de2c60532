package ingest

import "github.com/agentic-research/fextract/api"

// Handler turns one file into a Record. Extract never returns an error and
// never panics: I/O failures, malformed content and missing capabilities
// are all reported inside the Record.
type Handler interface {
	Extract(path string) api.Record
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(path string) api.Record

func (f HandlerFunc) Extract(path string) api.Record { return f(path) }

// Formatter is implemented by handlers that know their format tag before
// extracting anything. The registry uses it for listings and panic records.
type Formatter interface {
	Format() api.Format
}

// FormatHandler is the built-in Handler: a format tag, an optional
// capability gate and the function doing the actual decoding.
type FormatHandler struct {
	format  api.Format
	gate    error
	extract func(path string) (any, error)
}

func newFormatHandler(f api.Format, fn func(path string) (any, error)) *FormatHandler {
	return &FormatHandler{format: f, extract: fn}
}

// newGatedHandler builds a handler that fails every call with
// ErrCapabilityUnavailable when the capability is absent. The file is
// never opened in that case.
func newGatedHandler(f api.Format, c Capability, available bool, fn func(path string) (any, error)) *FormatHandler {
	h := newFormatHandler(f, fn)
	if !available {
		h.gate = unavailable(c)
	}
	return h
}

// Extract implements Handler.
func (h *FormatHandler) Extract(path string) api.Record {
	return contain(h.format, func() (any, error) {
		if h.gate != nil {
			return nil, h.gate
		}
		return h.extract(path)
	})
}

// Format implements Formatter.
func (h *FormatHandler) Format() api.Format { return h.format }

// Available reports whether the handler's capability gate is open.
func (h *FormatHandler) Available() bool { return h.gate == nil }
