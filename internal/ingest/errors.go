package ingest

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/agentic-research/fextract/api"
)

var (
	// ErrParse marks content that is malformed for its detected format.
	ErrParse = errors.New("parse error")
	// ErrCapabilityUnavailable marks an optional decoder that is not present.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrUnsupportedFormat marks an extension with no registered handler.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotDirectory is the walker precondition failure.
	ErrNotDirectory = errors.New("not a valid directory")
)

// StructuralError is the only failure that escapes the walker.
type StructuralError struct {
	Path string
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Classify maps an extraction error to the record error taxonomy.
// Errors that carry no recognizable marker are treated as parse failures:
// by the time a handler sees them the bytes were readable.
func Classify(err error) api.ErrorKind {
	var structural *StructuralError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCapabilityUnavailable):
		return api.KindCapabilityUnavailable
	case errors.Is(err, ErrUnsupportedFormat):
		return api.KindUnsupportedFormat
	case errors.As(err, &structural), errors.Is(err, ErrNotDirectory):
		return api.KindStructural
	case errors.Is(err, ErrParse):
		return api.KindParse
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return api.KindIO
	}
	return api.KindParse
}

// parseErrorf wraps a format-level failure so Classify reports it as a parse error.
func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrParse}, args...)...)
}

// parseUnlessIO reports err as a parse failure of what, unless it is an I/O
// failure that should keep its own kind.
func parseUnlessIO(what string, err error) error {
	if Classify(err) == api.KindIO {
		return err
	}
	return parseErrorf("%s: %v", what, err)
}
