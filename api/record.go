package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Format is the tag identifying which handler family produced a Record.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatText    Format = "text"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatXML     Format = "xml"
	FormatHTML    Format = "html"
	FormatImage   Format = "image"
	FormatPDF     Format = "pdf"
	FormatExcel   Format = "excel"
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatYAML    Format = "yaml"
	FormatHCL     Format = "hcl"
	FormatSQLite  Format = "sqlite"
	FormatCode    Format = "code"
	FormatEmail   Format = "email"
	FormatMbox    Format = "mbox"
)

// ErrorKind classifies why an extraction failed.
type ErrorKind string

const (
	KindIO                    ErrorKind = "io_error"
	KindParse                 ErrorKind = "parse_error"
	KindCapabilityUnavailable ErrorKind = "capability_unavailable"
	KindUnsupportedFormat     ErrorKind = "unsupported_format"
	KindStructural            ErrorKind = "structural_error"
)

// Failure is the error payload of a Record.
type Failure struct {
	Kind    ErrorKind
	Message string
}

// Record is the outcome of extracting one file.
// Exactly one of Payload and Failure is set.
type Record struct {
	// Type is the format tag, or "unknown" when no handler matched.
	Type Format
	// Payload holds format-specific fields (one of the *Payload structs below).
	Payload any
	// Failure is set when extraction did not succeed.
	Failure *Failure
}

// Success builds a Record carrying a payload.
func Success(f Format, payload any) Record {
	return Record{Type: f, Payload: payload}
}

// Fail builds a Record carrying an error.
func Fail(f Format, kind ErrorKind, msg string) Record {
	return Record{Type: f, Failure: &Failure{Kind: kind, Message: msg}}
}

// OK reports whether the record carries a payload.
func (r Record) OK() bool { return r.Failure == nil }

// Valid reports whether exactly one of payload and failure is populated.
func (r Record) Valid() bool {
	return (r.Payload == nil) != (r.Failure == nil)
}

// MarshalJSON flattens the record into one object: "type" plus either the
// payload fields or "error"/"error_kind". A payload that does not encode to
// an object is written under "content".
func (r Record) MarshalJSON() ([]byte, error) {
	fields := map[string]any{"type": r.Type}
	if r.Failure != nil {
		fields["error"] = r.Failure.Message
		fields["error_kind"] = r.Failure.Kind
		return marshalNoEscape(fields)
	}
	if r.Payload != nil {
		raw, err := marshalNoEscape(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", r.Type, err)
		}
		// Payloads that are not objects (from registered handlers) nest under "content".
		if len(raw) == 0 || raw[0] != '{' {
			fields["content"] = json.RawMessage(raw)
			return marshalNoEscape(fields)
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("payload for %s: %w", r.Type, err)
		}
		for k, v := range inner {
			if k == "type" {
				continue
			}
			fields[k] = v
		}
	}
	return marshalNoEscape(fields)
}

// marshalNoEscape is json.Marshal without HTML escaping; nested Marshaler
// output is compacted by the outer encoder but never unescaped, so every
// level has to skip it.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
