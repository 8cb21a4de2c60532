package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/agentic-research/fextract/api"
)

// extraKey collects values beyond the header width.
const extraKey = "_extra"

// NewCSVHandler reads delimited files. The first row names the fields of
// every following row.
func NewCSVHandler(delim rune) *FormatHandler {
	return newFormatHandler(api.FormatCSV, func(path string) (any, error) {
		return extractCSV(path, delim)
	})
}

func extractCSV(path string, delim rune) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1

	payload := &api.CSVPayload{Data: []map[string]any{}}
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return payload, nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	payload.Headers = header

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		payload.Data = append(payload.Data, rowToMap(header, row))
	}
	return payload, nil
}

// rowToMap pairs a row with the header. Missing trailing values are null;
// surplus values are kept in order under extraKey.
func rowToMap(header, row []string) map[string]any {
	m := make(map[string]any, len(header)+1)
	for i, name := range header {
		if i < len(row) {
			m[name] = row[i]
		} else {
			m[name] = nil
		}
	}
	if len(row) > len(header) {
		m[extraKey] = row[len(header):]
	}
	return m
}

func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return parseErrorf("%v", err)
	}
	return err
}
