package ingest

import (
	"fmt"
	"io"
	"sort"
)

// Summary is an aggregate view of a ResultMap.
type Summary struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"by_type"`
	// Failed lists paths whose Record carries an error, sorted.
	Failed []string `json:"failed"`
}

// Summarize counts records per format tag and collects failed paths.
func Summarize(results ResultMap) Summary {
	s := Summary{Total: len(results), ByType: make(map[string]int), Failed: []string{}}
	for path, rec := range results {
		s.ByType[string(rec.Type)]++
		if !rec.OK() {
			s.Failed = append(s.Failed, path)
		}
	}
	sort.Strings(s.Failed)
	return s
}

// Write prints the summary in a human-readable layout, with the error
// message of each failed path taken from results.
func (s Summary) Write(w io.Writer, results ResultMap) error {
	if _, err := fmt.Fprintf(w, "Processed %d files:\n", s.Total); err != nil {
		return err
	}
	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		if _, err := fmt.Fprintf(w, "  - %s: %d\n", t, s.ByType[t]); err != nil {
			return err
		}
	}
	if len(s.Failed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nErrors encountered:"); err != nil {
		return err
	}
	for _, path := range s.Failed {
		msg := ""
		if rec, ok := results[path]; ok && rec.Failure != nil {
			msg = rec.Failure.Message
		}
		if _, err := fmt.Fprintf(w, "  - %s: %s\n", path, msg); err != nil {
			return err
		}
	}
	return nil
}
