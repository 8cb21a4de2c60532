package ingest

import (
	"fmt"

	"github.com/agentic-research/fextract/api"
)

// contain runs one extraction and turns any error or decoder panic into a
// failure Record. Handlers never let either escape Extract.
func contain(f api.Format, fn func() (any, error)) (rec api.Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = api.Fail(f, api.KindParse, fmt.Sprintf("%s decoder panic: %v", f, r))
		}
	}()

	payload, err := fn()
	if err != nil {
		return api.Fail(f, Classify(err), err.Error())
	}
	if payload == nil {
		return api.Fail(f, api.KindParse, "no content extracted")
	}
	return api.Success(f, payload)
}
