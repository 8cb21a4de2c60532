package ingest

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/agentic-research/fextract/api"
)

// NewPDFHandler extracts the plain text of every page.
func NewPDFHandler(available bool) *FormatHandler {
	return newGatedHandler(api.FormatPDF, CapPDF, available, extractPDF)
}

func extractPDF(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, parseErrorf("%v", err)
	}

	n := r.NumPage()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		text, err := r.Page(i).GetPlainText(nil)
		if err != nil {
			return nil, parseErrorf("page %d: %v", i, err)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return &api.PDFPayload{Content: b.String(), NumPages: n}, nil
}
