package api

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// TextPayload is the content of a plain text file.
type TextPayload struct {
	Content string `json:"content"`
}

// CSVPayload holds a delimited file: the header row and one map per data row.
type CSVPayload struct {
	// Headers is nil for an empty file.
	Headers []string         `json:"headers"`
	Data    []map[string]any `json:"data"`
}

// JSONPayload is a parsed JSON document.
type JSONPayload struct {
	Content any `json:"content"`
}

// MarshalJSON writes every float64 of Content with a fraction or exponent,
// so a parser reading the output back gets floats where the source had them.
func (p JSONPayload) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Content any `json:"content"`
	}{floatLiterals(p.Content)})
}

// floatLiteral is the shortest form of f that still reads back as a float:
// integral values get ".0" and long fractions switch to exponent form.
func floatLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, "eE") {
		return s
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s + ".0"
	}
	if len(s)-dot-1 > 15 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return s
}

func floatLiterals(v any) any {
	switch tv := v.(type) {
	case float64:
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return tv
		}
		return json.Number(floatLiteral(tv))
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = floatLiterals(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = floatLiterals(e)
		}
		return out
	}
	return v
}

// XMLPayload maps the root tag to its converted children.
type XMLPayload struct {
	Content map[string]any `json:"content"`
}

// Link is one anchor of an HTML document.
type Link struct {
	Href *string `json:"href"`
	Text string  `json:"text"`
}

// HTMLPayload is the text view of an HTML document.
type HTMLPayload struct {
	Title *string `json:"title"`
	Text  string  `json:"text"`
	Links []Link  `json:"links"`
}

// ImagePayload describes a decoded image and its re-encoded bytes.
type ImagePayload struct {
	Format string `json:"format"`
	Mode   string `json:"mode"`
	// Size is [width, height].
	Size   [2]int `json:"size"`
	Base64 string `json:"base64"`
}

// PDFPayload is the text of a PDF, one page per line block.
type PDFPayload struct {
	Content  string `json:"content"`
	NumPages int    `json:"num_pages"`
}

// SpreadsheetPayload maps sheet names to row-major cell grids.
type SpreadsheetPayload struct {
	Sheets map[string][][]any `json:"sheets"`
}

// ArchivePayload lists archive members and the text of each regular file.
type ArchivePayload struct {
	FileList []string          `json:"file_list"`
	Content  map[string]string `json:"content"`
}

// YAMLPayload is a parsed YAML stream. Content is the document itself for
// single-document files and a list of documents otherwise.
type YAMLPayload struct {
	Content any `json:"content"`
}

// HCLPayload is a converted HCL body.
type HCLPayload struct {
	Content map[string]any `json:"content"`
}

// Table is one SQLite table dump.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// SQLitePayload maps table names to their contents.
type SQLitePayload struct {
	Tables map[string]Table `json:"tables"`
}

// SyntaxError locates an ERROR or MISSING node in a source file (1-based).
type SyntaxError struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// CodePayload is a source file with its syntax check.
type CodePayload struct {
	Language     string        `json:"language"`
	Content      string        `json:"content"`
	SyntaxErrors []SyntaxError `json:"syntax_errors"`
}

// EmailPayload is a parsed MIME message.
type EmailPayload struct {
	Subject     string   `json:"subject"`
	From        string   `json:"from"`
	To          []string `json:"to"`
	Cc          []string `json:"cc"`
	Date        string   `json:"date"`
	Text        string   `json:"text"`
	Attachments []string `json:"attachments"`
}

// Message is one entry of a mailbox.
type Message struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Date    string `json:"date"`
	Text    string `json:"text"`
}

// MboxPayload lists the messages of an mbox file.
type MboxPayload struct {
	Messages []Message `json:"messages"`
}
