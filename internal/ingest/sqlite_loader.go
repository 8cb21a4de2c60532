package ingest

import (
	"database/sql"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/fextract/api"
)

// NewSQLiteHandler dumps every user table of a SQLite database.
func NewSQLiteHandler() *FormatHandler {
	return newFormatHandler(api.FormatSQLite, extractSQLite)
}

func extractSQLite(path string) (any, error) {
	// The driver reports a missing file as a generic open failure.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	names, err := tableNames(db)
	if err != nil {
		return nil, parseErrorf("list tables: %v", err)
	}

	tables := make(map[string]api.Table, len(names))
	for _, name := range names {
		t, err := dumpTable(db, name)
		if err != nil {
			return nil, parseErrorf("table %s: %v", name, err)
		}
		tables[name] = t
	}
	return &api.SQLitePayload{Tables: tables}, nil
}

// sqliteDSN builds a read-only URI filename. The path is made absolute and
// percent-encoded so '?', '#' and '%' in file names stay part of the path.
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

func tableNames(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func dumpTable(db *sql.DB, name string) (api.Table, error) {
	rows, err := db.Query(`SELECT * FROM "` + strings.ReplaceAll(name, `"`, `""`) + `"`)
	if err != nil {
		return api.Table{}, err
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	cols, err := rows.Columns()
	if err != nil {
		return api.Table{}, err
	}
	t := api.Table{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return api.Table{}, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = base64.StdEncoding.EncodeToString(b)
				continue
			}
			vals[i] = jsonSafe(v)
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, rows.Err()
}
