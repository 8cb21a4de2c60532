// Package output serializes extraction results.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// Encode writes v as indented JSON with non-ASCII and HTML characters left
// unescaped.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Marshal returns the Encode form of v without the trailing newline.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteFile encodes v into name on fsys. The JSON goes to a temp file in the
// same directory first and is renamed into place, so readers never see a
// partial document.
func WriteFile(fsys billy.Filesystem, name string, v any) (err error) {
	dir := filepath.Dir(name)
	if dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp, err := fsys.TempFile(dir, ".fextract-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if err := Encode(tmp, v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Temp files are created 0600.
	if ch, ok := fsys.(billy.Chmod); ok {
		if err := ch.Chmod(tmpName, 0o644); err != nil {
			return fmt.Errorf("chmod %s: %w", tmpName, err)
		}
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		return fmt.Errorf("rename into %s: %w", name, err)
	}
	return nil
}

// Destination splits an output path into a directory that can root a billy
// filesystem and the file name inside it.
func Destination(path string) (dir, name string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return "", "", fmt.Errorf("output %s is a directory", path)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
