package ingest

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/agentic-research/fextract/api"
)

var tarExtensions = []string{".tar", ".gz", ".tgz", ".zst", ".tzst", ".bz2", ".tbz2", ".xz", ".txz"}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// NewTarHandler reads tar archives, plain or compressed. The compression
// is detected from the leading bytes, not the extension.
func NewTarHandler() *FormatHandler {
	return newFormatHandler(api.FormatTar, extractTar)
}

func extractTar(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() // read-only

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(xzMagic))
	if len(magic) == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, parseErrorf("empty archive")
	}

	r, closeFn, err := decompress(br, magic)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	payload := &api.ArchivePayload{FileList: []string{}, Content: make(map[string]string)}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseUnlessIO("read tar header", err)
		}
		payload.FileList = append(payload.FileList, hdr.Name)
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, parseUnlessIO("read "+hdr.Name, err)
		}
		payload.Content[hdr.Name] = lossyUTF8(data)
	}
	return payload, nil
}

// decompress wraps r in the decoder matching magic. The returned close
// function is always safe to call.
func decompress(r io.Reader, magic []byte) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, parseUnlessIO("gzip", err)
		}
		return gz, func() { _ = gz.Close() }, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, parseUnlessIO("zstd", err)
		}
		return zr, zr.Close, nil
	case bytes.HasPrefix(magic, bzip2Magic):
		return bzip2.NewReader(r), noop, nil
	case bytes.HasPrefix(magic, xzMagic):
		return nil, noop, fmt.Errorf("%w: xz decompression is not built in", ErrCapabilityUnavailable)
	default:
		return r, noop, nil
	}
}
