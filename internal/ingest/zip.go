package ingest

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/agentic-research/fextract/api"
)

// NewZipHandler lists a zip archive and decodes each member as text.
func NewZipHandler() *FormatHandler {
	return newFormatHandler(api.FormatZip, extractZip)
}

func extractZip(path string) (any, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, parseUnlessIO("open zip", err)
	}
	defer func() { _ = zr.Close() }() // read-only

	payload := &api.ArchivePayload{
		FileList: make([]string, 0, len(zr.File)),
		Content:  make(map[string]string),
	}
	for _, zf := range zr.File {
		payload.FileList = append(payload.FileList, zf.Name)
		if strings.HasSuffix(zf.Name, "/") {
			continue
		}
		data, err := readZipMember(zf)
		if err != nil {
			return nil, parseUnlessIO("read "+zf.Name, err)
		}
		payload.Content[zf.Name] = lossyUTF8(data)
	}
	return payload, nil
}

func readZipMember(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
