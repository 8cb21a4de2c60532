package ingest

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // registers the WEBP decoder

	"github.com/agentic-research/fextract/api"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// jpegQuality matches the usual default of image libraries.
const jpegQuality = 75

// NewImageHandler decodes raster images and re-encodes them as base64.
func NewImageHandler(available bool) *FormatHandler {
	return newGatedHandler(api.FormatImage, CapImage, available, extractImage)
}

func extractImage(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		if known := sniffUndecodable(data); known != "" {
			return nil, fmt.Errorf("%w: no decoder registered for %s images", ErrCapabilityUnavailable, known)
		}
		return nil, parseErrorf("unrecognized image data")
	}
	if err != nil {
		return nil, parseErrorf("decode image header: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, parseErrorf("decode image: %v", err)
	}

	var buf bytes.Buffer
	if err := reencode(&buf, name, img, data); err != nil {
		return nil, fmt.Errorf("re-encode %s: %w", name, err)
	}

	return &api.ImagePayload{
		Format: strings.ToUpper(name),
		Mode:   imageMode(cfg.ColorModel, img),
		Size:   [2]int{cfg.Width, cfg.Height},
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// reencode writes img back in its own format. WEBP has no encoder, so the
// original bytes are kept.
func reencode(w io.Writer, format string, img image.Image, original []byte) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, nil)
	default:
		_, err := w.Write(original)
		return err
	}
}

// imageMode refines the color model with the decoded pixels: an RGBA
// model holding a fully opaque image carries no alpha channel.
func imageMode(m color.Model, img image.Image) string {
	mode := colorMode(m)
	if mode == "RGBA" {
		if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
			return "RGB"
		}
	}
	return mode
}

// colorMode names the pixel layout the way imaging tools commonly do.
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.NYCbCrAModel:
		return "RGBA"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.YCbCrModel:
		return "RGB"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	}
	return "RGB"
}

// sniffUndecodable recognizes common image containers no registered
// decoder handles.
func sniffUndecodable(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[4:8]) == "ftyp":
		switch string(data[8:12]) {
		case "avif", "avis":
			return "AVIF"
		case "heic", "heix", "mif1", "msf1":
			return "HEIC"
		}
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0x01, 0x00}):
		return "ICO"
	case bytes.HasPrefix(data, []byte("8BPS")):
		return "PSD"
	}
	return ""
}
