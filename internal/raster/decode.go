// Package raster turns image bytes and source references into decoded
// rasters, and encodes rasters back into re-decodable data URLs.
package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode            = errors.New("decode image")
	ErrUnsupportedSource = errors.New("unsupported image source")
	ErrTooLarge          = errors.New("image source too large")
)

// MaxSourceSize caps how many bytes are read from any one source.
const MaxSourceSize = 32 << 20

// Decode reads an image in any registered format.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, MaxSourceSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, nil
}

// IsDataURL reports whether src is an inline data: URL.
func IsDataURL(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// DecodeDataURL decodes a base64 "data:image/...;base64," URL.
func DecodeDataURL(src string) (image.Image, error) {
	header, payload, ok := strings.Cut(src, ",")
	if !ok || !IsDataURL(header) {
		return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedSource)
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: data url is not base64", ErrUnsupportedSource)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return Decode(bytes.NewReader(raw))
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// EncodeDataURL returns img as a PNG data URL, the reference stored in
// snapshots for rasters that have no other source.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return PNGDataURL(buf.Bytes()), nil
}

// PNGDataURL wraps already encoded PNG bytes in a data URL.
func PNGDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
