package render

import (
	"bytes"
	"fmt"

	"github.com/inamate/sketchpad/internal/geom"
)

// Export flattens the scene in f onto a w×h raster at logical size and
// encodes it as PNG. The viewport's pan and zoom are ignored and no chrome,
// draft or crop overlay is drawn.
func Export(f Frame, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("export size %dx%d", w, h)
	}
	c := NewGGCanvas(w, h)
	defer c.Close()

	f.Viewport = geom.NewViewport()
	DrawScene(c, f)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
