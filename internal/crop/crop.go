// Package crop maps a crop box drawn over a layer back into the layer's
// source pixels and re-rasterizes that region.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/raster"
)

// MinBox is the smallest box width or height that is applied; anything
// smaller is discarded as a no-op.
const MinBox = 2

var (
	ErrDegenerate = errors.New("crop box is degenerate")
	ErrNoRaster   = errors.New("layer raster not decoded")
)

// Degenerate reports whether box is too small to apply.
func Degenerate(box geom.Rect) bool {
	return box.W < MinBox || box.H < MinBox
}

// SourceRect maps box, given in the layer's display-local space, into the
// source raster's pixel space through the layer's current crop. A layer
// without a crop is treated as showing its whole source.
func SourceRect(l *document.Layer, box geom.Rect) (geom.Rect, bool) {
	c, ok := l.SourceRect()
	if !ok || l.W <= 0 || l.H <= 0 {
		return geom.Rect{}, false
	}
	sx, sy := c.W/l.W, c.H/l.H
	return geom.Rect{
		X: c.X + box.X*sx,
		Y: c.Y + box.Y*sy,
		W: box.W * sx,
		H: box.H * sy,
	}, true
}

// PixelRect rounds r to whole pixels of src and clips it to src's bounds.
func PixelRect(src image.Image, r geom.Rect) image.Rectangle {
	b := src.Bounds()
	pr := image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)),
	).Add(b.Min)
	return pr.Intersect(b)
}

// Rasterize copies the r region of src into a new image whose origin is
// (0, 0).
func Rasterize(src image.Image, r geom.Rect) (image.Image, error) {
	pr := PixelRect(src, r)
	if pr.Dx() < 1 || pr.Dy() < 1 {
		return nil, fmt.Errorf("%w: %v outside source %v", ErrDegenerate, r, src.Bounds())
	}
	return imaging.Crop(src, pr), nil
}

// Result holds the layer fields a crop commit replaces.
type Result struct {
	Raster image.Image
	Src    string
	Rect   geom.Rect
	// Source is the region of the previous raster that was kept.
	Source geom.Rect
}

// Apply computes the replacement for layer l cropped to box. The new display
// rectangle starts at the box's world position and takes the raster's pixel
// size; the returned layer has no crop.
func Apply(l *document.Layer, box geom.Rect) (Result, error) {
	if Degenerate(box) {
		return Result{}, fmt.Errorf("%w: %vx%v", ErrDegenerate, box.W, box.H)
	}
	if l.Raster == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoRaster, l.ID)
	}
	sr, ok := SourceRect(l, box)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNoRaster, l.ID)
	}

	img, err := Rasterize(l.Raster, sr)
	if err != nil {
		return Result{}, err
	}
	src, err := raster.EncodeDataURL(img)
	if err != nil {
		return Result{}, fmt.Errorf("crop %s: %w", l.ID, err)
	}

	b := img.Bounds()
	return Result{
		Raster: img,
		Src:    src,
		Rect:   geom.Rect{X: l.X + box.X, Y: l.Y + box.Y, W: float64(b.Dx()), H: float64(b.Dy())},
		Source: sr,
	}, nil
}
