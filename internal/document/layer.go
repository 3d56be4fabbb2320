package document

import (
	"image"

	"github.com/inamate/sketchpad/internal/geom"
)

// MinLayerSize is the smallest width or height a resize can produce.
const MinLayerSize = 10

// Layer is a positioned raster image. X, Y, W, H is the display rectangle in
// world space. Crop, when set, is the sub-rectangle of the source raster
// (in source pixels) that is stretched into the display rectangle.
type Layer struct {
	ID   string
	Src  string
	X, Y float64
	W, H float64
	Crop *geom.Rect

	Selected bool

	// Raster is nil until the source has been decoded.
	Raster image.Image
}

// Rect returns the display rectangle.
func (l *Layer) Rect() geom.Rect {
	return geom.Rect{X: l.X, Y: l.Y, W: l.W, H: l.H}
}

// SetRect replaces the display rectangle.
func (l *Layer) SetRect(r geom.Rect) {
	l.X, l.Y, l.W, l.H = r.X, r.Y, r.W, r.H
}

// SourceRect is the region of the raster currently shown: Crop if set,
// otherwise the whole raster. ok is false while the raster is not decoded
// and no crop is known.
func (l *Layer) SourceRect() (r geom.Rect, ok bool) {
	if l.Crop != nil {
		return *l.Crop, true
	}
	if l.Raster == nil {
		return geom.Rect{}, false
	}
	b := l.Raster.Bounds()
	return geom.Rect{W: float64(b.Dx()), H: float64(b.Dy())}, true
}

// Clone returns a copy that shares the (immutable) raster.
func (l *Layer) Clone() *Layer {
	out := *l
	if l.Crop != nil {
		c := *l.Crop
		out.Crop = &c
	}
	return &out
}

// FitCrop clamps Crop to the raster bounds once the raster is known.
func (l *Layer) FitCrop() {
	if l.Crop == nil || l.Raster == nil {
		return
	}
	b := l.Raster.Bounds()
	c := l.Crop.Intersect(geom.Rect{W: float64(b.Dx()), H: float64(b.Dy())})
	if c.IsEmpty() {
		l.Crop = nil
		return
	}
	l.Crop = &c
}
