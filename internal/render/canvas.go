// Package render draws a scene frame onto an abstract Canvas. Two backends
// are provided: GGCanvas rasterizes with gogpu/gg, and Recorder captures a
// JSON command buffer for a browser Canvas2D context to replay.
package render

import (
	"image"
	"image/color"

	"github.com/inamate/sketchpad/internal/geom"
)

// Composite selects how subsequent paint combines with what is already on
// the canvas.
type Composite int

const (
	CompositeNormal Composite = iota
	// CompositeErase removes destination coverage where the source paints
	// (destination-out).
	CompositeErase
)

func (c Composite) String() string {
	if c == CompositeErase {
		return "destination-out"
	}
	return "source-over"
}

// Stroke describes how an outline is drawn. Caps and joins are round.
type Stroke struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// Canvas is the set of primitives the frame passes need. Coordinates are
// mapped through the current transform; Save and Restore bracket transform
// and composite state.
type Canvas interface {
	Size() (w, h int)
	Clear(c color.Color)
	Save()
	Restore()
	Transform(m geom.Matrix2D)
	SetComposite(op Composite)

	StrokePath(pts []geom.Vec2, closed bool, s Stroke)
	FillPath(pts []geom.Vec2, closed bool, fill color.Color)
	StrokeEllipse(r geom.Rect, s Stroke)
	FillEllipse(r geom.Rect, fill color.Color)
	StrokeRect(r geom.Rect, s Stroke)
	FillRect(r geom.Rect, fill color.Color)

	// BlitImage draws the src region of img (in img pixels) stretched into
	// dst.
	BlitImage(img image.Image, src, dst geom.Rect)
}
