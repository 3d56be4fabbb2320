package render

import (
	"image/color"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

// DefaultHandleSize is the on-screen size of a corner handle in pixels.
const DefaultHandleSize = 10

// CropOverlay is the pending crop box for one layer, in that layer's
// display-local coordinates.
type CropOverlay struct {
	LayerID string
	Box     geom.Rect
}

// Frame is everything one redraw needs. It is assembled by the engine from
// its scene and interaction state; the renderer never mutates it.
type Frame struct {
	Width, Height int
	Background    color.Color
	Viewport      geom.Viewport

	Layers []*document.Layer
	Draws  []*document.DrawObject

	SelectedLayer string
	SelectedDraw  string

	// Draft is the in-progress shape preview, if any.
	Draft *document.DrawObject
	// Crop is the pending crop box, shown while the crop tool targets a layer.
	Crop           *CropOverlay
	CropToolActive bool

	HandleSize float64
}

func (f *Frame) layer(id string) *document.Layer {
	for _, l := range f.Layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (f *Frame) handleSize() float64 {
	if f.HandleSize > 0 {
		return f.HandleSize
	}
	return DefaultHandleSize
}

func (f *Frame) scale() float64 {
	if f.Viewport.Scale > 0 {
		return f.Viewport.Scale
	}
	return 1
}
