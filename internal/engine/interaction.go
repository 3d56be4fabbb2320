package engine

import (
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

// interaction is the single live gesture state. Exactly one variant is
// held by the engine at any time; idle is the resting state.
type interaction interface {
	name() string
}

type idle struct{}

// pathDrawing appends a point to the path on every move.
type pathDrawing struct {
	id string
}

// shapeDrafting previews a two-point shape; nothing is committed until
// the pointer is released.
type shapeDrafting struct {
	draft *document.DrawObject
}

// polygonBuilding accumulates vertices across clicks until Enter or Escape.
type polygonBuilding struct {
	points []geom.Vec2
}

type lineHandleDragging struct {
	id     string
	handle geom.Handle
	moved  bool
}

type layerResizing struct {
	id     string
	handle geom.Handle
	orig   geom.Rect
	start  geom.Vec2
	moved  bool
}

type cropMode int

const (
	cropResize cropMode = iota // dragging a corner of the box
	cropMove                   // dragging the box body
	cropNew                    // growing a new box from a point
)

type cropDragging struct {
	layerID string
	mode    cropMode
	handle  geom.Handle
	orig    geom.Rect // box at pointer-down
	start   geom.Vec2 // layer-local
}

type entityMoving struct {
	hit      document.Hit
	start    geom.Vec2
	origRect geom.Rect
	origDraw *document.DrawObject
	moved    bool
}

// panning tracks the last screen position; it is never checkpointed.
type panning struct {
	last geom.Vec2
}

func (idle) name() string                { return "idle" }
func (*pathDrawing) name() string        { return "pathDrawing" }
func (*shapeDrafting) name() string      { return "shapeDrafting" }
func (*polygonBuilding) name() string    { return "polygonBuilding" }
func (*lineHandleDragging) name() string { return "lineHandleDragging" }
func (*layerResizing) name() string      { return "layerResizing" }
func (*cropDragging) name() string       { return "cropDragging" }
func (*entityMoving) name() string       { return "entityMoving" }
func (*panning) name() string            { return "panning" }

// pendingCrop is the crop box being edited, in the layer's display-local
// space.
type pendingCrop struct {
	layerID string
	box     geom.Rect
}
