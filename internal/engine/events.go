package engine

import "github.com/inamate/sketchpad/internal/geom"

// Tool is the active editing tool.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolPencil  Tool = "pencil"
	ToolEraser  Tool = "eraser"
	ToolLine    Tool = "line"
	ToolRect    Tool = "rect"
	ToolEllipse Tool = "ellipse"
	ToolPolygon Tool = "polygon"
	ToolArrow   Tool = "arrow"
	ToolCrop    Tool = "crop"
)

// Valid reports whether t names a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolPencil, ToolEraser, ToolLine, ToolRect, ToolEllipse, ToolPolygon, ToolArrow, ToolCrop:
		return true
	}
	return false
}

func (t Tool) isShape() bool {
	return t == ToolLine || t == ToolRect || t == ToolEllipse || t == ToolArrow
}

// PointerEvent is a pointer position in screen coordinates.
type PointerEvent struct {
	Pos       geom.Vec2 `json:"pos"`
	Shift     bool      `json:"shift,omitempty"`
	PointerID int       `json:"pointerId,omitempty"`
}

// WheelEvent is a wheel turn at a screen position.
type WheelEvent struct {
	Pos    geom.Vec2 `json:"pos"`
	DeltaY float64   `json:"deltaY"`
}

// KeyEvent carries a DOM-style key name ("z", "Delete", "Enter", " ").
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

func (k KeyEvent) modifier() bool { return k.Ctrl || k.Meta }

func isSpace(key string) bool { return key == " " || key == "Space" || key == "Spacebar" }

// Listener receives input events. Engine implements it.
type Listener interface {
	PointerDown(PointerEvent)
	PointerMove(PointerEvent)
	PointerUp(PointerEvent)
	PointerLeave(PointerEvent)
	PointerCancel(PointerEvent)
	Wheel(WheelEvent)
	// KeyDown and KeyUp report whether the key was consumed.
	KeyDown(KeyEvent) bool
	KeyUp(KeyEvent) bool
}

// InputSource is anything that can deliver input to listeners: a browser
// bridge, a websocket session, or a test driver. The returned function
// unsubscribes.
type InputSource interface {
	Subscribe(Listener) (unsubscribe func())
}
