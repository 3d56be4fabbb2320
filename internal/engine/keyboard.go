package engine

import (
	"strings"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/typeid"
)

// KeyDown handles the editor shortcuts. It reports whether the key was
// consumed so a host can suppress the default action.
func (e *Engine) KeyDown(ev KeyEvent) bool {
	if e.closed {
		return false
	}

	if ev.modifier() {
		switch strings.ToLower(ev.Key) {
		case "z":
			if ev.Shift {
				e.Redo()
			} else {
				e.Undo()
			}
			return true
		case "y":
			e.Redo()
			return true
		}
		return false
	}

	switch {
	case ev.Key == "Delete" || ev.Key == "Backspace":
		e.DeleteSelection()
		return true
	case ev.Key == "Enter":
		return e.commitPolygon()
	case ev.Key == "Escape":
		if _, ok := e.current.(*polygonBuilding); !ok {
			return false
		}
		e.discardPolygon()
		return true
	case isSpace(ev.Key):
		e.panHeld = true
		return true
	}
	return false
}

// KeyUp releases the pan modifier.
func (e *Engine) KeyUp(ev KeyEvent) bool {
	if e.closed || !isSpace(ev.Key) {
		return false
	}
	e.panHeld = false
	return true
}

// commitPolygon turns the accumulated vertices into a polygon when there
// are at least three. With fewer nothing happens.
func (e *Engine) commitPolygon() bool {
	st, ok := e.current.(*polygonBuilding)
	if !ok {
		return false
	}
	if len(st.points) < 3 {
		return true
	}
	d := &document.DrawObject{
		ID:     typeid.NewDrawID(),
		Type:   document.DrawPolygon,
		Style:  e.style,
		Points: append([]geom.Vec2(nil), st.points...),
	}
	if err := e.scene.AddDraw(d); err != nil {
		e.log.Warn("commit polygon", "error", err)
		e.discardPolygon()
		return true
	}
	_ = e.scene.Select(document.KindDraw, d.ID)
	e.toIdle()
	return true
}

// discardPolygon drops the accumulated vertices along with the checkpoint
// taken at the first one.
func (e *Engine) discardPolygon() {
	if _, ok := e.current.(*polygonBuilding); !ok {
		return
	}
	e.history.Drop()
	e.toIdle()
}
