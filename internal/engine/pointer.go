package engine

import (
	"github.com/inamate/sketchpad/internal/crop"
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/typeid"
)

func (e *Engine) toWorld(screen geom.Vec2) geom.Vec2 {
	return e.scene.Viewport().ScreenToWorld(screen)
}

// tolerance is the handle grab distance in world units.
func (e *Engine) tolerance() float64 {
	return e.handleTol / e.scene.Viewport().Scale
}

// begin enters a drag state and captures the pointer that started it.
func (e *Engine) begin(ev PointerEvent, st interaction) {
	e.current = st
	e.captured = true
	e.captureID = ev.PointerID
	e.changed()
}

func (e *Engine) toIdle() {
	e.current = idle{}
	e.captured = false
	e.changed()
}

// foreign reports whether ev belongs to a pointer other than the one that
// owns the active gesture.
func (e *Engine) foreign(ev PointerEvent) bool {
	return e.captured && ev.PointerID != e.captureID
}

// PointerDown starts a gesture according to the active tool and what lies
// under the pointer.
func (e *Engine) PointerDown(ev PointerEvent) {
	if e.closed || e.captured || !ev.Pos.IsFinite() {
		return
	}
	p := e.toWorld(ev.Pos)

	if e.panHeld {
		e.begin(ev, &panning{last: ev.Pos})
		return
	}
	if st, ok := e.current.(*polygonBuilding); ok {
		st.points = append(st.points, p)
		e.changed()
		return
	}

	switch {
	case e.tool == ToolPencil || e.tool == ToolEraser:
		e.startPath(ev, p)
	case e.tool.isShape():
		e.startShape(ev, p)
	case e.tool == ToolPolygon:
		e.history.Checkpoint()
		e.current = &polygonBuilding{points: []geom.Vec2{p}}
		e.changed()
	case e.tool == ToolCrop:
		e.startCrop(ev, p)
	default:
		e.startSelect(ev, p)
	}
}

func (e *Engine) startPath(ev PointerEvent, p geom.Vec2) {
	style := e.style
	eraser := e.tool == ToolEraser
	if eraser {
		style.FillMode = document.FillStroke
		style.Dashed = false
	}
	d := &document.DrawObject{
		ID:       typeid.NewDrawID(),
		Type:     document.DrawPath,
		Style:    style,
		Points:   []geom.Vec2{p},
		IsEraser: eraser,
	}

	e.history.Checkpoint()
	if err := e.scene.AddDraw(d); err != nil {
		e.history.Drop()
		e.log.Warn("start path", "error", err)
		return
	}
	_ = e.scene.Select(document.KindDraw, d.ID)
	e.begin(ev, &pathDrawing{id: d.ID})
}

var shapeTypes = map[Tool]document.DrawType{
	ToolLine:    document.DrawLine,
	ToolRect:    document.DrawRect,
	ToolEllipse: document.DrawEllipse,
	ToolArrow:   document.DrawArrow,
}

func (e *Engine) startShape(ev PointerEvent, p geom.Vec2) {
	e.history.Checkpoint()
	e.begin(ev, &shapeDrafting{
		draft: &document.DrawObject{Type: shapeTypes[e.tool], Style: e.style, A: p, B: p},
	})
}

func (e *Engine) startSelect(ev PointerEvent, p geom.Vec2) {
	tol := e.tolerance()

	if d := e.scene.SelectedDraw(); d != nil {
		if h, ok := document.EndpointAt(d, p, tol); ok {
			e.history.Checkpoint()
			e.begin(ev, &lineHandleDragging{id: d.ID, handle: h})
			return
		}
	}
	if l := e.scene.SelectedLayer(); l != nil {
		if h, ok := geom.HandleAt(l.Rect(), p, tol); ok {
			e.history.Checkpoint()
			e.begin(ev, &layerResizing{id: l.ID, handle: h, orig: l.Rect(), start: p})
			return
		}
	}

	hit, ok := e.scene.HitTest(p)
	if !ok {
		e.scene.ClearSelection()
		e.changed()
		return
	}
	if err := e.scene.Select(hit.Kind, hit.ID); err != nil {
		return
	}

	st := &entityMoving{hit: hit, start: p}
	if hit.Kind == document.KindLayer {
		st.origRect = e.scene.Layer(hit.ID).Rect()
	} else {
		st.origDraw = e.scene.Draw(hit.ID).Clone()
	}
	e.history.Checkpoint()
	e.begin(ev, st)
}

// layerAt returns the topmost layer containing p, ignoring draw objects.
func (e *Engine) layerAt(p geom.Vec2) *document.Layer {
	layers := e.scene.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].Rect().Contains(p) {
			return layers[i]
		}
	}
	return nil
}

func (e *Engine) startCrop(ev PointerEvent, p geom.Vec2) {
	tol := e.tolerance()

	if e.crop != nil {
		if l := e.scene.Layer(e.crop.layerID); l != nil {
			local := p.Sub(geom.V(l.X, l.Y))
			box := e.crop.box
			if h, ok := geom.HandleAt(box, local, tol); ok {
				e.begin(ev, &cropDragging{layerID: l.ID, mode: cropResize, handle: h, orig: box, start: local})
				return
			}
			if box.Contains(local) {
				e.begin(ev, &cropDragging{layerID: l.ID, mode: cropMove, orig: box, start: local})
				return
			}
			if l.Rect().Contains(p) {
				e.crop.box = geom.Rect{X: local.X, Y: local.Y}
				e.begin(ev, &cropDragging{layerID: l.ID, mode: cropNew, orig: box, start: local})
				return
			}
		}
	}

	l := e.layerAt(p)
	if l == nil {
		return
	}
	_ = e.scene.Select(document.KindLayer, l.ID)
	full := geom.Rect{W: l.W, H: l.H}
	local := p.Sub(geom.V(l.X, l.Y))
	if h, ok := geom.HandleAt(full, local, tol); ok {
		e.crop = &pendingCrop{layerID: l.ID, box: full}
		e.begin(ev, &cropDragging{layerID: l.ID, mode: cropResize, handle: h, orig: full, start: local})
		return
	}
	e.crop = &pendingCrop{layerID: l.ID, box: geom.Rect{X: local.X, Y: local.Y}}
	e.begin(ev, &cropDragging{layerID: l.ID, mode: cropNew, orig: full, start: local})
}

// PointerMove advances the active gesture.
func (e *Engine) PointerMove(ev PointerEvent) {
	if e.closed || !e.captured || e.foreign(ev) || !ev.Pos.IsFinite() {
		return
	}
	e.track(ev)
}

// track applies a pointer position to the active drag state. A gesture
// whose target has disappeared returns to idle without touching the scene.
func (e *Engine) track(ev PointerEvent) {
	p := e.toWorld(ev.Pos)

	switch st := e.current.(type) {
	case *panning:
		e.scene.SetViewport(e.scene.Viewport().Pan(ev.Pos.Sub(st.last)))
		st.last = ev.Pos

	case *pathDrawing:
		d := e.scene.Draw(st.id)
		if d == nil {
			e.toIdle()
			return
		}
		d.Points = append(d.Points, p)

	case *shapeDrafting:
		st.draft.B = p

	case *lineHandleDragging:
		if e.scene.Draw(st.id) == nil {
			e.toIdle()
			return
		}
		patch := document.Patch{A: &p}
		if st.handle == geom.HandleB {
			patch = document.Patch{B: &p}
		}
		if err := e.scene.Update(st.id, patch); err != nil {
			e.toIdle()
			return
		}
		st.moved = true

	case *layerResizing:
		if e.scene.Layer(st.id) == nil {
			e.toIdle()
			return
		}
		r := geom.ResizeFromHandle(st.orig, st.handle, p.Sub(st.start), ev.Shift, document.MinLayerSize)
		if err := e.scene.Update(st.id, document.Patch{Rect: &r}); err != nil {
			e.toIdle()
			return
		}
		st.moved = true

	case *cropDragging:
		l := e.scene.Layer(st.layerID)
		if l == nil || e.crop == nil || e.crop.layerID != st.layerID {
			e.crop = nil
			e.toIdle()
			return
		}
		local := p.Sub(geom.V(l.X, l.Y))
		e.crop.box = cropBox(st, local, l, ev.Shift)

	case *entityMoving:
		if !e.moveEntity(st, p.Sub(st.start)) {
			e.toIdle()
			return
		}
	}
	e.changed()
}

func cropBox(st *cropDragging, local geom.Vec2, l *document.Layer, lockAspect bool) geom.Rect {
	switch st.mode {
	case cropMove:
		return geom.ClampInside(st.orig.Translate(local.Sub(st.start)), l.W, l.H, document.MinLayerSize)
	case cropNew:
		end := geom.V(geom.Clamp(local.X, 0, l.W), geom.Clamp(local.Y, 0, l.H))
		return geom.RectFromCorners(st.start, end)
	}
	r := geom.ResizeFromHandle(st.orig, st.handle, local.Sub(st.start), lockAspect, document.MinLayerSize)
	return geom.ClipInside(r, l.W, l.H, document.MinLayerSize)
}

func (e *Engine) moveEntity(st *entityMoving, delta geom.Vec2) bool {
	if st.hit.Kind == document.KindLayer {
		if e.scene.Layer(st.hit.ID) == nil {
			return false
		}
		r := st.origRect.Translate(delta)
		if err := e.scene.Update(st.hit.ID, document.Patch{Rect: &r}); err != nil {
			return false
		}
		st.moved = st.moved || delta != (geom.Vec2{})
		return true
	}

	if e.scene.Draw(st.hit.ID) == nil {
		return false
	}
	moved := st.origDraw.Clone()
	moved.Translate(delta)
	patch := document.Patch{A: &moved.A, B: &moved.B}
	if moved.Type.HasPoints() {
		patch = document.Patch{Points: moved.Points}
	}
	if err := e.scene.Update(st.hit.ID, patch); err != nil {
		return false
	}
	st.moved = st.moved || delta != (geom.Vec2{})
	return true
}

// PointerUp ends the active gesture.
func (e *Engine) PointerUp(ev PointerEvent) { e.release(ev) }

// PointerLeave ends the active gesture exactly as PointerUp does.
func (e *Engine) PointerLeave(ev PointerEvent) { e.release(ev) }

// PointerCancel ends the active gesture exactly as PointerUp does.
func (e *Engine) PointerCancel(ev PointerEvent) { e.release(ev) }

func (e *Engine) release(ev PointerEvent) {
	if e.closed || !e.captured || e.foreign(ev) {
		return
	}
	if ev.Pos.IsFinite() {
		e.track(ev)
	}
	e.finishGesture()
}

// finishGesture finalizes the captured gesture and returns to idle. A
// gesture that changed nothing gives back its checkpoint.
func (e *Engine) finishGesture() {
	switch st := e.current.(type) {
	case *shapeDrafting:
		d := st.draft
		if d.A == d.B {
			e.history.Drop()
			break
		}
		d.ID = typeid.NewDrawID()
		if err := e.scene.AddDraw(d); err != nil {
			e.history.Drop()
			e.log.Warn("commit shape", "error", err)
			break
		}
		_ = e.scene.Select(document.KindDraw, d.ID)

	case *lineHandleDragging:
		if !st.moved {
			e.history.Drop()
		}

	case *layerResizing:
		if !st.moved {
			e.history.Drop()
		}

	case *entityMoving:
		if !st.moved {
			e.history.Drop()
		}

	case *cropDragging:
		if e.crop != nil && st.mode == cropNew && crop.Degenerate(e.crop.box) {
			e.crop.box = st.orig
		}
	}
	e.toIdle()
}

// abandonGesture ends whatever is in progress: drags are finished as if
// the pointer was released, a half-built polygon is discarded.
func (e *Engine) abandonGesture() {
	switch e.current.(type) {
	case idle:
	case *polygonBuilding:
		e.discardPolygon()
	default:
		e.finishGesture()
	}
}

// resetGesture drops the current state without finalizing it, used after
// the scene was replaced underneath it.
func (e *Engine) resetGesture() {
	e.current = idle{}
	e.captured = false
}

// Wheel zooms around the pointer.
func (e *Engine) Wheel(ev WheelEvent) {
	if e.closed || !ev.Pos.IsFinite() || ev.DeltaY == 0 {
		return
	}
	e.scene.SetViewport(e.scene.Viewport().ZoomAt(ev.Pos, ev.DeltaY, e.zoomSensitivity))
	e.changed()
}
