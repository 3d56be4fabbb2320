package document

import "github.com/inamate/sketchpad/internal/geom"

// Hit identifies the entity under a point.
type Hit struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

// Bounds returns the axis-aligned bounding box of a draw object. For rect
// and ellipse the corners are normalized, so dragging backward still yields
// a positive size. ok is false for a point-list shape with no points.
func Bounds(d *DrawObject) (geom.Rect, bool) {
	if d.Type.HasPoints() {
		return geom.BoundsOf(d.Points...)
	}
	return geom.RectFromCorners(d.A, d.B), true
}

// HitTest returns the topmost entity whose bounding box contains p. Draw
// objects sit above all layers, so they are tested first, newest first.
// Only bounding boxes are tested: a thin diagonal stroke is selectable
// anywhere inside its box.
func (s *Scene) HitTest(p geom.Vec2) (Hit, bool) {
	for i := len(s.draws) - 1; i >= 0; i-- {
		d := s.draws[i]
		if b, ok := Bounds(d); ok && b.Contains(p) {
			return Hit{Kind: KindDraw, ID: d.ID}, true
		}
	}
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if l.Rect().Contains(p) {
			return Hit{Kind: KindLayer, ID: l.ID}, true
		}
	}
	return Hit{}, false
}

// EndpointAt returns which endpoint of a line or arrow lies within tol of p.
func EndpointAt(d *DrawObject, p geom.Vec2, tol float64) (geom.Handle, bool) {
	if d.Type != DrawLine && d.Type != DrawArrow {
		return geom.HandleNone, false
	}
	if d.A.Dist(p) <= tol {
		return geom.HandleA, true
	}
	if d.B.Dist(p) <= tol {
		return geom.HandleB, true
	}
	return geom.HandleNone, false
}
