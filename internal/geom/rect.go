package geom

import "math"

// Rect is an axis-aligned rectangle. W and H are non-negative for any
// rectangle produced by this package.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// RectFromCorners normalizes two opposite corners into a Rect, so a drag
// toward the top-left still yields positive width and height.
func RectFromCorners(a, b Vec2) Rect {
	return Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(b.X - a.X),
		H: math.Abs(b.Y - a.Y),
	}
}

// Contains checks if a point is inside the rect (edges included).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the overlap of r and other, or the zero Rect.
func (r Rect) Intersect(other Rect) Rect {
	x0 := max(r.X, other.X)
	y0 := max(r.Y, other.Y)
	x1 := min(r.X+r.W, other.X+other.W)
	y1 := min(r.Y+r.H, other.Y+other.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Translate moves the rect by d.
func (r Rect) Translate(d Vec2) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Center returns the center point of the rect.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Corner returns the position of the given corner handle.
func (r Rect) Corner(h Handle) Vec2 {
	switch h {
	case HandleNE:
		return Vec2{X: r.X + r.W, Y: r.Y}
	case HandleSE:
		return Vec2{X: r.X + r.W, Y: r.Y + r.H}
	case HandleSW:
		return Vec2{X: r.X, Y: r.Y + r.H}
	default:
		return Vec2{X: r.X, Y: r.Y}
	}
}

// Valid reports whether all fields are finite and the size is non-negative.
func (r Rect) Valid() bool {
	for _, f := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.W >= 0 && r.H >= 0
}
