package geom

import "math"

// Handle names an interactive hotspot: one of the four corners of a
// rectangle, or one of the two endpoints of a line.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleNE   Handle = "ne"
	HandleSE   Handle = "se"
	HandleSW   Handle = "sw"
	HandleA    Handle = "a"
	HandleB    Handle = "b"
)

// Corners lists corner handles in hit-test priority order.
var Corners = [...]Handle{HandleNW, HandleNE, HandleSE, HandleSW}

// HandleAt returns the corner of bounds that lies within tol of p.
func HandleAt(bounds Rect, p Vec2, tol float64) (Handle, bool) {
	for _, h := range Corners {
		if bounds.Corner(h).Dist(p) <= tol {
			return h, true
		}
	}
	return HandleNone, false
}

// Opposite returns the corner diagonally across from h.
func (h Handle) Opposite() Handle {
	switch h {
	case HandleNW:
		return HandleSE
	case HandleNE:
		return HandleSW
	case HandleSE:
		return HandleNW
	case HandleSW:
		return HandleNE
	}
	return HandleNone
}

// ResizeFromHandle drags corner h of orig by delta while the opposite corner
// stays fixed. With lockAspect the larger of the two deltas drives and the
// other axis follows orig's aspect ratio. Width and height never go below
// minSize.
func ResizeFromHandle(orig Rect, h Handle, delta Vec2, lockAspect bool, minSize float64) Rect {
	// sx, sy: +1 when dragging the corner grows the rect along that axis.
	sx, sy := 1.0, 1.0
	switch h {
	case HandleNW:
		sx, sy = -1, -1
	case HandleNE:
		sy = -1
	case HandleSW:
		sx = -1
	case HandleSE:
	default:
		return orig
	}

	dw := delta.X * sx
	dh := delta.Y * sy
	if lockAspect && orig.W > 0 && orig.H > 0 {
		aspect := orig.W / orig.H
		if math.Abs(dw) >= math.Abs(dh) {
			dh = dw / aspect
		} else {
			dw = dh * aspect
		}
	}

	w := math.Max(minSize, orig.W+dw)
	hgt := math.Max(minSize, orig.H+dh)

	anchor := orig.Corner(h.Opposite())
	out := Rect{W: w, H: hgt}
	if sx > 0 {
		out.X = anchor.X
	} else {
		out.X = anchor.X - w
	}
	if sy > 0 {
		out.Y = anchor.Y
	} else {
		out.Y = anchor.Y - hgt
	}
	return out
}

// ClampInside keeps r within [0, w] x [0, h] and at least minSize on each
// axis.
func ClampInside(r Rect, w, h, minSize float64) Rect {
	r.W = Clamp(r.W, math.Min(minSize, w), w)
	r.H = Clamp(r.H, math.Min(minSize, h), h)
	r.X = Clamp(r.X, 0, w-r.W)
	r.Y = Clamp(r.Y, 0, h-r.H)
	return r
}

// ClipInside trims r to [0, w] x [0, h]; an axis left shorter than minSize
// is grown back inward from the edge it was clipped against.
func ClipInside(r Rect, w, h, minSize float64) Rect {
	x0, x1 := clipSpan(r.X, r.X+r.W, w, minSize)
	y0, y1 := clipSpan(r.Y, r.Y+r.H, h, minSize)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func clipSpan(lo, hi, limit, minSize float64) (float64, float64) {
	lo = Clamp(lo, 0, limit)
	hi = Clamp(hi, 0, limit)
	minSize = math.Min(minSize, limit)
	if hi-lo >= minSize {
		return lo, hi
	}
	if lo+minSize <= limit {
		return lo, lo + minSize
	}
	return limit - minSize, limit
}
