package geom

import "math"

const (
	MinScale = 0.25
	MaxScale = 4.0

	// DefaultZoomSensitivity converts wheel delta units into an exponent.
	DefaultZoomSensitivity = 0.0015
)

// Viewport maps world coordinates to screen coordinates with a uniform
// scale followed by a translation.
type Viewport struct {
	Scale  float64 `json:"scale"`
	Offset Vec2    `json:"offset"`
}

// NewViewport returns the identity viewport.
func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

// ScreenToWorld maps a screen point into world space.
func (v Viewport) ScreenToWorld(s Vec2) Vec2 {
	return s.Sub(v.Offset).Div(v.Scale)
}

// WorldToScreen maps a world point into screen space.
func (v Viewport) WorldToScreen(w Vec2) Vec2 {
	return w.Mul(v.Scale).Add(v.Offset)
}

// Matrix returns the world-to-screen transform.
func (v Viewport) Matrix() Matrix2D {
	return Translate(v.Offset.X, v.Offset.Y).Multiply(Scale(v.Scale, v.Scale))
}

// ZoomAt rescales the viewport by exp(-deltaY*k), clamped to
// [MinScale, MaxScale], and shifts the offset so the world point under the
// screen point m still projects onto m.
func (v Viewport) ZoomAt(m Vec2, deltaY, k float64) Viewport {
	if k <= 0 {
		k = DefaultZoomSensitivity
	}
	worldBefore := v.ScreenToWorld(m)
	scale := Clamp(v.Scale*math.Exp(-deltaY*k), MinScale, MaxScale)
	projected := worldBefore.Mul(scale).Add(v.Offset)

	return Viewport{
		Scale:  scale,
		Offset: v.Offset.Add(m.Sub(projected)),
	}
}

// Pan shifts the viewport by a screen-space delta.
func (v Viewport) Pan(delta Vec2) Viewport {
	v.Offset = v.Offset.Add(delta)
	return v
}

// Valid reports whether the viewport can be restored from a snapshot.
func (v Viewport) Valid() bool {
	return v.Offset.IsFinite() && v.Scale >= MinScale && v.Scale <= MaxScale
}
