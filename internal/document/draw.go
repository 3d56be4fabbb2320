package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/inamate/sketchpad/internal/geom"
)

// DrawType discriminates the DrawObject variants.
type DrawType string

const (
	DrawPath    DrawType = "path"
	DrawLine    DrawType = "line"
	DrawRect    DrawType = "rect"
	DrawEllipse DrawType = "ellipse"
	DrawPolygon DrawType = "polygon"
	DrawArrow   DrawType = "arrow"
)

// HasEndpoints reports whether the variant is defined by two points a, b.
func (t DrawType) HasEndpoints() bool {
	switch t {
	case DrawLine, DrawRect, DrawEllipse, DrawArrow:
		return true
	}
	return false
}

// HasPoints reports whether the variant is defined by a point list.
func (t DrawType) HasPoints() bool {
	return t == DrawPath || t == DrawPolygon
}

type FillMode string

const (
	FillStroke FillMode = "stroke"
	FillFill   FillMode = "fill"
	FillBoth   FillMode = "both"
)

// Strokes reports whether the outline is drawn.
func (m FillMode) Strokes() bool { return m != FillFill }

// Fills reports whether the interior is painted.
func (m FillMode) Fills() bool { return m == FillFill || m == FillBoth }

type Style struct {
	StrokeColor string   `json:"strokeColor"`
	FillColor   string   `json:"fillColor"`
	FillMode    FillMode `json:"fillMode"`
	Thickness   float64  `json:"thickness"`
	Dashed      bool     `json:"dashed"`
}

// DefaultStyle is the style new shapes get when nothing else is configured.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#e11d48",
		FillColor:   "#fde68a",
		FillMode:    FillStroke,
		Thickness:   4,
	}
}

func (s Style) validate() error {
	switch s.FillMode {
	case FillStroke, FillFill, FillBoth:
	default:
		return fmt.Errorf("unknown fill mode %q", s.FillMode)
	}
	if !(s.Thickness > 0) || math.IsInf(s.Thickness, 0) {
		return fmt.Errorf("thickness must be positive, got %v", s.Thickness)
	}
	return nil
}

// DrawObject is a vector annotation. Path and Polygon use Points; Line,
// Rect, Ellipse and Arrow use the A and B endpoints. IsEraser is only
// meaningful on paths.
type DrawObject struct {
	ID   string
	Type DrawType
	Style

	Points []geom.Vec2
	A, B   geom.Vec2

	IsEraser bool
	Selected bool
}

// Validate checks the variant-specific geometry rules.
func (d *DrawObject) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: draw object without id", ErrInvalidGeometry)
	}
	if err := d.Style.validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidGeometry, d.ID, err)
	}

	switch d.Type {
	case DrawPath:
		if len(d.Points) < 1 {
			return fmt.Errorf("%w: path %s needs at least 1 point", ErrInvalidGeometry, d.ID)
		}
	case DrawPolygon:
		if len(d.Points) < 3 {
			return fmt.Errorf("%w: polygon %s needs at least 3 points", ErrInvalidGeometry, d.ID)
		}
	case DrawLine, DrawRect, DrawEllipse, DrawArrow:
		if !d.A.IsFinite() || !d.B.IsFinite() {
			return fmt.Errorf("%w: %s has non-finite endpoints", ErrInvalidGeometry, d.ID)
		}
	default:
		return fmt.Errorf("%w: unknown draw type %q", ErrInvalidGeometry, d.Type)
	}

	if d.IsEraser && d.Type != DrawPath {
		return fmt.Errorf("%w: eraser flag on %s %s", ErrInvalidGeometry, d.Type, d.ID)
	}
	for _, p := range d.Points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: %s has non-finite points", ErrInvalidGeometry, d.ID)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (d *DrawObject) Clone() *DrawObject {
	out := *d
	if d.Points != nil {
		out.Points = append([]geom.Vec2(nil), d.Points...)
	}
	return &out
}

// Translate moves every point of the object by delta.
func (d *DrawObject) Translate(delta geom.Vec2) {
	if d.Type.HasPoints() {
		for i := range d.Points {
			d.Points[i] = d.Points[i].Add(delta)
		}
		return
	}
	d.A = d.A.Add(delta)
	d.B = d.B.Add(delta)
}

// drawJSON is the wire form. Pointer fields keep the variants apart: path
// and polygon carry "points", the two-point shapes carry "a" and "b".
type drawJSON struct {
	ID   string   `json:"id"`
	Type DrawType `json:"type"`
	Style
	Points   []geom.Vec2 `json:"points,omitempty"`
	A        *geom.Vec2  `json:"a,omitempty"`
	B        *geom.Vec2  `json:"b,omitempty"`
	IsEraser bool        `json:"isEraser,omitempty"`
}

func (d DrawObject) MarshalJSON() ([]byte, error) {
	w := drawJSON{ID: d.ID, Type: d.Type, Style: d.Style, IsEraser: d.IsEraser}
	if d.Type.HasPoints() {
		w.Points = d.Points
	} else {
		a, b := d.A, d.B
		w.A, w.B = &a, &b
	}
	return json.Marshal(w)
}

func (d *DrawObject) UnmarshalJSON(data []byte) error {
	var w drawJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := DrawObject{ID: w.ID, Type: w.Type, Style: w.Style, IsEraser: w.IsEraser}
	if w.Type.HasEndpoints() {
		if w.A == nil || w.B == nil {
			return fmt.Errorf("%w: %s %s is missing an endpoint", ErrInvalidGeometry, w.Type, w.ID)
		}
		out.A, out.B = *w.A, *w.B
	} else {
		out.Points = w.Points
	}

	*d = out
	return nil
}
