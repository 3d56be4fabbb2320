package render

import (
	"image/color"
	"math"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

const (
	// ArrowSpread is the half-angle between the shaft and each side of the
	// arrow head.
	ArrowSpread = math.Pi / 7
	// MinArrowHead is the shortest arrow head side, in world units.
	MinArrowHead = 10
)

// DashPattern returns the dash lengths used for a dashed stroke of the
// given thickness.
func DashPattern(thickness float64) []float64 {
	return []float64{thickness * 3, thickness * 2}
}

// Draw renders a full editor frame: background, layers, selection chrome,
// draw objects, endpoint handles, draft and crop overlay, in that order.
func Draw(c Canvas, f Frame) {
	w, h := c.Size()
	c.Clear(Transparent)
	if f.Background != nil {
		c.FillRect(geom.Rect{W: float64(w), H: float64(h)}, f.Background)
	}

	c.Save()
	c.Transform(f.Viewport.Matrix())

	drawLayers(c, f.Layers)
	if l := f.layer(f.SelectedLayer); l != nil {
		drawLayerChrome(c, &f, l)
	}
	drawObjects(c, f.Draws)
	for _, d := range f.Draws {
		if d.ID == f.SelectedDraw && (d.Type == document.DrawLine || d.Type == document.DrawArrow) {
			drawEndpointHandles(c, &f, d)
		}
	}
	if f.Draft != nil {
		drawDraft(c, f.Draft)
	}

	c.Restore()

	if f.CropToolActive && f.Crop != nil {
		if l := f.layer(f.Crop.LayerID); l != nil {
			drawCropOverlay(c, &f, l, f.Crop.Box)
		}
	}
}

// DrawScene renders only the layers and draw objects, with no chrome,
// draft or overlay. This is the export pass.
func DrawScene(c Canvas, f Frame) {
	w, h := c.Size()
	c.Clear(Transparent)
	if f.Background != nil {
		c.FillRect(geom.Rect{W: float64(w), H: float64(h)}, f.Background)
	}
	c.Save()
	c.Transform(f.Viewport.Matrix())
	drawLayers(c, f.Layers)
	drawObjects(c, f.Draws)
	c.Restore()
}

func drawLayers(c Canvas, layers []*document.Layer) {
	for _, l := range layers {
		if l.Raster == nil {
			continue
		}
		src, ok := l.SourceRect()
		if !ok {
			continue
		}
		c.BlitImage(l.Raster, src, l.Rect())
	}
}

func drawObjects(c Canvas, draws []*document.DrawObject) {
	for _, d := range draws {
		if d.IsEraser {
			c.SetComposite(CompositeErase)
			drawObject(c, d, colorOr(d.StrokeColor, color.NRGBA{A: 0xff}), Transparent)
			c.SetComposite(CompositeNormal)
			continue
		}
		drawObject(c, d, colorOr(d.StrokeColor, color.NRGBA{A: 0xff}), colorOr(d.FillColor, Transparent))
	}
}

func drawDraft(c Canvas, d *document.DrawObject) {
	stroke := highlight(colorOr(d.StrokeColor, chromeColor))
	fill := colorOr(d.FillColor, Transparent)
	fill.A /= 2
	drawObject(c, d, stroke, fill)
}

// drawObject paints one draw object with resolved colors. Fill is painted
// before the outline so the stroke stays on top.
func drawObject(c Canvas, d *document.DrawObject, strokeColor, fillColor color.NRGBA) {
	s := Stroke{Color: strokeColor, Width: d.Thickness}
	if d.Dashed {
		s.Dash = DashPattern(d.Thickness)
	}
	fills, strokes := d.FillMode.Fills(), d.FillMode.Strokes()

	switch d.Type {
	case document.DrawPath:
		if len(d.Points) == 1 {
			p := d.Points[0]
			r := d.Thickness / 2
			c.FillEllipse(geom.Rect{X: p.X - r, Y: p.Y - r, W: 2 * r, H: 2 * r}, strokeColor)
			return
		}
		if fills && len(d.Points) >= 3 {
			c.FillPath(d.Points, true, fillColor)
		}
		if strokes || d.IsEraser {
			c.StrokePath(d.Points, false, s)
		}

	case document.DrawPolygon:
		if fills {
			c.FillPath(d.Points, true, fillColor)
		}
		if strokes {
			c.StrokePath(d.Points, true, s)
		}

	case document.DrawLine:
		c.StrokePath([]geom.Vec2{d.A, d.B}, false, s)

	case document.DrawRect:
		r := geom.RectFromCorners(d.A, d.B)
		if fills {
			c.FillRect(r, fillColor)
		}
		if strokes {
			c.StrokeRect(r, s)
		}

	case document.DrawEllipse:
		r := geom.RectFromCorners(d.A, d.B)
		if fills {
			c.FillEllipse(r, fillColor)
		}
		if strokes {
			c.StrokeEllipse(r, s)
		}

	case document.DrawArrow:
		c.StrokePath([]geom.Vec2{d.A, d.B}, false, s)
		if head, ok := ArrowHead(d.A, d.B, d.Thickness); ok {
			c.FillPath(head[:], true, strokeColor)
		}
	}
}

// ArrowHead returns the triangle at b for a shaft from a to b. ok is false
// for a zero-length shaft, which has no direction.
func ArrowHead(a, b geom.Vec2, thickness float64) (head [3]geom.Vec2, ok bool) {
	d := b.Sub(a)
	if d.X == 0 && d.Y == 0 {
		return head, false
	}
	angle := math.Atan2(d.Y, d.X)
	size := math.Max(MinArrowHead, 4*thickness)
	left := geom.V(b.X-size*math.Cos(angle-ArrowSpread), b.Y-size*math.Sin(angle-ArrowSpread))
	right := geom.V(b.X-size*math.Cos(angle+ArrowSpread), b.Y-size*math.Sin(angle+ArrowSpread))
	return [3]geom.Vec2{b, left, right}, true
}

func drawLayerChrome(c Canvas, f *Frame, l *document.Layer) {
	k := f.scale()
	c.StrokeRect(l.Rect(), Stroke{Color: chromeColor, Width: 1.5 / k, Dash: []float64{6 / k, 4 / k}})
	if f.CropToolActive {
		return
	}
	for _, h := range geom.Corners {
		drawHandle(c, l.Rect().Corner(h), f.handleSize()/k, 1/k)
	}
}

func drawEndpointHandles(c Canvas, f *Frame, d *document.DrawObject) {
	k := f.scale()
	size := f.handleSize() / k
	for _, p := range []geom.Vec2{d.A, d.B} {
		r := geom.Rect{X: p.X - size/2, Y: p.Y - size/2, W: size, H: size}
		c.FillEllipse(r, handleFill)
		c.StrokeEllipse(r, Stroke{Color: chromeColor, Width: 1.5 / k})
	}
}

func drawHandle(c Canvas, center geom.Vec2, size, lineWidth float64) {
	r := geom.Rect{X: center.X - size/2, Y: center.Y - size/2, W: size, H: size}
	c.FillRect(r, handleFill)
	c.StrokeRect(r, Stroke{Color: chromeColor, Width: lineWidth})
}

// drawCropOverlay shades everything outside the crop box and marks its
// corners. It works in screen space so the shade covers the whole canvas.
func drawCropOverlay(c Canvas, f *Frame, l *document.Layer, box geom.Rect) {
	w, h := c.Size()
	hole := f.Viewport.Matrix().TransformRect(box.Translate(geom.V(l.X, l.Y)))

	cw, ch := float64(w), float64(h)
	for _, r := range []geom.Rect{
		{X: 0, Y: 0, W: cw, H: hole.Y},
		{X: 0, Y: hole.Y + hole.H, W: cw, H: ch - hole.Y - hole.H},
		{X: 0, Y: hole.Y, W: hole.X, H: hole.H},
		{X: hole.X + hole.W, Y: hole.Y, W: cw - hole.X - hole.W, H: hole.H},
	} {
		if r.W > 0 && r.H > 0 {
			c.FillRect(r, cropShade)
		}
	}
	c.StrokeRect(hole, Stroke{Color: handleFill, Width: 1})
	for _, h := range geom.Corners {
		drawHandle(c, hole.Corner(h), f.handleSize(), 1)
	}
}
