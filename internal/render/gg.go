package render

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/inamate/sketchpad/internal/geom"
)

var eraseInk = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// GGCanvas rasterizes onto an in-memory pixmap with gogpu/gg.
//
// gg has no destination-out operator for direct drawing, so erase-mode
// paint is rendered into a coverage mask with the same transform and then
// subtracted from the pixmap.
type GGCanvas struct {
	dc *gg.Context
	pm *gg.Pixmap
	w  int
	h  int

	composite Composite
	saved     []Composite
	buffers   map[image.Image]*gg.ImageBuf
	err       error
}

// NewGGCanvas allocates a transparent w×h canvas.
func NewGGCanvas(w, h int) *GGCanvas {
	pm := gg.NewPixmap(w, h)
	return &GGCanvas{
		dc:      gg.NewContext(w, h, gg.WithPixmap(pm)),
		pm:      pm,
		w:       w,
		h:       h,
		buffers: make(map[image.Image]*gg.ImageBuf),
	}
}

// Err returns the first rasterization error, if any.
func (c *GGCanvas) Err() error { return c.err }

// Image returns a copy of the canvas pixels.
func (c *GGCanvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the canvas as PNG.
func (c *GGCanvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *GGCanvas) Close() error { return c.dc.Close() }

func (c *GGCanvas) Size() (int, int) { return c.w, c.h }

func (c *GGCanvas) Clear(col color.Color) {
	c.dc.ClearWithColor(gg.FromColor(col))
}

func (c *GGCanvas) Save() {
	c.dc.Push()
	c.saved = append(c.saved, c.composite)
}

func (c *GGCanvas) Restore() {
	c.dc.Pop()
	if n := len(c.saved); n > 0 {
		c.composite = c.saved[n-1]
		c.saved = c.saved[:n-1]
	}
}

func (c *GGCanvas) Transform(m geom.Matrix2D) {
	c.dc.Transform(toGGMatrix(m))
}

func (c *GGCanvas) SetComposite(op Composite) { c.composite = op }

func (c *GGCanvas) StrokePath(pts []geom.Vec2, closed bool, s Stroke) {
	if len(pts) == 0 {
		return
	}
	c.paint(s.Color, func(dc *gg.Context, col color.Color) error {
		setStroke(dc, col, s)
		tracePolyline(dc, pts, closed)
		return dc.Stroke()
	})
}

func (c *GGCanvas) FillPath(pts []geom.Vec2, closed bool, fill color.Color) {
	if len(pts) < 3 {
		return
	}
	c.paint(fill, func(dc *gg.Context, col color.Color) error {
		dc.SetColor(col)
		tracePolyline(dc, pts, true)
		return dc.Fill()
	})
}

func (c *GGCanvas) StrokeEllipse(r geom.Rect, s Stroke) {
	c.paint(s.Color, func(dc *gg.Context, col color.Color) error {
		setStroke(dc, col, s)
		traceEllipse(dc, r)
		return dc.Stroke()
	})
}

func (c *GGCanvas) FillEllipse(r geom.Rect, fill color.Color) {
	c.paint(fill, func(dc *gg.Context, col color.Color) error {
		dc.SetColor(col)
		traceEllipse(dc, r)
		return dc.Fill()
	})
}

func (c *GGCanvas) StrokeRect(r geom.Rect, s Stroke) {
	c.paint(s.Color, func(dc *gg.Context, col color.Color) error {
		setStroke(dc, col, s)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		return dc.Stroke()
	})
}

func (c *GGCanvas) FillRect(r geom.Rect, fill color.Color) {
	c.paint(fill, func(dc *gg.Context, col color.Color) error {
		dc.SetColor(col)
		dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		return dc.Fill()
	})
}

func (c *GGCanvas) BlitImage(img image.Image, src, dst geom.Rect) {
	buf, ok := c.buffers[img]
	if !ok {
		buf = gg.ImageBufFromImage(img)
		c.buffers[img] = buf
	}
	sr := image.Rect(
		int(math.Round(src.X)), int(math.Round(src.Y)),
		int(math.Round(src.X+src.W)), int(math.Round(src.Y+src.H)),
	)
	c.dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.W,
		DstHeight:     dst.H,
		SrcRect:       &sr,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
		BlendMode:     gg.BlendNormal,
	})
}

// paint runs draw directly in normal mode. In erase mode it draws opaque
// ink into a scratch mask and removes that coverage from the pixmap.
func (c *GGCanvas) paint(col color.Color, draw func(dc *gg.Context, col color.Color) error) {
	if col == nil {
		return
	}
	if c.composite != CompositeErase {
		c.record(draw(c.dc, col))
		return
	}

	maskPM := gg.NewPixmap(c.w, c.h)
	mask := gg.NewContext(c.w, c.h, gg.WithPixmap(maskPM))
	defer mask.Close()
	mask.SetTransform(c.dc.GetTransform())
	if err := draw(mask, eraseInk); err != nil {
		c.record(err)
		return
	}
	destinationOut(c.pm.Data(), maskPM.Data())
}

func (c *GGCanvas) record(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// destinationOut scales every premultiplied destination pixel by the
// inverse of the mask's alpha.
func destinationOut(dst, mask []uint8) {
	for i := 3; i < len(mask) && i < len(dst); i += 4 {
		m := uint32(mask[i])
		if m == 0 {
			continue
		}
		keep := 255 - m
		for j := i - 3; j <= i; j++ {
			dst[j] = uint8((uint32(dst[j])*keep + 127) / 255)
		}
	}
}

func setStroke(dc *gg.Context, col color.Color, s Stroke) {
	dc.SetColor(col)
	dc.SetLineWidth(s.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	if len(s.Dash) > 0 {
		dc.SetDash(s.Dash...)
	} else {
		dc.ClearDash()
	}
}

func tracePolyline(dc *gg.Context, pts []geom.Vec2, closed bool) {
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	if closed {
		dc.ClosePath()
	}
}

func traceEllipse(dc *gg.Context, r geom.Rect) {
	c := r.Center()
	dc.DrawEllipse(c.X, c.Y, r.W/2, r.H/2)
}

// toGGMatrix converts from the Canvas2D [a b c d e f] layout to gg's
// row-major form.
func toGGMatrix(m geom.Matrix2D) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}
