package render

import (
	"encoding/json"
	"image"
	"image/color"

	"github.com/inamate/sketchpad/internal/geom"
)

// DrawCommand is a single drawing operation for a browser to execute on a
// Canvas2D context. A frame is a list of these in painter's order.
type DrawCommand struct {
	Op          string        `json:"op"`                    // clear, save, restore, transform, composite, path, rect, ellipse, image
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f]
	Path        []PathCommand `json:"path,omitempty"`        // for "path"
	Rect        *geom.Rect    `json:"rect,omitempty"`        // for "rect", "ellipse", and the "image" destination
	Fill        string        `json:"fill,omitempty"`        // fill color
	Stroke      string        `json:"stroke,omitempty"`      // stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // stroke width
	Dash        []float64     `json:"dash,omitempty"`        // setLineDash pattern
	Composite   string        `json:"composite,omitempty"`   // globalCompositeOperation
	Image       string        `json:"image,omitempty"`       // raster reference the client can load
	Source      *geom.Rect    `json:"source,omitempty"`      // source rectangle for "image"
}

// PathCommand is a single path segment in Canvas2D form: ["M", x, y],
// ["L", x, y] or ["Z"].
type PathCommand []any

// Recorder is a Canvas that records commands instead of painting.
type Recorder struct {
	W, H     int
	Commands []DrawCommand

	// Images maps live rasters to the reference sent to the client.
	// Rasters without an entry are skipped.
	Images map[image.Image]string
}

// NewRecorder returns an empty recorder for a w×h canvas.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, Images: make(map[image.Image]string)}
}

func (r *Recorder) emit(cmd DrawCommand) { r.Commands = append(r.Commands, cmd) }

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) Clear(c color.Color) {
	cmd := DrawCommand{Op: "clear"}
	if n := color.NRGBAModel.Convert(c).(color.NRGBA); n.A > 0 {
		cmd.Fill = CSS(c)
	}
	r.emit(cmd)
}

func (r *Recorder) Save()    { r.emit(DrawCommand{Op: "save"}) }
func (r *Recorder) Restore() { r.emit(DrawCommand{Op: "restore"}) }

func (r *Recorder) Transform(m geom.Matrix2D) {
	r.emit(DrawCommand{Op: "transform", Transform: m.ToSlice()})
}

func (r *Recorder) SetComposite(op Composite) {
	r.emit(DrawCommand{Op: "composite", Composite: op.String()})
}

func (r *Recorder) StrokePath(pts []geom.Vec2, closed bool, s Stroke) {
	r.emit(DrawCommand{Op: "path", Path: pathCommands(pts, closed), Stroke: CSS(s.Color), StrokeWidth: s.Width, Dash: s.Dash})
}

func (r *Recorder) FillPath(pts []geom.Vec2, closed bool, fill color.Color) {
	r.emit(DrawCommand{Op: "path", Path: pathCommands(pts, closed), Fill: CSS(fill)})
}

func (r *Recorder) StrokeEllipse(rect geom.Rect, s Stroke) {
	r.emit(DrawCommand{Op: "ellipse", Rect: &rect, Stroke: CSS(s.Color), StrokeWidth: s.Width, Dash: s.Dash})
}

func (r *Recorder) FillEllipse(rect geom.Rect, fill color.Color) {
	r.emit(DrawCommand{Op: "ellipse", Rect: &rect, Fill: CSS(fill)})
}

func (r *Recorder) StrokeRect(rect geom.Rect, s Stroke) {
	r.emit(DrawCommand{Op: "rect", Rect: &rect, Stroke: CSS(s.Color), StrokeWidth: s.Width, Dash: s.Dash})
}

func (r *Recorder) FillRect(rect geom.Rect, fill color.Color) {
	r.emit(DrawCommand{Op: "rect", Rect: &rect, Fill: CSS(fill)})
}

func (r *Recorder) BlitImage(img image.Image, src, dst geom.Rect) {
	ref, ok := r.Images[img]
	if !ok {
		return
	}
	r.emit(DrawCommand{Op: "image", Image: ref, Source: &src, Rect: &dst})
}

func pathCommands(pts []geom.Vec2, closed bool) []PathCommand {
	out := make([]PathCommand, 0, len(pts)+1)
	for i, p := range pts {
		op := "L"
		if i == 0 {
			op = "M"
		}
		out = append(out, PathCommand{op, p.X, p.Y})
	}
	if closed {
		out = append(out, PathCommand{"Z"})
	}
	return out
}

// MarshalCommands serializes a command list, never returning null.
func MarshalCommands(commands []DrawCommand) ([]byte, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	return json.Marshal(commands)
}
