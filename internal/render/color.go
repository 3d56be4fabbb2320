package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/inamate/sketchpad/internal/document"
)

var (
	Transparent = color.NRGBA{}
	// DefaultBackground is painted under the layers.
	DefaultBackground = color.NRGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff}

	chromeColor    = color.NRGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
	handleFill     = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	cropShade      = color.NRGBA{A: 0x8c}
	draftHighlight = colorful.Color{R: 0.231, G: 0.51, B: 0.965}
)

// ParseColor reads a CSS hex color ("#rgb", "#rrggbb" or "#rrggbbaa") or
// "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "transparent"):
		return Transparent, nil
	case len(s) == 9 && s[0] == '#':
		c := gg.Hex(s)
		return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ValidateStyle reports whether s can be drawn: a known fill mode, a
// positive thickness, and colors ParseColor accepts.
func ValidateStyle(s document.Style) error {
	probe := document.DrawObject{ID: "style", Type: document.DrawLine, Style: s}
	if err := probe.Validate(); err != nil {
		return err
	}
	for _, c := range []string{s.StrokeColor, s.FillColor} {
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// colorOr parses s, falling back when it is malformed.
func colorOr(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// highlight blends c toward the draft accent so a preview reads as
// distinct from committed shapes.
func highlight(c color.NRGBA) color.NRGBA {
	base, ok := colorful.MakeColor(c)
	if !ok {
		base = draftHighlight
	}
	mixed := base.BlendLab(draftHighlight, 0.5).Clamped()
	r, g, b := mixed.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xd0}
}

// CSS formats c for a Canvas2D fillStyle or strokeStyle.
func CSS(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0xff {
		cf, _ := colorful.MakeColor(n)
		return cf.Hex()
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", n.R, n.G, n.B, float64(n.A)/255)
}
