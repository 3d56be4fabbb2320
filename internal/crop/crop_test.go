package crop

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

// gradient gives every pixel a unique color so crops can be compared.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func sameImage(t *testing.T, got, want image.Image) {
	t.Helper()
	gb, wb := got.Bounds(), want.Bounds()
	if gb.Dx() != wb.Dx() || gb.Dy() != wb.Dy() {
		t.Fatalf("size: got %dx%d, want %dx%d", gb.Dx(), gb.Dy(), wb.Dx(), wb.Dy())
	}
	for y := range gb.Dy() {
		for x := range gb.Dx() {
			r1, g1, b1, a1 := got.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			r2, g2, b2, a2 := want.At(wb.Min.X+x, wb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) differs", x, y)
			}
		}
	}
}

func TestSourceRect(t *testing.T) {
	tests := []struct {
		name  string
		layer document.Layer
		box   geom.Rect
		want  geom.Rect
	}{
		{
			name:  "no crop, display at 2x",
			layer: document.Layer{W: 200, H: 160, Raster: gradient(100, 80)},
			box:   geom.Rect{X: 20, Y: 40, W: 100, H: 60},
			want:  geom.Rect{X: 10, Y: 20, W: 50, H: 30},
		},
		{
			name:  "existing crop offsets and scales",
			layer: document.Layer{W: 50, H: 50, Crop: &geom.Rect{X: 10, Y: 10, W: 100, H: 100}},
			box:   geom.Rect{X: 5, Y: 10, W: 25, H: 20},
			want:  geom.Rect{X: 20, Y: 30, W: 50, H: 40},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SourceRect(&tt.layer, tt.box)
			if !ok || got != tt.want {
				t.Errorf("got %+v (%v), want %+v", got, ok, tt.want)
			}
		})
	}
}

func TestDegenerateIsRejected(t *testing.T) {
	l := &document.Layer{ID: "l", W: 100, H: 100, Raster: gradient(100, 100)}
	for _, box := range []geom.Rect{{W: 1, H: 50}, {W: 50, H: 1.5}, {}} {
		if !Degenerate(box) {
			t.Errorf("Degenerate(%+v) = false", box)
		}
		if _, err := Apply(l, box); !errors.Is(err, ErrDegenerate) {
			t.Errorf("Apply(%+v): got %v", box, err)
		}
	}
	if Degenerate(geom.Rect{W: 2, H: 2}) {
		t.Error("2x2 box should be applied")
	}
}

func TestApplyWithoutRaster(t *testing.T) {
	l := &document.Layer{ID: "l", W: 100, H: 100}
	if _, err := Apply(l, geom.Rect{W: 10, H: 10}); !errors.Is(err, ErrNoRaster) {
		t.Errorf("got %v, want ErrNoRaster", err)
	}
}

func TestApplyPlacesResult(t *testing.T) {
	l := &document.Layer{ID: "l", X: 100, Y: 50, W: 200, H: 160, Raster: gradient(100, 80)}
	res, err := Apply(l, geom.Rect{X: 20, Y: 40, W: 100, H: 60})
	if err != nil {
		t.Fatal(err)
	}
	want := geom.Rect{X: 120, Y: 90, W: 50, H: 30}
	if res.Rect != want {
		t.Errorf("rect: got %+v, want %+v", res.Rect, want)
	}
	if res.Src == "" {
		t.Error("expected a data URL source")
	}
	r, g, _, _ := res.Raster.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 {
		t.Errorf("origin pixel came from (%d,%d), want (10,20)", r>>8, g>>8)
	}
}

func TestCropComposes(t *testing.T) {
	orig := gradient(120, 90)
	l := &document.Layer{ID: "l", W: 240, H: 180, Raster: orig}

	// R1 in display space (scale 2), then R2 in the post-R1 display space.
	r1 := geom.Rect{X: 20, Y: 40, W: 120, H: 80}
	first, err := Apply(l, r1)
	if err != nil {
		t.Fatal(err)
	}
	next := &document.Layer{ID: "l", X: first.Rect.X, Y: first.Rect.Y, W: first.Rect.W, H: first.Rect.H, Raster: first.Raster}
	r2 := geom.Rect{X: 10, Y: 5, W: 30, H: 20}
	second, err := Apply(next, r2)
	if err != nil {
		t.Fatal(err)
	}

	// R1 maps to source (10,20,60,40); R2 is 1:1 within it.
	once, err := Rasterize(orig, geom.Rect{X: 20, Y: 25, W: 30, H: 20})
	if err != nil {
		t.Fatal(err)
	}
	sameImage(t, second.Raster, once)
}

func TestRasterizeClipsToSource(t *testing.T) {
	img, err := Rasterize(gradient(10, 10), geom.Rect{X: 5, Y: 5, W: 20, H: 20})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 5 {
		t.Errorf("bounds %v, want 5x5", b)
	}
	if _, err := Rasterize(gradient(10, 10), geom.Rect{X: 20, Y: 20, W: 5, H: 5}); !errors.Is(err, ErrDegenerate) {
		t.Errorf("outside source: got %v", err)
	}
}
