package export

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/inamate/sketchpad/internal/engine"
	"github.com/inamate/sketchpad/internal/raster"
)

// MaxDimension bounds each side of an exported image.
const MaxDimension = engine.MaxDimension

var (
	ErrMissingRaster = errors.New("layer image could not be loaded")
	ErrSize          = errors.New("export size out of range")
)

// Flatten opens a JSON snapshot in a headless engine and renders it to PNG
// at w×h. Layer sources are resolved inline through src.
func Flatten(src raster.Source, snapshot []byte, w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}

	inline := func(fn func()) { fn() }
	e := engine.New(engine.Options{
		Width:  w,
		Height: h,
		Source: src,
		Post:   inline,
		Go:     inline,
		Logger: slog.Default().With("component", "export"),
	})
	defer e.Close()

	if err := e.LoadSnapshot(snapshot); err != nil {
		return nil, err
	}
	for _, l := range e.Scene().Layers() {
		if l.Raster == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingRaster, l.ID)
		}
	}
	return e.Export(w, h)
}
