package session

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/inamate/sketchpad/internal/config"
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/engine"
	"github.com/inamate/sketchpad/internal/raster"
	"github.com/inamate/sketchpad/internal/render"
)

// Options configures the engine every new session starts with.
type Options struct {
	Width, Height   int
	HistoryLimit    int
	Style           document.Style
	HandleTolerance float64
	ZoomSensitivity float64
	Background      color.Color
	Source          raster.Source
}

// OptionsFromConfig builds session options from the server configuration.
// A malformed defaults file is reported rather than silently ignored.
func OptionsFromConfig(cfg *config.Config, source raster.Source) (Options, error) {
	opts := Options{
		Width:        cfg.CanvasWidth,
		Height:       cfg.CanvasHeight,
		HistoryLimit: cfg.HistoryLimit,
		Source:       source,
	}
	ed := cfg.Editor
	if ed == nil {
		return opts, nil
	}

	opts.Style = document.Style{
		StrokeColor: ed.Style.StrokeColor,
		FillColor:   ed.Style.FillColor,
		FillMode:    document.FillMode(ed.Style.FillMode),
		Thickness:   ed.Style.Thickness,
		Dashed:      ed.Style.Dashed,
	}
	if err := render.ValidateStyle(opts.Style); err != nil {
		return opts, fmt.Errorf("editor style: %w", err)
	}

	bg, err := render.ParseColor(ed.Background)
	if err != nil {
		return opts, fmt.Errorf("editor background: %w", err)
	}
	opts.Background = bg
	opts.HandleTolerance = ed.HandleTolerance
	opts.ZoomSensitivity = ed.ZoomSensitivity
	return opts, nil
}

func (o Options) engineOptions(post func(func()), log *slog.Logger) engine.Options {
	return engine.Options{
		Width:           o.Width,
		Height:          o.Height,
		HistoryLimit:    o.HistoryLimit,
		Style:           o.Style,
		HandleTolerance: o.HandleTolerance,
		ZoomSensitivity: o.ZoomSensitivity,
		Background:      o.Background,
		Source:          o.Source,
		Post:            post,
		Logger:          log,
	}
}
