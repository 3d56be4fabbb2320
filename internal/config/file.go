package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// EditorDefaults tunes new editor sessions: the style given to new shapes
// and how input is interpreted.
type EditorDefaults struct {
	Style           StyleDefaults `yaml:"style"`
	HandleTolerance float64       `yaml:"handle_tolerance"` // screen pixels
	ZoomSensitivity float64       `yaml:"zoom_sensitivity"`
	Background      string        `yaml:"background"`
}

type StyleDefaults struct {
	StrokeColor string  `yaml:"stroke_color"`
	FillColor   string  `yaml:"fill_color"`
	FillMode    string  `yaml:"fill_mode"` // stroke | fill | both
	Thickness   float64 `yaml:"thickness"`
	Dashed      bool    `yaml:"dashed"`
}

// LoadFile reads a YAML editor defaults file.
func LoadFile(path string) (*EditorDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ed EditorDefaults
	if err := yaml.Unmarshal(data, &ed); err != nil {
		return nil, err
	}

	ed.applyDefaults()
	return &ed, nil
}

func (e *EditorDefaults) applyDefaults() {
	if e.Style.StrokeColor == "" {
		e.Style.StrokeColor = "#e11d48"
	}
	if e.Style.FillColor == "" {
		e.Style.FillColor = "#fde68a"
	}
	if e.Style.FillMode == "" {
		e.Style.FillMode = "stroke"
	}
	if e.Style.Thickness <= 0 {
		e.Style.Thickness = 4
	}
	if e.HandleTolerance <= 0 {
		e.HandleTolerance = 8
	}
	if e.ZoomSensitivity <= 0 {
		e.ZoomSensitivity = 0.0015
	}
	if e.Background == "" {
		e.Background = "#f8fafc"
	}
}
