package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	AssetDir         string `envconfig:"ASSET_DIR" default:"./data/assets"`
	AllowedOrigins   string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	CanvasWidth      int    `envconfig:"CANVAS_WIDTH" default:"1024"`
	CanvasHeight     int    `envconfig:"CANVAS_HEIGHT" default:"768"`
	HistoryLimit     int    `envconfig:"HISTORY_LIMIT" default:"60"`
	// RemoteImageHosts lists hosts layer images may be fetched from by URL.
	// Empty disables server-side fetching.
	RemoteImageHosts string `envconfig:"REMOTE_IMAGE_HOSTS"`
	// EditorDefaults is an optional YAML file with style and input tuning.
	EditorDefaults   string `envconfig:"EDITOR_DEFAULTS"`

	Editor *EditorDefaults `ignored:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("history limit must be positive, got %d", cfg.HistoryLimit)
	}

	if cfg.EditorDefaults != "" {
		ed, err := LoadFile(cfg.EditorDefaults)
		if err != nil {
			return nil, fmt.Errorf("editor defaults %s: %w", cfg.EditorDefaults, err)
		}
		cfg.Editor = ed
	} else {
		cfg.Editor = &EditorDefaults{}
		cfg.Editor.applyDefaults()
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into a list.
func (c *Config) Origins() []string { return splitList(c.AllowedOrigins) }

// RemoteHosts splits RemoteImageHosts into a list.
func (c *Config) RemoteHosts() []string { return splitList(c.RemoteImageHosts) }

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Level maps LogLevel onto a slog level. Unknown names mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
