package session

import (
	"encoding/json"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/engine"
)

// Message is the envelope for both directions. Seq echoes the client's
// sequence number on replies so requests can be matched.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client → server
	TypePointerDown   = "pointer.down"
	TypePointerMove   = "pointer.move"
	TypePointerUp     = "pointer.up"
	TypePointerLeave  = "pointer.leave"
	TypePointerCancel = "pointer.cancel"
	TypeWheel         = "wheel"
	TypeKeyDown       = "key.down"
	TypeKeyUp         = "key.up"
	TypeTool          = "tool"
	TypeStyle         = "style"
	TypeResize        = "resize"
	TypeImageLoad     = "image.load"
	TypeCropApply     = "crop.apply"
	TypeCropCancel    = "crop.cancel"
	TypeUndo          = "undo"
	TypeRedo          = "redo"
	TypeDelete        = "delete"
	TypeSnapshotLoad  = "snapshot.load"
	TypeSnapshotGet   = "snapshot.get"
	TypeExport        = "export"

	// Server → client
	TypeWelcome     = "welcome"
	TypeFrame       = "frame"
	TypeImage       = "image"
	TypeImageLoaded = "image.loaded"
	TypeSnapshot    = "snapshot"
	TypeExported    = "exported"
	TypeError       = "error"
)

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
	ClientID  string `json:"clientId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// An image message carries an engine.ImageRef: the key frames use in
// "image" commands and the source to load it from. It is sent once per key.

// FramePayload carries one rendered frame and the toolbar state that goes
// with it.
type FramePayload struct {
	Commands  json.RawMessage `json:"commands"`
	Tool      engine.Tool     `json:"tool"`
	Selection *document.Hit   `json:"selection,omitempty"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
}

type ToolPayload struct {
	Tool engine.Tool `json:"tool"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ImageLoadPayload struct {
	Src string `json:"src"`
}

type ImageLoadedPayload struct {
	LayerID string `json:"layerId"`
}

type ExportPayload struct {
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type ExportedPayload struct {
	Image   string `json:"image"`
	Caption string `json:"caption,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
