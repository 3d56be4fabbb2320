// Package session runs one editor per websocket connection. A single
// goroutine owns each session's engine: client messages, decode completions
// and crop results are all funnelled into it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/engine"
	"github.com/inamate/sketchpad/internal/raster"
	"github.com/inamate/sketchpad/internal/render"
	"github.com/inamate/sketchpad/internal/typeid"
)

type Session struct {
	ID     string
	client *Client
	engine *engine.Engine

	// posts carries background completions onto the owning goroutine.
	posts chan func()
	done  chan struct{}
	log   *slog.Logger
}

func New(client *Client, opts Options) *Session {
	s := &Session{
		ID:     typeid.NewSessionID(),
		client: client,
		posts:  make(chan func(), 16),
		done:   make(chan struct{}),
	}
	s.log = slog.Default().With("session", s.ID, "client", client.ClientID)
	s.engine = engine.New(opts.engineOptions(s.post, s.log))
	return s
}

// post hands fn to the session loop. After the loop has stopped fn is
// discarded, so a late completion never blocks its goroutine.
func (s *Session) post(fn func()) {
	select {
	case s.posts <- fn:
	case <-s.done:
	}
}

// Run owns the engine until the client's inbox closes or ctx ends. A frame
// is pushed after every step that changed what is on screen.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		close(s.done)
		s.engine.Close()
		s.log.Info("session ended")
	}()

	w, h := s.engine.Size()
	s.reply(0, TypeWelcome, WelcomePayload{SessionID: s.ID, ClientID: s.client.ClientID, Width: w, Height: h})
	s.sendFrame()

	for {
		select {
		case msg, ok := <-s.client.inbox:
			if !ok {
				return
			}
			s.handle(ctx, msg)
		case fn := <-s.posts:
			fn()
		case <-ctx.Done():
			return
		}
		if s.engine.Dirty() {
			s.sendFrame()
		}
	}
}

func (s *Session) handle(ctx context.Context, msg *Message) {
	e := s.engine

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp, TypePointerLeave, TypePointerCancel:
		var ev engine.PointerEvent
		if !s.decode(msg, &ev) {
			return
		}
		switch msg.Type {
		case TypePointerDown:
			e.PointerDown(ev)
		case TypePointerMove:
			e.PointerMove(ev)
		case TypePointerUp:
			e.PointerUp(ev)
		case TypePointerLeave:
			e.PointerLeave(ev)
		default:
			e.PointerCancel(ev)
		}

	case TypeWheel:
		var ev engine.WheelEvent
		if s.decode(msg, &ev) {
			e.Wheel(ev)
		}

	case TypeKeyDown, TypeKeyUp:
		var ev engine.KeyEvent
		if !s.decode(msg, &ev) {
			return
		}
		if msg.Type == TypeKeyDown {
			e.KeyDown(ev)
		} else {
			e.KeyUp(ev)
		}

	case TypeTool:
		var p ToolPayload
		if s.decode(msg, &p) {
			s.check(msg, e.SetTool(p.Tool))
		}

	case TypeStyle:
		var st document.Style
		if s.decode(msg, &st) {
			s.check(msg, e.SetStyle(st))
		}

	case TypeResize:
		var p ResizePayload
		if s.decode(msg, &p) {
			s.check(msg, e.SetSize(p.Width, p.Height))
		}

	case TypeImageLoad:
		var p ImageLoadPayload
		if !s.decode(msg, &p) {
			return
		}
		e.LoadImage(ctx, p.Src, func(layerID string, err error) {
			if err != nil {
				s.fail(msg.Seq, err)
				return
			}
			s.reply(msg.Seq, TypeImageLoaded, ImageLoadedPayload{LayerID: layerID})
		})

	case TypeCropApply:
		s.check(msg, e.ApplyCrop(ctx))
	case TypeCropCancel:
		e.CancelCrop()
	case TypeUndo:
		e.Undo()
	case TypeRedo:
		e.Redo()
	case TypeDelete:
		e.DeleteSelection()

	case TypeSnapshotLoad:
		s.check(msg, e.LoadSnapshot(msg.Payload))

	case TypeSnapshotGet:
		data, err := e.SnapshotJSON()
		if err != nil {
			s.fail(msg.Seq, err)
			return
		}
		s.reply(msg.Seq, TypeSnapshot, json.RawMessage(data))

	case TypeExport:
		var p ExportPayload
		if len(msg.Payload) > 0 && !s.decode(msg, &p) {
			return
		}
		png, err := e.Export(p.Width, p.Height)
		if err != nil {
			s.fail(msg.Seq, err)
			return
		}
		s.reply(msg.Seq, TypeExported, ExportedPayload{Image: raster.PNGDataURL(png), Caption: p.Caption})

	default:
		s.log.Warn("unknown message type", "type", msg.Type)
		s.fail(msg.Seq, fmt.Errorf("unknown message type %q", msg.Type))
	}
}

func (s *Session) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		s.fail(msg.Seq, fmt.Errorf("invalid %s payload: %w", msg.Type, err))
		return false
	}
	return true
}

func (s *Session) check(msg *Message, err error) {
	if err != nil {
		s.fail(msg.Seq, err)
	}
}

// sendFrame pushes the current frame, preceded by the source of any image
// the frame references for the first time.
func (s *Session) sendFrame() {
	commands, err := render.MarshalCommands(s.engine.Commands())
	if err != nil {
		s.log.Error("marshal frame", "error", err)
		return
	}
	for _, ref := range s.engine.NewImages() {
		s.reply(0, TypeImage, ref)
	}
	p := FramePayload{
		Commands: commands,
		Tool:     s.engine.Tool(),
		CanUndo:  s.engine.CanUndo(),
		CanRedo:  s.engine.CanRedo(),
	}
	if hit, ok := s.engine.Selection(); ok {
		p.Selection = &hit
	}
	s.reply(0, TypeFrame, p)
}

func (s *Session) reply(seq int64, typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("marshal payload", "type", typ, "error", err)
		return
	}
	s.client.Send(&Message{Type: typ, Seq: seq, Payload: data})
}

func (s *Session) fail(seq int64, err error) {
	s.log.Debug("request failed", "seq", seq, "error", err)
	s.reply(seq, TypeError, ErrorPayload{Message: err.Error()})
}
