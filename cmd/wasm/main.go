//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/engine"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/raster"
)

var (
	// guard serializes JS callbacks with background completions so the
	// engine only ever sees one caller at a time. Calls back into the page
	// are deferred until it is released, since the page may call straight
	// back in.
	guard engine.Guard
	eng   *engine.Engine
	input *engine.Dispatcher
)

func main() {
	input = engine.NewDispatcher()
	eng = engine.New(engine.Options{
		Source:   raster.NewResolver(""),
		Post:     guard.Do,
		OnChange: func() { guard.Defer(notifyChanged) },
	})
	eng.Subscribe(input)

	sketchpadEngine := js.Global().Get("Object").New()

	// --- Input (frontend → engine) ---
	sketchpadEngine.Set("pointerDown", js.FuncOf(pointer(input.PointerDown)))
	sketchpadEngine.Set("pointerMove", js.FuncOf(pointer(input.PointerMove)))
	sketchpadEngine.Set("pointerUp", js.FuncOf(pointer(input.PointerUp)))
	sketchpadEngine.Set("pointerLeave", js.FuncOf(pointer(input.PointerLeave)))
	sketchpadEngine.Set("pointerCancel", js.FuncOf(pointer(input.PointerCancel)))
	sketchpadEngine.Set("wheel", js.FuncOf(wheel))
	sketchpadEngine.Set("keyDown", js.FuncOf(key(input.KeyDown)))
	sketchpadEngine.Set("keyUp", js.FuncOf(key(input.KeyUp)))

	// --- Commands ---
	sketchpadEngine.Set("setTool", js.FuncOf(setTool))
	sketchpadEngine.Set("setStyle", js.FuncOf(setStyle))
	sketchpadEngine.Set("setSize", js.FuncOf(setSize))
	sketchpadEngine.Set("loadImage", js.FuncOf(loadImage))
	sketchpadEngine.Set("applyCrop", js.FuncOf(applyCrop))
	sketchpadEngine.Set("cancelCrop", js.FuncOf(locked(eng.CancelCrop)))
	sketchpadEngine.Set("undo", js.FuncOf(locked(func() { eng.Undo() })))
	sketchpadEngine.Set("redo", js.FuncOf(locked(func() { eng.Redo() })))
	sketchpadEngine.Set("deleteSelection", js.FuncOf(locked(func() { eng.DeleteSelection() })))
	sketchpadEngine.Set("loadSnapshot", js.FuncOf(loadSnapshot))

	// --- Queries (frontend ← engine) ---
	sketchpadEngine.Set("render", js.FuncOf(render))
	sketchpadEngine.Set("takeImages", js.FuncOf(takeImages))
	sketchpadEngine.Set("exportPNG", js.FuncOf(exportPNG))
	sketchpadEngine.Set("getSnapshot", js.FuncOf(getSnapshot))
	sketchpadEngine.Set("getState", js.FuncOf(getState))

	js.Global().Set("sketchpadEngine", sketchpadEngine)
	js.Global().Set("sketchpadWasmReady", js.ValueOf(true))

	select {}
}

func ok() interface{} { return js.ValueOf(map[string]interface{}{"ok": true}) }

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

// notifyChanged tells the page that an asynchronous completion changed the
// scene and a redraw is due.
func notifyChanged() {
	if cb := js.Global().Get("sketchpadChanged"); cb.Type() == js.TypeFunction {
		cb.Invoke()
	}
}

// result runs fn under the guard and reports its error to the page.
func result(fn func() error) interface{} {
	var err error
	guard.Do(func() { err = fn() })
	if err != nil {
		return fail(err)
	}
	return ok()
}

func locked(fn func()) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		guard.Do(fn)
		return nil
	}
}

// pointer adapts (x, y, shift, pointerId) arguments to a pointer handler.
func pointer(fn func(engine.PointerEvent)) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 2 {
			return nil
		}
		ev := engine.PointerEvent{Pos: geom.V(args[0].Float(), args[1].Float())}
		if len(args) > 2 {
			ev.Shift = args[2].Truthy()
		}
		if len(args) > 3 && args[3].Type() == js.TypeNumber {
			ev.PointerID = args[3].Int()
		}
		guard.Do(func() { fn(ev) })
		return nil
	}
}

// key adapts (key, ctrl, meta, shift) arguments and returns whether the
// key was consumed.
func key(fn func(engine.KeyEvent) bool) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 {
			return js.ValueOf(false)
		}
		ev := engine.KeyEvent{Key: args[0].String()}
		if len(args) > 1 {
			ev.Ctrl = args[1].Truthy()
		}
		if len(args) > 2 {
			ev.Meta = args[2].Truthy()
		}
		if len(args) > 3 {
			ev.Shift = args[3].Truthy()
		}
		var consumed bool
		guard.Do(func() { consumed = fn(ev) })
		return js.ValueOf(consumed)
	}
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	ev := engine.WheelEvent{Pos: geom.V(args[0].Float(), args[1].Float()), DeltaY: args[2].Float()}
	guard.Do(func() { input.Wheel(ev) })
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	tool := engine.Tool(args[0].String())
	return result(func() error { return eng.SetTool(tool) })
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing style JSON"})
	}
	var st document.Style
	if err := json.Unmarshal([]byte(args[0].String()), &st); err != nil {
		return fail(err)
	}
	return result(func() error { return eng.SetStyle(st) })
}

func setSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	w, h := args[0].Int(), args[1].Int()
	return result(func() error { return eng.SetSize(w, h) })
}

// loadImage decodes a source in the background. The optional second
// argument is called with (layerId, error).
func loadImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	src := args[0].String()
	var cb js.Value
	if len(args) > 1 && args[1].Type() == js.TypeFunction {
		cb = args[1]
	}

	guard.Do(func() {
		eng.LoadImage(context.Background(), src, func(layerID string, err error) {
			if cb.IsUndefined() {
				return
			}
			guard.Defer(func() {
				if err != nil {
					cb.Invoke(js.Null(), err.Error())
					return
				}
				cb.Invoke(layerID, js.Null())
			})
		})
	})
	return nil
}

func applyCrop(this js.Value, args []js.Value) interface{} {
	return result(func() error { return eng.ApplyCrop(context.Background()) })
}

func loadSnapshot(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing snapshot JSON"})
	}
	data := []byte(args[0].String())
	return result(func() error { return eng.LoadSnapshot(data) })
}

func render(this js.Value, args []js.Value) interface{} {
	var frame string
	guard.Do(func() { frame = eng.Render() })
	return js.ValueOf(frame)
}

// takeImages returns the image keys the last render introduced as a JSON
// array of {key, src}.
func takeImages(this js.Value, args []js.Value) interface{} {
	var refs []engine.ImageRef
	guard.Do(func() { refs = eng.NewImages() })
	if refs == nil {
		refs = []engine.ImageRef{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

func exportPNG(this js.Value, args []js.Value) interface{} {
	w, h := 0, 0
	if len(args) >= 2 {
		w, h = args[0].Int(), args[1].Int()
	}
	var png []byte
	var err error
	guard.Do(func() { png, err = eng.Export(w, h) })
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(raster.PNGDataURL(png))
}

func getSnapshot(this js.Value, args []js.Value) interface{} {
	var data []byte
	var err error
	guard.Do(func() { data, err = eng.SnapshotJSON() })
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) interface{} {
	state := map[string]interface{}{}
	guard.Do(func() {
		state["tool"] = string(eng.Tool())
		state["interaction"] = eng.State()
		state["canUndo"] = eng.CanUndo()
		state["canRedo"] = eng.CanRedo()
		if hit, ok := eng.Selection(); ok {
			state["selection"] = map[string]interface{}{"kind": string(hit.Kind), "id": hit.ID}
		}
	})
	return js.ValueOf(state)
}
