// Package engine is the editor's interaction controller. It owns the scene,
// the undo history and the viewport, turns pointer and keyboard input into
// scene mutations, and produces render frames.
//
// An Engine is single-threaded: every method must be called from the
// goroutine that owns it. Image decoding runs elsewhere and re-enters the
// engine only through the Post hook.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"strconv"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
	"github.com/inamate/sketchpad/internal/history"
	"github.com/inamate/sketchpad/internal/raster"
	"github.com/inamate/sketchpad/internal/render"
	"github.com/inamate/sketchpad/internal/typeid"
)

const (
	// DefaultHandleTolerance is how close, in screen pixels, a pointer must
	// be to a handle to grab it.
	DefaultHandleTolerance = 8
	DefaultWidth           = 1024
	DefaultHeight          = 768

	// MaxDimension bounds each side of the canvas and of an export.
	MaxDimension = 8192
)

var ErrCanvasSize = errors.New("canvas size out of range")

// Options configures a new Engine. Zero values select defaults.
type Options struct {
	Width, Height   int
	HistoryLimit    int
	Style           document.Style
	HandleTolerance float64
	ZoomSensitivity float64
	Background      color.Color

	// Source resolves image references. Defaults to a Resolver without an
	// asset directory.
	Source raster.Source
	// Post runs fn on the engine's goroutine. When nil, completions run
	// directly and Go defaults to inline execution as well, so nothing
	// touches the scene from another goroutine.
	Post func(fn func())
	// Go starts background work. Defaults to a new goroutine when Post is
	// set.
	Go func(fn func())
	// OnChange is called after an asynchronous completion changes the
	// scene, so the owner can redraw.
	OnChange func()

	Logger *slog.Logger
}

// Engine is the interaction controller.
type Engine struct {
	scene   *document.Scene
	history *history.Manager
	loader  *raster.Loader

	tool    Tool
	style   document.Style
	current interaction
	crop    *pendingCrop

	// Pointer capture: while a gesture is active only events from the
	// capturing pointer are processed.
	captured  bool
	captureID int
	panHeld   bool

	width, height   int
	handleTol       float64
	zoomSensitivity float64
	background      color.Color

	rasters   map[string]image.Image
	cropToken int

	// Draw commands name rasters by key; a key's source is handed out once
	// through NewImages.
	imageKeys    map[image.Image]string
	imageSrcs    map[string]string
	unsentImages []ImageRef
	imageSeq     int

	closed    bool
	dirty     bool

	post        func(func())
	goFn        func(func())
	onChange    func()
	unsubscribe []func()
	log         *slog.Logger
}

// New creates an engine with an empty scene.
func New(opts Options) *Engine {
	e := &Engine{
		scene:           document.NewScene(),
		tool:            ToolSelect,
		style:           opts.Style,
		current:         idle{},
		width:           opts.Width,
		height:          opts.Height,
		handleTol:       opts.HandleTolerance,
		zoomSensitivity: opts.ZoomSensitivity,
		background:      opts.Background,
		rasters:         make(map[string]image.Image),
		imageKeys:       make(map[image.Image]string),
		imageSrcs:       make(map[string]string),
		dirty:           true,
		post:            opts.Post,
		goFn:            opts.Go,
		onChange:        opts.OnChange,
		log:             opts.Logger,
	}
	if e.style.Thickness <= 0 {
		e.style = document.DefaultStyle()
	}
	if checkSize(e.width, e.height) != nil {
		e.width, e.height = DefaultWidth, DefaultHeight
	}
	if e.handleTol <= 0 {
		e.handleTol = DefaultHandleTolerance
	}
	if e.zoomSensitivity <= 0 {
		e.zoomSensitivity = geom.DefaultZoomSensitivity
	}
	if e.background == nil {
		e.background = render.DefaultBackground
	}
	if e.post == nil {
		inline := func(fn func()) { fn() }
		e.post = inline
		if e.goFn == nil {
			e.goFn = inline
		}
	}
	if e.log == nil {
		e.log = slog.Default()
	}

	src := opts.Source
	if src == nil {
		src = raster.NewResolver("")
	}
	e.loader = raster.NewLoader(src, e.post)
	e.loader.Go = e.goFn
	e.history = history.New(e, opts.HistoryLimit)
	return e
}

// Close tears the engine down. Outstanding decodes are cancelled and any
// completion that still arrives is ignored.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	for _, unsub := range e.unsubscribe {
		unsub()
	}
	e.unsubscribe = nil
	e.loader.Close()
}

// Subscribe registers the engine as a listener on source. The subscription
// is removed by Close; the returned function removes it earlier.
func (e *Engine) Subscribe(source InputSource) func() {
	unsub := source.Subscribe(e)
	done := false
	remove := func() {
		if !done {
			done = true
			unsub()
		}
	}
	e.unsubscribe = append(e.unsubscribe, remove)
	return remove
}

// --- State accessors ---

func (e *Engine) Scene() *document.Scene { return e.scene }
func (e *Engine) Tool() Tool             { return e.tool }
func (e *Engine) Style() document.Style  { return e.style }
func (e *Engine) Viewport() geom.Viewport {
	return e.scene.Viewport()
}

// State names the active interaction, for diagnostics and tests.
func (e *Engine) State() string { return e.current.name() }

// Selection returns the selected entity, if any.
func (e *Engine) Selection() (document.Hit, bool) { return e.scene.Selection() }

func (e *Engine) CanUndo() bool { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// Size returns the logical canvas size used for export.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// SetSize changes the logical canvas size. Sizes outside
// 1..MaxDimension are rejected.
func (e *Engine) SetSize(w, h int) error {
	if err := checkSize(w, h); err != nil {
		return err
	}
	e.width, e.height = w, h
	e.dirty = true
	return nil
}

func checkSize(w, h int) error {
	if w <= 0 || h <= 0 || w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrCanvasSize, w, h)
	}
	return nil
}

// Dirty reports whether anything changed since the last Frame and clears
// the flag.
func (e *Engine) Dirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}

func (e *Engine) changed() {
	e.dirty = true
}

// notify marks the engine dirty after an asynchronous completion and tells
// the owner.
func (e *Engine) notify() {
	e.dirty = true
	if e.onChange != nil {
		e.onChange()
	}
}

// --- Commands ---

// SetTool switches tools. An in-progress gesture is finished first and a
// half-built polygon is discarded.
func (e *Engine) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool %q", t)
	}
	if t == e.tool {
		return nil
	}
	e.abandonGesture()
	e.tool = t
	e.crop = nil
	if t == ToolCrop {
		if l := e.scene.SelectedLayer(); l != nil {
			e.crop = &pendingCrop{layerID: l.ID, box: geom.Rect{W: l.W, H: l.H}}
		}
	}
	e.changed()
	return nil
}

// SetStyle sets the style used for new shapes.
func (e *Engine) SetStyle(s document.Style) error {
	if err := render.ValidateStyle(s); err != nil {
		return err
	}
	e.style = s
	return nil
}

// DeleteSelection removes the selected entity with a checkpoint. It
// reports whether anything was removed.
func (e *Engine) DeleteSelection() bool {
	hit, ok := e.scene.Selection()
	if !ok {
		return false
	}
	e.history.Checkpoint()
	if err := e.scene.Remove(hit.ID); err != nil {
		e.history.Drop()
		return false
	}
	if e.crop != nil && e.crop.layerID == hit.ID {
		e.crop = nil
	}
	e.changed()
	return true
}

// Undo reverts the last checkpointed action. Any gesture in progress is
// abandoned first.
func (e *Engine) Undo() bool {
	e.abandonGesture()
	ok, err := e.history.Undo()
	if err != nil {
		e.log.Warn("undo rejected", "error", err)
	}
	return ok
}

// Redo re-applies the last undone action.
func (e *Engine) Redo() bool {
	e.abandonGesture()
	ok, err := e.history.Redo()
	if err != nil {
		e.log.Warn("redo rejected", "error", err)
	}
	return ok
}

// --- Snapshots ---

// Snapshot returns a copy of the scene and viewport.
func (e *Engine) Snapshot() document.Snapshot { return e.scene.Snapshot() }

// Restore replaces the scene with snap, re-attaching rasters from the
// cache or decoding them again. It implements history.Store.
func (e *Engine) Restore(snap document.Snapshot) error {
	if err := e.scene.Restore(snap, e.attachRaster); err != nil {
		return err
	}
	e.resetGesture()
	if e.crop != nil && e.scene.Layer(e.crop.layerID) == nil {
		e.crop = nil
	}
	e.changed()
	return nil
}

// LoadSnapshot opens a JSON snapshot as a fresh project: the scene is
// replaced and history is cleared. A malformed snapshot leaves the engine
// untouched.
func (e *Engine) LoadSnapshot(data []byte) error {
	snap, err := document.ParseSnapshot(data)
	if err != nil {
		e.log.Warn("snapshot rejected", "error", err)
		return err
	}
	if err := e.Restore(snap); err != nil {
		return err
	}
	e.crop = nil
	e.history.Reset()
	e.pruneRasters()
	return nil
}

// SnapshotJSON encodes the current snapshot.
func (e *Engine) SnapshotJSON() ([]byte, error) {
	return document.MarshalSnapshot(e.Snapshot())
}

// --- Rendering ---

// Frame assembles the render input for the current state.
func (e *Engine) Frame() render.Frame {
	f := render.Frame{
		Width:          e.width,
		Height:         e.height,
		Background:     e.background,
		Viewport:       e.scene.Viewport(),
		Layers:         e.scene.Layers(),
		Draws:          e.scene.Draws(),
		CropToolActive: e.tool == ToolCrop,
	}
	if hit, ok := e.scene.Selection(); ok {
		if hit.Kind == document.KindLayer {
			f.SelectedLayer = hit.ID
		} else {
			f.SelectedDraw = hit.ID
		}
	}
	switch st := e.current.(type) {
	case *shapeDrafting:
		f.Draft = st.draft
	case *polygonBuilding:
		if len(st.points) >= 2 {
			f.Draft = &document.DrawObject{Type: document.DrawPath, Style: e.style, Points: st.points}
		}
	}
	if e.crop != nil && e.tool == ToolCrop {
		f.Crop = &render.CropOverlay{LayerID: e.crop.layerID, Box: e.crop.box}
	}
	e.dirty = false
	return f
}

// DrawTo renders the current frame onto c.
func (e *Engine) DrawTo(c render.Canvas) {
	render.Draw(c, e.Frame())
}

// Commands renders the current frame into a draw command list. Layer
// images are referenced by key; see NewImages.
func (e *Engine) Commands() []render.DrawCommand {
	rec := render.NewRecorder(e.width, e.height)
	for _, l := range e.scene.Layers() {
		if l.Raster != nil {
			rec.Images[l.Raster] = e.imageKey(l.Raster, l.Src)
		}
	}
	e.DrawTo(rec)
	return rec.Commands
}

// ImageRef ties an image key used in draw commands to the layer source the
// client loads it from.
type ImageRef struct {
	Key string `json:"key"`
	Src string `json:"src"`
}

func (e *Engine) imageKey(img image.Image, src string) string {
	if key, ok := e.imageKeys[img]; ok {
		return key
	}
	e.imageSeq++
	key := "img" + strconv.Itoa(e.imageSeq)
	e.imageKeys[img] = key
	e.imageSrcs[key] = src
	e.unsentImages = append(e.unsentImages, ImageRef{Key: key, Src: src})
	return key
}

// NewImages returns the image keys introduced by Commands since the last
// call. A host sends them before the frame that uses them.
func (e *Engine) NewImages() []ImageRef {
	refs := e.unsentImages
	e.unsentImages = nil
	return refs
}

// ImageSource returns the source behind an image key.
func (e *Engine) ImageSource(key string) (string, bool) {
	src, ok := e.imageSrcs[key]
	return src, ok
}

// Render returns the current frame's draw commands as JSON.
func (e *Engine) Render() string {
	data, err := render.MarshalCommands(e.Commands())
	if err != nil {
		e.log.Error("marshal draw commands", "error", err)
		return "[]"
	}
	return string(data)
}

// Export flattens the scene to PNG at w×h. 0×0 selects the logical canvas
// size.
func (e *Engine) Export(w, h int) ([]byte, error) {
	if w <= 0 && h <= 0 {
		w, h = e.width, e.height
	}
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	return render.Export(e.Frame(), w, h)
}

// --- Images ---

// LoadImage decodes src in the background and adds it as a new layer.
// done, if set, runs on the engine's goroutine with the new layer id or the
// load error; the scene is unchanged on error.
func (e *Engine) LoadImage(ctx context.Context, src string, done func(layerID string, err error)) {
	if e.closed {
		return
	}
	e.loader.Load(ctx, src, func(res raster.Result) {
		if e.closed {
			return
		}
		if res.Err != nil {
			e.log.Warn("image load failed", "error", res.Err)
			if done != nil {
				done("", res.Err)
			}
			return
		}
		id, err := e.AddImage(res.Image, src)
		if err == nil {
			e.notify()
		}
		if done != nil {
			done(id, err)
		}
	})
}

// AddImage adds a decoded raster as a new, selected layer at its natural
// size. Each new layer is offset from the previous one so stacked images
// stay distinguishable.
func (e *Engine) AddImage(img image.Image, src string) (string, error) {
	if src == "" {
		var err error
		if src, err = raster.EncodeDataURL(img); err != nil {
			return "", err
		}
	}
	b := img.Bounds()
	n := float64(len(e.scene.Layers()))
	l := &document.Layer{
		ID:     typeid.NewLayerID(),
		Src:    src,
		X:      n * layerCascade,
		Y:      n * layerCascade,
		W:      float64(b.Dx()),
		H:      float64(b.Dy()),
		Raster: img,
	}

	e.history.Checkpoint()
	if err := e.scene.AddLayer(l); err != nil {
		e.history.Drop()
		return "", err
	}
	e.rasters[src] = img
	e.pruneRasters()
	_ = e.scene.Select(document.KindLayer, l.ID)
	e.changed()
	e.log.Debug("layer added", "layer", l.ID, "w", l.W, "h", l.H)
	return l.ID, nil
}

const layerCascade = 24

// attachRaster gives a restored layer its raster, from the cache when the
// source was decoded before, otherwise through the loader.
func (e *Engine) attachRaster(layerID, src string) {
	if img, ok := e.rasters[src]; ok {
		_ = e.scene.Update(layerID, document.Patch{Raster: img})
		return
	}
	e.loader.Load(context.Background(), src, func(res raster.Result) {
		if e.closed {
			return
		}
		if res.Err != nil {
			e.log.Warn("layer raster decode failed", "layer", layerID, "error", res.Err)
			return
		}
		l := e.scene.Layer(layerID)
		if l == nil || l.Src != src {
			return
		}
		e.rasters[src] = res.Image
		if err := e.scene.Update(layerID, document.Patch{Raster: res.Image}); err != nil {
			e.log.Warn("attach raster", "layer", layerID, "error", err)
			return
		}
		e.notify()
	})
}

// pruneRasters forgets decoded rasters, and their image keys, once neither
// the scene nor history refers to their source.
func (e *Engine) pruneRasters() {
	live := make(map[string]bool)
	kept := make(map[image.Image]bool)
	for _, l := range e.scene.Layers() {
		live[l.Src] = true
		if l.Raster != nil {
			kept[l.Raster] = true
		}
	}
	e.history.Each(func(snap document.Snapshot) {
		for _, l := range snap.Layers {
			live[l.Src] = true
		}
	})

	for src, img := range e.rasters {
		if live[src] {
			kept[img] = true
			continue
		}
		delete(e.rasters, src)
	}
	for img, key := range e.imageKeys {
		if !kept[img] {
			delete(e.imageKeys, img)
			delete(e.imageSrcs, key)
		}
	}
}
