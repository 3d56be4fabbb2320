package engine

import (
	"context"
	"fmt"

	"github.com/inamate/sketchpad/internal/crop"
	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

// CropBox returns the pending crop box and the layer it belongs to.
func (e *Engine) CropBox() (layerID string, box geom.Rect, ok bool) {
	if e.crop == nil {
		return "", geom.Rect{}, false
	}
	return e.crop.layerID, e.crop.box, true
}

// CancelCrop discards the pending crop box. The scene is not touched.
func (e *Engine) CancelCrop() {
	if _, ok := e.current.(*cropDragging); ok {
		e.toIdle()
	}
	e.crop = nil
	e.changed()
}

// ApplyCrop replaces the target layer's raster with the pending crop box.
// The pixel work runs in the background; the result is committed on the
// engine's goroutine as a single undoable action. A degenerate box is
// dropped with no effect. Errors found before the work starts are
// returned; later ones are logged.
func (e *Engine) ApplyCrop(ctx context.Context) error {
	if e.closed || e.crop == nil {
		return nil
	}
	if _, ok := e.current.(*cropDragging); ok {
		e.finishGesture()
	}
	pc := *e.crop
	e.crop = nil
	e.changed()

	if crop.Degenerate(pc.box) {
		e.log.Debug("crop dropped", "layer", pc.layerID, "w", pc.box.W, "h", pc.box.H)
		return nil
	}
	l := e.scene.Layer(pc.layerID)
	if l == nil {
		return fmt.Errorf("%w: %s", document.ErrNotFound, pc.layerID)
	}
	if l.Raster == nil {
		return fmt.Errorf("%w: %s", crop.ErrNoRaster, l.ID)
	}

	e.cropToken++
	token := e.cropToken
	target := l.Clone()
	e.spawn(func() {
		res, err := crop.Apply(target, pc.box)
		if ctx.Err() != nil {
			return
		}
		e.post(func() { e.commitCrop(token, target, res, err) })
	})
	return nil
}

// commitCrop installs a finished crop unless the engine was closed, a newer
// crop was requested, or the layer was removed or changed meanwhile.
func (e *Engine) commitCrop(token int, target *document.Layer, res crop.Result, err error) {
	if e.closed || token != e.cropToken {
		return
	}
	if err != nil {
		e.log.Warn("crop failed", "layer", target.ID, "error", err)
		return
	}
	l := e.scene.Layer(target.ID)
	if l == nil || l.Src != target.Src || l.Rect() != target.Rect() {
		e.log.Debug("stale crop dropped", "layer", target.ID)
		return
	}

	e.history.Checkpoint()
	err = e.scene.Update(l.ID, document.Patch{
		Rect:      &res.Rect,
		Src:       &res.Src,
		Raster:    res.Raster,
		ClearCrop: true,
	})
	if err != nil {
		e.history.Drop()
		e.log.Warn("commit crop", "layer", l.ID, "error", err)
		return
	}
	e.rasters[res.Src] = res.Raster
	e.pruneRasters()
	e.log.Debug("layer cropped", "layer", l.ID, "w", res.Rect.W, "h", res.Rect.H)
	e.notify()
}

func (e *Engine) spawn(fn func()) {
	if e.goFn != nil {
		e.goFn(fn)
		return
	}
	go fn()
}
