// Package document holds the editable scene: raster layers, vector draw
// objects, the viewport, and the single selected entity.
package document

import (
	"fmt"
	"image"

	"github.com/inamate/sketchpad/internal/geom"
)

// EntityKind says which collection an id belongs to.
type EntityKind string

const (
	KindLayer EntityKind = "layer"
	KindDraw  EntityKind = "draw"
)

// Scene is the live document. It is not safe for concurrent use; the engine
// owns it on a single goroutine.
type Scene struct {
	layers   []*Layer
	draws    []*DrawObject
	viewport geom.Viewport

	selectedLayerID string
	selectedDrawID  string
}

// NewScene creates an empty scene with the identity viewport.
func NewScene() *Scene {
	return &Scene{viewport: geom.NewViewport()}
}

// Layers returns layers in creation order (bottom first).
func (s *Scene) Layers() []*Layer { return s.layers }

// Draws returns draw objects in creation order (bottom first).
func (s *Scene) Draws() []*DrawObject { return s.draws }

func (s *Scene) Viewport() geom.Viewport { return s.viewport }

func (s *Scene) SetViewport(v geom.Viewport) { s.viewport = v }

// Layer looks up a layer by id.
func (s *Scene) Layer(id string) *Layer {
	for _, l := range s.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Draw looks up a draw object by id.
func (s *Scene) Draw(id string) *DrawObject {
	for _, d := range s.draws {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Has reports whether id names any entity.
func (s *Scene) Has(id string) bool {
	return s.Layer(id) != nil || s.Draw(id) != nil
}

// AddLayer appends a layer on top of the existing ones.
func (s *Scene) AddLayer(l *Layer) error {
	if l.ID == "" {
		return fmt.Errorf("%w: layer without id", ErrInvalidGeometry)
	}
	if s.Has(l.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, l.ID)
	}
	if !(l.W > 0 && l.H > 0) {
		return fmt.Errorf("%w: layer %s has size %vx%v", ErrInvalidGeometry, l.ID, l.W, l.H)
	}
	l.Selected = false
	s.layers = append(s.layers, l)
	return nil
}

// AddDraw appends a draw object on top of the existing ones.
func (s *Scene) AddDraw(d *DrawObject) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if s.Has(d.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
	}
	d.Selected = false
	s.draws = append(s.draws, d)
	return nil
}

// Patch is a partial update. Layer fields and draw fields are disjoint; a
// patch that sets a field the target does not have is rejected.
type Patch struct {
	// Layer fields.
	Rect      *geom.Rect
	Crop      *geom.Rect
	ClearCrop bool
	Src       *string
	Raster    image.Image

	// Draw fields.
	Points []geom.Vec2
	A, B   *geom.Vec2
	Style  *Style
}

func (p Patch) touchesLayer() bool {
	return p.Rect != nil || p.Crop != nil || p.ClearCrop || p.Src != nil || p.Raster != nil
}

func (p Patch) touchesDraw() bool {
	return p.Points != nil || p.A != nil || p.B != nil || p.Style != nil
}

// Update applies patch to the entity named by id.
func (s *Scene) Update(id string, p Patch) error {
	if l := s.Layer(id); l != nil {
		if p.touchesDraw() {
			return fmt.Errorf("%w: draw fields on layer %s", ErrInvalidPatch, id)
		}
		return s.updateLayer(l, p)
	}
	if d := s.Draw(id); d != nil {
		if p.touchesLayer() {
			return fmt.Errorf("%w: layer fields on draw %s", ErrInvalidPatch, id)
		}
		return s.updateDraw(d, p)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Scene) updateLayer(l *Layer, p Patch) error {
	next := l.Clone()
	if p.Rect != nil {
		if !p.Rect.Valid() || p.Rect.IsEmpty() {
			return fmt.Errorf("%w: layer rect %+v", ErrInvalidGeometry, *p.Rect)
		}
		next.SetRect(*p.Rect)
	}
	if p.ClearCrop {
		next.Crop = nil
	}
	if p.Crop != nil {
		if !p.Crop.Valid() || p.Crop.IsEmpty() {
			return fmt.Errorf("%w: crop %+v", ErrInvalidGeometry, *p.Crop)
		}
		c := *p.Crop
		next.Crop = &c
	}
	if p.Src != nil {
		next.Src = *p.Src
	}
	if p.Raster != nil {
		next.Raster = p.Raster
	}
	next.FitCrop()
	*l = *next
	return nil
}

func (s *Scene) updateDraw(d *DrawObject, p Patch) error {
	next := d.Clone()
	if p.Points != nil {
		if !next.Type.HasPoints() {
			return fmt.Errorf("%w: points on %s", ErrInvalidPatch, next.Type)
		}
		next.Points = append([]geom.Vec2(nil), p.Points...)
	}
	if p.A != nil || p.B != nil {
		if !next.Type.HasEndpoints() {
			return fmt.Errorf("%w: endpoints on %s", ErrInvalidPatch, next.Type)
		}
		if p.A != nil {
			next.A = *p.A
		}
		if p.B != nil {
			next.B = *p.B
		}
	}
	if p.Style != nil {
		next.Style = *p.Style
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*d = *next
	return nil
}

// Remove deletes an entity, dropping it from the selection if needed.
func (s *Scene) Remove(id string) error {
	for i, l := range s.layers {
		if l.ID == id {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			if s.selectedLayerID == id {
				s.selectedLayerID = ""
			}
			return nil
		}
	}
	for i, d := range s.draws {
		if d.ID == id {
			s.draws = append(s.draws[:i], s.draws[i+1:]...)
			if s.selectedDrawID == id {
				s.selectedDrawID = ""
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Select makes the named entity the only selected one.
func (s *Scene) Select(kind EntityKind, id string) error {
	switch kind {
	case KindLayer:
		if s.Layer(id) == nil {
			return fmt.Errorf("%w: layer %s", ErrNotFound, id)
		}
		s.selectedLayerID, s.selectedDrawID = id, ""
	case KindDraw:
		if s.Draw(id) == nil {
			return fmt.Errorf("%w: draw %s", ErrNotFound, id)
		}
		s.selectedLayerID, s.selectedDrawID = "", id
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrNotFound, kind)
	}
	s.syncSelectedFlags()
	return nil
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() {
	s.selectedLayerID, s.selectedDrawID = "", ""
	s.syncSelectedFlags()
}

// Selection returns the selected entity, if any.
func (s *Scene) Selection() (Hit, bool) {
	switch {
	case s.selectedLayerID != "":
		return Hit{Kind: KindLayer, ID: s.selectedLayerID}, true
	case s.selectedDrawID != "":
		return Hit{Kind: KindDraw, ID: s.selectedDrawID}, true
	}
	return Hit{}, false
}

// SelectedLayer returns the selected layer or nil.
func (s *Scene) SelectedLayer() *Layer {
	if s.selectedLayerID == "" {
		return nil
	}
	return s.Layer(s.selectedLayerID)
}

// SelectedDraw returns the selected draw object or nil.
func (s *Scene) SelectedDraw() *DrawObject {
	if s.selectedDrawID == "" {
		return nil
	}
	return s.Draw(s.selectedDrawID)
}

func (s *Scene) syncSelectedFlags() {
	for _, l := range s.layers {
		l.Selected = l.ID == s.selectedLayerID
	}
	for _, d := range s.draws {
		d.Selected = d.ID == s.selectedDrawID
	}
}
