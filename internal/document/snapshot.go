package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/sketchpad/internal/geom"
)

// LayerRecord is the serializable form of a Layer. Src is a re-decodable
// reference (data URL, asset path or http URL) instead of a live raster.
type LayerRecord struct {
	ID   string     `json:"id"`
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	W    float64    `json:"w"`
	H    float64    `json:"h"`
	Crop *geom.Rect `json:"crop,omitempty"`
	Src  string     `json:"src"`
}

// Snapshot is a structurally complete copy of the scene and viewport.
type Snapshot struct {
	Layers []LayerRecord `json:"layers"`
	Draws  []DrawObject  `json:"draws"`
	Scale  float64       `json:"scale"`
	Offset geom.Vec2     `json:"offset"`
}

// Viewport returns the snapshot's pan/zoom state.
func (s Snapshot) Viewport() geom.Viewport {
	return geom.Viewport{Scale: s.Scale, Offset: s.Offset}
}

// DecodeFunc starts decoding src for the layer id. It may complete later;
// the caller attaches the raster through Scene.Update.
type DecodeFunc func(layerID, src string)

// Snapshot returns a deep copy of the scene.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Layers: make([]LayerRecord, 0, len(s.layers)),
		Draws:  make([]DrawObject, 0, len(s.draws)),
		Scale:  s.viewport.Scale,
		Offset: s.viewport.Offset,
	}
	for _, l := range s.layers {
		rec := LayerRecord{ID: l.ID, X: l.X, Y: l.Y, W: l.W, H: l.H, Src: l.Src}
		if l.Crop != nil {
			c := *l.Crop
			rec.Crop = &c
		}
		snap.Layers = append(snap.Layers, rec)
	}
	for _, d := range s.draws {
		c := d.Clone()
		c.Selected = false
		snap.Draws = append(snap.Draws, *c)
	}
	return snap
}

// Validate checks a snapshot without touching any scene.
func (snap Snapshot) Validate() error {
	if !snap.Viewport().Valid() {
		return fmt.Errorf("%w: viewport scale %v offset %v", ErrInvalidSnapshot, snap.Scale, snap.Offset)
	}

	seen := make(map[string]bool, len(snap.Layers)+len(snap.Draws))
	for _, l := range snap.Layers {
		if l.ID == "" || seen[l.ID] {
			return fmt.Errorf("%w: missing or duplicate layer id %q", ErrInvalidSnapshot, l.ID)
		}
		seen[l.ID] = true
		if l.Src == "" {
			return fmt.Errorf("%w: layer %s has no source", ErrInvalidSnapshot, l.ID)
		}
		r := geom.Rect{X: l.X, Y: l.Y, W: l.W, H: l.H}
		if !r.Valid() || r.IsEmpty() {
			return fmt.Errorf("%w: layer %s rect %+v", ErrInvalidSnapshot, l.ID, r)
		}
		if l.Crop != nil && (!l.Crop.Valid() || l.Crop.IsEmpty() || l.Crop.X < 0 || l.Crop.Y < 0) {
			return fmt.Errorf("%w: layer %s crop %+v", ErrInvalidSnapshot, l.ID, *l.Crop)
		}
	}
	for i := range snap.Draws {
		d := &snap.Draws[i]
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidSnapshot, d.ID)
		}
		seen[d.ID] = true
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}
	return nil
}

// Restore replaces the scene contents with snap. The snapshot is validated
// first; on error the scene is left untouched. Selection is cleared and
// decode is called once per layer so its raster can be re-attached.
func (s *Scene) Restore(snap Snapshot, decode DecodeFunc) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	layers := make([]*Layer, 0, len(snap.Layers))
	for _, rec := range snap.Layers {
		l := &Layer{ID: rec.ID, Src: rec.Src, X: rec.X, Y: rec.Y, W: rec.W, H: rec.H}
		if rec.Crop != nil {
			c := *rec.Crop
			l.Crop = &c
		}
		layers = append(layers, l)
	}
	draws := make([]*DrawObject, 0, len(snap.Draws))
	for i := range snap.Draws {
		d := snap.Draws[i].Clone()
		d.Selected = false
		draws = append(draws, d)
	}

	s.layers = layers
	s.draws = draws
	s.viewport = snap.Viewport()
	s.ClearSelection()

	if decode != nil {
		for _, l := range layers {
			decode(l.ID, l.Src)
		}
	}
	return nil
}

// snapshotJSON uses pointers so absent top-level fields can be told apart
// from zero values.
type snapshotJSON struct {
	Layers *[]LayerRecord `json:"layers"`
	Draws  *[]DrawObject  `json:"draws"`
	Scale  *float64       `json:"scale"`
	Offset *geom.Vec2     `json:"offset"`
}

// ParseSnapshot decodes and validates a JSON snapshot.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var w snapshotJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if w.Layers == nil || w.Draws == nil || w.Scale == nil || w.Offset == nil {
		return Snapshot{}, fmt.Errorf("%w: missing layers, draws, scale or offset", ErrInvalidSnapshot)
	}

	snap := Snapshot{Layers: *w.Layers, Draws: *w.Draws, Scale: *w.Scale, Offset: *w.Offset}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// IsInvalidSnapshot reports whether err came from snapshot validation.
func IsInvalidSnapshot(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot)
}

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(snap Snapshot) ([]byte, error) {
	if snap.Layers == nil {
		snap.Layers = []LayerRecord{}
	}
	if snap.Draws == nil {
		snap.Draws = []DrawObject{}
	}
	return json.Marshal(snap)
}
