package document

import (
	"encoding/json"
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/inamate/sketchpad/internal/geom"
)

func rectDraw(id string, a, b geom.Vec2) *DrawObject {
	return &DrawObject{ID: id, Type: DrawRect, Style: DefaultStyle(), A: a, B: b}
}

func pathDraw(id string, pts ...geom.Vec2) *DrawObject {
	return &DrawObject{ID: id, Type: DrawPath, Style: DefaultStyle(), Points: pts}
}

func testLayer(id string, x, y, w, h float64) *Layer {
	return &Layer{
		ID: id, Src: "data:image/png;base64,AAAA",
		X: x, Y: y, W: w, H: h,
		Raster: image.NewRGBA(image.Rect(0, 0, int(w), int(h))),
	}
}

func mustAdd(t *testing.T, s *Scene, entities ...any) {
	t.Helper()
	for _, e := range entities {
		var err error
		switch v := e.(type) {
		case *Layer:
			err = s.AddLayer(v)
		case *DrawObject:
			err = s.AddDraw(v)
		}
		if err != nil {
			t.Fatalf("add %T: %v", e, err)
		}
	}
}

func TestAddRejectsDuplicateIDsAcrossCollections(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, testLayer("x", 0, 0, 10, 10))

	err := s.AddDraw(rectDraw("x", geom.V(0, 0), geom.V(1, 1)))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("got %v, want ErrDuplicateID", err)
	}
}

func TestDrawValidation(t *testing.T) {
	tests := []struct {
		name string
		d    *DrawObject
		ok   bool
	}{
		{"path one point", pathDraw("p", geom.V(1, 1)), true},
		{"path empty", pathDraw("p"), false},
		{"polygon two points", &DrawObject{ID: "g", Type: DrawPolygon, Style: DefaultStyle(), Points: []geom.Vec2{{}, {X: 1}}}, false},
		{"polygon three points", &DrawObject{ID: "g", Type: DrawPolygon, Style: DefaultStyle(), Points: []geom.Vec2{{}, {X: 1}, {Y: 1}}}, true},
		{"zero thickness", &DrawObject{ID: "l", Type: DrawLine, Style: Style{FillMode: FillStroke}}, false},
		{"eraser on rect", &DrawObject{ID: "r", Type: DrawRect, Style: DefaultStyle(), IsEraser: true}, false},
		{"unknown type", &DrawObject{ID: "q", Type: "blob", Style: DefaultStyle()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestHitTestContainment(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, rectDraw("r", geom.V(10, 10), geom.V(50, 40)))

	hit, ok := s.HitTest(geom.V(30, 25))
	if !ok || hit.ID != "r" || hit.Kind != KindDraw {
		t.Errorf("inside: got %+v,%v", hit, ok)
	}
	if _, ok := s.HitTest(geom.V(5, 5)); ok {
		t.Error("outside: expected no hit")
	}
}

func TestHitTestOrder(t *testing.T) {
	s := NewScene()
	mustAdd(t, s,
		testLayer("bottom", 0, 0, 100, 100),
		testLayer("top", 50, 50, 100, 100),
		rectDraw("old", geom.V(0, 0), geom.V(20, 20)),
		rectDraw("new", geom.V(20, 20), geom.V(0, 0)),
	)

	tests := []struct {
		p    geom.Vec2
		want string
	}{
		{geom.V(10, 10), "new"},
		{geom.V(60, 60), "top"},
		{geom.V(30, 30), "bottom"},
	}
	for _, tt := range tests {
		hit, ok := s.HitTest(tt.p)
		if !ok || hit.ID != tt.want {
			t.Errorf("HitTest(%v) = %+v, want %s", tt.p, hit, tt.want)
		}
	}
}

func TestHitTestUsesBoundingBox(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, &DrawObject{ID: "diag", Type: DrawLine, Style: DefaultStyle(), A: geom.V(0, 0), B: geom.V(100, 100)})

	// Far from the stroke itself but inside its box.
	if hit, ok := s.HitTest(geom.V(95, 5)); !ok || hit.ID != "diag" {
		t.Errorf("got %+v,%v", hit, ok)
	}
}

func TestSelectionExclusive(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, testLayer("l", 0, 0, 10, 10), rectDraw("d", geom.V(0, 0), geom.V(5, 5)))

	check := func(wantID string) {
		t.Helper()
		selected := 0
		for _, l := range s.Layers() {
			if l.Selected {
				selected++
				if l.ID != wantID {
					t.Errorf("layer %s flagged, want %s", l.ID, wantID)
				}
			}
		}
		for _, d := range s.Draws() {
			if d.Selected {
				selected++
				if d.ID != wantID {
					t.Errorf("draw %s flagged, want %s", d.ID, wantID)
				}
			}
		}
		hit, ok := s.Selection()
		if wantID == "" {
			if ok || selected != 0 {
				t.Errorf("expected empty selection, got %+v (%d flagged)", hit, selected)
			}
			return
		}
		if !ok || hit.ID != wantID || selected != 1 {
			t.Errorf("selection %+v (%d flagged), want %s", hit, selected, wantID)
		}
	}

	if err := s.Select(KindLayer, "l"); err != nil {
		t.Fatal(err)
	}
	check("l")
	if err := s.Select(KindDraw, "d"); err != nil {
		t.Fatal(err)
	}
	check("d")
	if s.SelectedLayer() != nil {
		t.Error("layer still selected")
	}
	if err := s.Remove("d"); err != nil {
		t.Fatal(err)
	}
	check("")
	if err := s.Select(KindDraw, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, testLayer("l", 0, 0, 40, 40), rectDraw("d", geom.V(0, 0), geom.V(5, 5)))

	r := geom.Rect{X: 1, Y: 2, W: 30, H: 20}
	if err := s.Update("l", Patch{Rect: &r}); err != nil {
		t.Fatal(err)
	}
	if got := s.Layer("l").Rect(); got != r {
		t.Errorf("rect: got %+v", got)
	}

	b := geom.V(9, 9)
	if err := s.Update("d", Patch{B: &b}); err != nil {
		t.Fatal(err)
	}
	if s.Draw("d").B != b {
		t.Errorf("endpoint not updated")
	}

	if err := s.Update("d", Patch{Rect: &r}); !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("layer patch on draw: got %v", err)
	}
	if err := s.Update("d", Patch{Points: []geom.Vec2{{}}}); !errors.Is(err, ErrInvalidPatch) {
		t.Errorf("points on rect: got %v", err)
	}
	if err := s.Update("missing", Patch{Rect: &r}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestUpdateFitsCropToRaster(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, testLayer("l", 0, 0, 40, 40))

	crop := geom.Rect{X: 30, Y: 30, W: 50, H: 50}
	if err := s.Update("l", Patch{Crop: &crop}); err != nil {
		t.Fatal(err)
	}
	if got := *s.Layer("l").Crop; got != (geom.Rect{X: 30, Y: 30, W: 10, H: 10}) {
		t.Errorf("crop: got %+v", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewScene()
	l := testLayer("l", 5, 6, 70, 80)
	l.Crop = &geom.Rect{X: 1, Y: 2, W: 30, H: 40}
	mustAdd(t, s,
		l,
		pathDraw("p", geom.V(1, 1), geom.V(2, 3)),
		&DrawObject{ID: "a", Type: DrawArrow, Style: DefaultStyle(), A: geom.V(0, 0), B: geom.V(9, 9)},
	)
	s.SetViewport(geom.Viewport{Scale: 1.5, Offset: geom.V(-3, 4)})
	if err := s.Select(KindDraw, "p"); err != nil {
		t.Fatal(err)
	}

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot: %v", err)
	}

	var decoded []string
	restored := NewScene()
	if err := restored.Restore(parsed, func(id, src string) { decoded = append(decoded, id) }); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", restored.Snapshot(), snap)
	}
	if !reflect.DeepEqual(decoded, []string{"l"}) {
		t.Errorf("decode requests: %v", decoded)
	}
	if _, ok := restored.Selection(); ok {
		t.Error("restore should clear selection")
	}
}

func TestRestoreRejectsInvalidWithoutMutation(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, rectDraw("keep", geom.V(0, 0), geom.V(1, 1)))
	before := s.Snapshot()

	bad := []Snapshot{
		{Scale: 0},
		{Scale: 1, Layers: []LayerRecord{{ID: "l", W: 10, H: 10}}},
		{Scale: 1, Draws: []DrawObject{*pathDraw("p")}},
		{Scale: 1, Draws: []DrawObject{*rectDraw("d", geom.V(0, 0), geom.V(1, 1)), *rectDraw("d", geom.V(0, 0), geom.V(1, 1))}},
	}
	for i, snap := range bad {
		called := false
		err := s.Restore(snap, func(string, string) { called = true })
		if !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("case %d: got %v, want ErrInvalidSnapshot", i, err)
		}
		if called {
			t.Errorf("case %d: decode called on rejected snapshot", i)
		}
		if !reflect.DeepEqual(s.Snapshot(), before) {
			t.Errorf("case %d: scene mutated", i)
		}
	}
}

func TestParseSnapshotMissingFields(t *testing.T) {
	for _, in := range []string{
		`{"layers":[],"draws":[],"scale":1}`,
		`{"draws":[],"scale":1,"offset":{"x":0,"y":0}}`,
		`{"layers":[],"draws":[{"id":"l","type":"line","thickness":2,"fillMode":"stroke","a":{"x":0,"y":0}}],"scale":1,"offset":{"x":0,"y":0}}`,
		`not json`,
	} {
		if _, err := ParseSnapshot([]byte(in)); !IsInvalidSnapshot(err) {
			t.Errorf("ParseSnapshot(%s) = %v, want invalid snapshot", in, err)
		}
	}
}

func TestDrawJSONVariants(t *testing.T) {
	data, err := json.Marshal(pathDraw("p", geom.V(1, 2)))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["a"]; ok {
		t.Errorf("path should not carry endpoints: %s", data)
	}
	if m["type"] != "path" {
		t.Errorf("type: %v", m["type"])
	}
}
