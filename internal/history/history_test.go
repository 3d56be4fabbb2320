package history

import (
	"errors"
	"reflect"
	"testing"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/geom"
)

type sceneStore struct {
	scene *document.Scene
	fail  error
}

func (s *sceneStore) Snapshot() document.Snapshot { return s.scene.Snapshot() }

func (s *sceneStore) Restore(snap document.Snapshot) error {
	if s.fail != nil {
		return s.fail
	}
	return s.scene.Restore(snap, nil)
}

func addPath(t *testing.T, s *document.Scene, id string, x float64) {
	t.Helper()
	d := &document.DrawObject{ID: id, Type: document.DrawPath, Style: document.DefaultStyle(), Points: []geom.Vec2{{X: x, Y: x}}}
	if err := s.AddDraw(d); err != nil {
		t.Fatal(err)
	}
}

func TestUndoRedoInverse(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	for i, id := range []string{"a", "b", "c"} {
		h.Checkpoint()
		addPath(t, store.scene, id, float64(i))
	}
	before := store.Snapshot()

	if ok, err := h.Undo(); !ok || err != nil {
		t.Fatalf("Undo() = %v, %v", ok, err)
	}
	if got := len(store.scene.Draws()); got != 2 {
		t.Fatalf("after undo: %d draws, want 2", got)
	}
	if ok, err := h.Redo(); !ok || err != nil {
		t.Fatalf("Redo() = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(store.Snapshot(), before) {
		t.Errorf("undo+redo did not restore state")
	}
}

func TestUndoEmptyIsNoop(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)
	if ok, _ := h.Undo(); ok {
		t.Error("Undo on empty history reported true")
	}
	if ok, _ := h.Redo(); ok {
		t.Error("Redo on empty history reported true")
	}
}

func TestCheckpointClearsRedo(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected redo entry")
	}
	h.Checkpoint()
	if h.CanRedo() {
		t.Error("checkpoint should clear redo")
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 3)

	for i := range 5 {
		h.Checkpoint()
		addPath(t, store.scene, string(rune('a'+i)), float64(i))
	}
	if undo, _ := h.Len(); undo != 3 {
		t.Fatalf("undo depth = %d, want 3", undo)
	}
	for h.CanUndo() {
		h.Undo()
	}
	// The two oldest checkpoints (0 and 1 draws) were evicted.
	if got := len(store.scene.Draws()); got != 2 {
		t.Errorf("oldest reachable state has %d draws, want 2", got)
	}
}

func TestDefaultLimit(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)
	for range DefaultLimit + 10 {
		h.Checkpoint()
	}
	if undo, _ := h.Len(); undo != DefaultLimit {
		t.Errorf("undo depth = %d, want %d", undo, DefaultLimit)
	}
}

func TestFailedRestoreKeepsStacks(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)
	h.Checkpoint()

	store.fail = errors.New("boom")
	if ok, err := h.Undo(); ok || err == nil {
		t.Fatalf("Undo() = %v, %v; want false with error", ok, err)
	}
	if undo, redo := h.Len(); undo != 1 || redo != 0 {
		t.Errorf("stacks changed: undo=%d redo=%d", undo, redo)
	}
}

func TestDropRemovesLatestCheckpoint(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Checkpoint()
	h.Drop()

	if undo, _ := h.Len(); undo != 1 {
		t.Fatalf("undo depth = %d, want 1", undo)
	}
	h.Undo()
	if got := len(store.scene.Draws()); got != 0 {
		t.Errorf("undo after drop left %d draws, want 0", got)
	}
}

func TestDropRestoresRedo(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("want redo after undo")
	}

	h.Checkpoint()
	if h.CanRedo() {
		t.Fatal("checkpoint should clear redo")
	}
	h.Drop()

	if undo, redo := h.Len(); undo != 0 || redo != 1 {
		t.Fatalf("got undo=%d redo=%d, want 0 and 1", undo, redo)
	}
	if ok, err := h.Redo(); !ok || err != nil {
		t.Fatalf("Redo() = %v, %v", ok, err)
	}
	if got := len(store.scene.Draws()); got != 1 {
		t.Errorf("got %d draws after redo, want 1", got)
	}
}

func TestDropRestoresEvicted(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 2)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Checkpoint()
	addPath(t, store.scene, "b", 2)

	h.Checkpoint()
	h.Drop()

	if undo, _ := h.Len(); undo != 2 {
		t.Fatalf("undo depth = %d, want 2", undo)
	}
	for h.CanUndo() {
		h.Undo()
	}
	if got := len(store.scene.Draws()); got != 0 {
		t.Errorf("oldest reachable state has %d draws, want 0", got)
	}
}

func TestDropAfterUndoKeepsStacks(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Checkpoint()
	addPath(t, store.scene, "b", 2)
	h.Undo()

	// Nothing pending: Drop only pops the latest undo entry.
	h.Drop()
	if undo, redo := h.Len(); undo != 0 || redo != 1 {
		t.Errorf("got undo=%d redo=%d, want 0 and 1", undo, redo)
	}
}

func TestEachVisitsEverySnapshot(t *testing.T) {
	store := &sceneStore{scene: document.NewScene()}
	h := New(store, 0)

	h.Checkpoint()
	addPath(t, store.scene, "a", 1)
	h.Checkpoint()
	addPath(t, store.scene, "b", 2)
	h.Undo()
	h.Checkpoint()

	n := 0
	h.Each(func(document.Snapshot) { n++ })
	// Two undo entries plus the redo entry the last checkpoint displaced.
	if n != 3 {
		t.Errorf("visited %d snapshots, want 3", n)
	}
}
