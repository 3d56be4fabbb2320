// Package history keeps bounded undo and redo stacks of scene snapshots.
package history

import (
	"github.com/inamate/sketchpad/internal/document"
)

// DefaultLimit is the number of undo entries kept before the oldest is
// evicted.
const DefaultLimit = 60

// Store is whatever owns the live state being checkpointed.
type Store interface {
	Snapshot() document.Snapshot
	Restore(document.Snapshot) error
}

type Manager struct {
	store Store
	limit int
	undo  []document.Snapshot
	redo  []document.Snapshot

	// displaced is what the latest Checkpoint pushed out. It is kept until
	// the next history change so Drop can put it back.
	displaced *displaced
}

type displaced struct {
	redo    []document.Snapshot
	evicted []document.Snapshot
}

// New returns a Manager over store. A limit <= 0 selects DefaultLimit.
func New(store Store, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{store: store, limit: limit}
}

// Checkpoint records the current state as an undo entry and drops any redo
// entries. Drop reverses both.
func (m *Manager) Checkpoint() {
	d := &displaced{redo: m.redo}
	m.undo = append(m.undo, m.store.Snapshot())
	if over := len(m.undo) - m.limit; over > 0 {
		d.evicted = append([]document.Snapshot(nil), m.undo[:over]...)
		clear(m.undo[:over])
		m.undo = m.undo[over:]
	}
	m.redo = nil
	m.displaced = d
}

// Undo restores the most recent checkpoint. It reports false when there is
// nothing to undo or the restore was rejected; in both cases the stacks are
// unchanged.
func (m *Manager) Undo() (bool, error) {
	return m.step(&m.undo, &m.redo)
}

// Redo is the mirror of Undo.
func (m *Manager) Redo() (bool, error) {
	return m.step(&m.redo, &m.undo)
}

func (m *Manager) step(from, to *[]document.Snapshot) (bool, error) {
	n := len(*from)
	if n == 0 {
		return false, nil
	}
	current := m.store.Snapshot()
	target := (*from)[n-1]
	if err := m.store.Restore(target); err != nil {
		return false, err
	}
	*from = (*from)[:n-1]
	*to = append(*to, current)
	m.displaced = nil
	return true, nil
}

// Drop discards the most recent checkpoint without restoring it, for a
// gesture that ended without changing anything. The redo entries and any
// evicted undo entry that checkpoint displaced come back.
func (m *Manager) Drop() {
	if n := len(m.undo); n > 0 {
		m.undo[n-1] = document.Snapshot{}
		m.undo = m.undo[:n-1]
	}
	if d := m.displaced; d != nil {
		m.undo = append(d.evicted, m.undo...)
		m.redo = d.redo
		m.displaced = nil
	}
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the undo and redo stack depths.
func (m *Manager) Len() (undo, redo int) { return len(m.undo), len(m.redo) }

// Reset drops both stacks, e.g. after a project is loaded.
func (m *Manager) Reset() {
	m.undo = nil
	m.redo = nil
	m.displaced = nil
}

// Each calls fn for every snapshot history still holds, including those a
// pending Drop could bring back.
func (m *Manager) Each(fn func(document.Snapshot)) {
	for _, stack := range [][]document.Snapshot{m.undo, m.redo} {
		for _, snap := range stack {
			fn(snap)
		}
	}
	if d := m.displaced; d != nil {
		for _, stack := range [][]document.Snapshot{d.redo, d.evicted} {
			for _, snap := range stack {
				fn(snap)
			}
		}
	}
}
