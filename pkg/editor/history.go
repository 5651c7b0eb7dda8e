package editor

import (
	"time"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

// DefaultHistoryLimit bounds the undo stack. Oldest entries are
// discarded first when the limit is hit; this is a memory/UX tradeoff,
// not a correctness requirement.
const DefaultHistoryLimit = 50

// Snapshot is an immutable deep copy of the working geometry taken
// before a mutating operation.
type Snapshot struct {
	Geom *mesh.Buffer
	At   time.Time
}

// History is the bounded undo/redo stack of geometry snapshots.
// Entry 0 of the undo stack is the pristine state captured when the
// session opened; undo never removes it.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

// NewHistory creates a history seeded with the pristine initial state
func NewHistory(initial *mesh.Buffer) *History {
	return &History{
		undo:  []Snapshot{{Geom: initial.Clone(), At: time.Now()}},
		limit: DefaultHistoryLimit,
	}
}

// UndoDepth returns the number of entries on the undo stack
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// CanUndo reports whether an undo is possible. The pristine entry at
// index 0 must survive, so at least two entries are required.
func (h *History) CanUndo() bool {
	return len(h.undo) >= 2
}

// CanRedo reports whether a redo is possible
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Record saves the state at the start of a mutating operation. Every
// mutating operation calls this before touching the buffer. Any new
// mutation invalidates the redo stack.
func (h *History) Record(current *mesh.Buffer) {
	h.undo = append(h.undo, Snapshot{Geom: current.Clone(), At: time.Now()})
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo pops the snapshot taken before the most recent operation and
// returns the geometry to restore. The state passed in (the mutated
// present) is pushed onto the redo stack so the undo can itself be
// reverted. Returns nil, false when only the pristine entry remains.
func (h *History) Undo(current *mesh.Buffer) (*mesh.Buffer, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, Snapshot{Geom: current.Clone(), At: time.Now()})
	return top.Geom.Clone(), true
}

// Redo re-snapshots the present state onto the undo stack, making the
// redo itself undoable, then returns the redo entry's geometry.
func (h *History) Redo(current *mesh.Buffer) (*mesh.Buffer, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.undo = append(h.undo, Snapshot{Geom: current.Clone(), At: time.Now()})
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top.Geom.Clone(), true
}
