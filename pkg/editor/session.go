// Package editor implements the mesh editing session: tool and
// selection state, snapshot-based undo/redo, and the in-place geometry
// operations (extrude, delete, weld, flip, inset and friends).
//
// A session owns a mutable, non-indexed working copy of its source
// geometry. Operations report invariant violations (empty selection,
// indexed input where flat is required) as a false return instead of an
// error, so UI call sites can no-op gracefully.
package editor

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

// Tool is the active editing tool. Tools are mutually exclusive.
type Tool int

const (
	ToolSelect Tool = iota
	ToolMove
	ToolRotate
	ToolScale
	ToolExtrude
)

// SelectionMode determines what pointer interaction selects. Switching
// modes clears the current selection; mode and selection are coupled.
type SelectionMode int

const (
	ModeVertex SelectionMode = iota
	ModeFace
	ModeObject
)

// Session is one open mesh editing session
type Session struct {
	ID uuid.UUID

	geom    *mesh.Buffer
	history *History
	logger  *slog.Logger

	tool Tool
	mode SelectionMode

	selectedFaces    map[int]struct{}
	selectedVertices map[int]struct{}

	dirty bool
}

// Open starts an editing session on a working copy of the source
// geometry. Indexed sources are expanded to the flat layout the edit
// operations expect.
func Open(source *mesh.Buffer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	working := source.ToNonIndexed().Clone()
	// A session edits one building in isolation; the chunk-level
	// building-ID attribute does not survive editing and is dropped.
	working.BuildingIDs = nil
	return &Session{
		ID:               uuid.New(),
		geom:             working,
		history:          NewHistory(working),
		logger:           logger,
		tool:             ToolSelect,
		mode:             ModeFace,
		selectedFaces:    make(map[int]struct{}),
		selectedVertices: make(map[int]struct{}),
	}
}

// Geometry returns the live working buffer
func (s *Session) Geometry() *mesh.Buffer {
	return s.geom
}

// Tool returns the active tool
func (s *Session) Tool() Tool {
	return s.tool
}

// SetTool switches the active tool
func (s *Session) SetTool(t Tool) {
	s.tool = t
}

// Mode returns the active selection mode
func (s *Session) Mode() SelectionMode {
	return s.mode
}

// SetMode switches the selection mode and clears the selection
func (s *Session) SetMode(m SelectionMode) {
	if m != s.mode {
		s.mode = m
		s.ClearSelection()
	}
}

// ClearSelection empties both selection sets
func (s *Session) ClearSelection() {
	s.selectedFaces = make(map[int]struct{})
	s.selectedVertices = make(map[int]struct{})
}

// SelectFace adds a face to the selection and unions its three vertex
// indices into the vertex set, which keeps centroid and transform
// computations consistent between the two representations.
func (s *Session) SelectFace(face int) bool {
	if face < 0 || face >= s.geom.FaceCount() {
		return false
	}
	s.selectedFaces[face] = struct{}{}
	for _, v := range s.geom.FaceVertices(face) {
		s.selectedVertices[v] = struct{}{}
	}
	return true
}

// SelectVertex adds a single vertex to the selection
func (s *Session) SelectVertex(v int) bool {
	if v < 0 || v >= s.geom.VertexCount() {
		return false
	}
	s.selectedVertices[v] = struct{}{}
	return true
}

// SelectedFaceCount returns the size of the face selection
func (s *Session) SelectedFaceCount() int {
	return len(s.selectedFaces)
}

// SelectedVertexCount returns the size of the vertex selection
func (s *Session) SelectedVertexCount() int {
	return len(s.selectedVertices)
}

// HasSelectedFace reports whether the face is selected
func (s *Session) HasSelectedFace(face int) bool {
	_, ok := s.selectedFaces[face]
	return ok
}

// HasSelectedVertex reports whether the vertex is selected
func (s *Session) HasSelectedVertex(v int) bool {
	_, ok := s.selectedVertices[v]
	return ok
}

// IsDirty reports whether unsaved mutations exist
func (s *Session) IsDirty() bool {
	return s.dirty
}

// AcknowledgeSave clears the dirty flag after the export/upload
// collaborator confirms a save.
func (s *Session) AcknowledgeSave() {
	s.dirty = false
}

// CanUndo reports whether Undo would do anything
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would do anything
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Undo restores the state before the most recent operation. The
// selection is cleared because face and vertex indices may no longer
// exist in the restored buffer.
func (s *Session) Undo() bool {
	restored, ok := s.history.Undo(s.geom)
	if !ok {
		return false
	}
	s.geom = restored
	s.ClearSelection()
	s.dirty = true
	return true
}

// Redo restores the state reverted by the last Undo
func (s *Session) Redo() bool {
	restored, ok := s.history.Redo(s.geom)
	if !ok {
		return false
	}
	s.geom = restored
	s.ClearSelection()
	s.dirty = true
	return true
}

// beginChange snapshots the current state and marks the session dirty.
// Every mutating operation calls this before touching the buffer.
func (s *Session) beginChange() {
	s.history.Record(s.geom)
	s.dirty = true
}
