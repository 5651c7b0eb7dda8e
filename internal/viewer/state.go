// Package viewer holds the scene-level state of the city viewer: the
// loaded chunks, the identity resolver, the highlight uniforms, and
// the custom-mesh substitution bookkeeping.
package viewer

import (
	"log/slog"

	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// HighlightCell is the shared value cell behind the hover and
// selection shader uniforms. Every chunk material references this one
// cell, so a single write is observed by all of them. The sentinel -1
// means no building.
type HighlightCell struct {
	Selected float32
	Hovered  float32
}

// NewHighlightCell creates a cell with both uniforms cleared
func NewHighlightCell() *HighlightCell {
	return &HighlightCell{Selected: -1, Hovered: -1}
}

// SetSelected updates the selection uniform
func (h *HighlightCell) SetSelected(id scene.GlobalID) {
	if id == scene.NoGlobalID {
		h.Selected = -1
		return
	}
	h.Selected = id.Float32()
}

// SetHovered updates the hover uniform
func (h *HighlightCell) SetHovered(id scene.GlobalID) {
	if id == scene.NoGlobalID {
		h.Hovered = -1
		return
	}
	h.Hovered = id.Float32()
}

// SelectedID returns the selected building, or NoGlobalID
func (h *HighlightCell) SelectedID() scene.GlobalID {
	return scene.GlobalIDFromFloat32(h.Selected)
}

// HoveredID returns the hovered building, or NoGlobalID
func (h *HighlightCell) HoveredID() scene.GlobalID {
	return scene.GlobalIDFromFloat32(h.Hovered)
}

// Chunk is one loaded tile of procedural building geometry plus its
// per-face visibility mask. Substitution hides faces through the mask
// instead of mangling vertex positions, so the original geometry stays
// intact and can be shown again.
type Chunk struct {
	ID     scene.ChunkID
	Geom   *mesh.Buffer
	hidden []bool
}

// NewChunk wraps a loaded buffer with an all-visible mask
func NewChunk(id scene.ChunkID, geom *mesh.Buffer) *Chunk {
	return &Chunk{
		ID:     id,
		Geom:   geom,
		hidden: make([]bool, geom.FaceCount()),
	}
}

// FaceHidden reports whether a face is masked out
func (c *Chunk) FaceHidden(face int) bool {
	return face >= 0 && face < len(c.hidden) && c.hidden[face]
}

// HideFaces masks the range [start, end)
func (c *Chunk) HideFaces(start, end int) {
	for f := start; f < end && f < len(c.hidden); f++ {
		c.hidden[f] = true
	}
}

// ShowFaces clears the mask for the range [start, end)
func (c *Chunk) ShowFaces(start, end int) {
	for f := start; f < end && f < len(c.hidden); f++ {
		c.hidden[f] = false
	}
}

// HiddenFaceCount returns the number of masked faces
func (c *Chunk) HiddenFaceCount() int {
	n := 0
	for _, h := range c.hidden {
		if h {
			n++
		}
	}
	return n
}

// Placement is a building's original world frame: footprint center in
// X/Y and the lowest Z of its faces.
type Placement struct {
	Center geometry.Vector3
	BaseZ  float64
}

// HiddenRange records which procedural faces a substitution masked out
type HiddenRange struct {
	ChunkID   scene.ChunkID
	StartFace int
	EndFace   int
}

// CustomMesh is a user-authored replacement for one building's
// procedural faces. Dispose, when set, releases frontend resources
// (GPU buffers, materials) and is called exactly once.
type CustomMesh struct {
	OSMID     scene.OSMID
	Geom      *mesh.Buffer
	Placement Placement
	Dispose   func()
}

// State is the viewer's scene aggregate. All access happens on the UI
// goroutine; there is no locking.
type State struct {
	Resolver  *scene.Resolver
	Highlight *HighlightCell

	chunks       map[scene.ChunkID]*Chunk
	customMeshes map[scene.OSMID]*CustomMesh
	hiddenFaces  map[scene.OSMID]HiddenRange

	logger *slog.Logger
}

// NewState creates an empty viewer state around a resolver
func NewState(resolver *scene.Resolver, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		Resolver:     resolver,
		Highlight:    NewHighlightCell(),
		chunks:       make(map[scene.ChunkID]*Chunk),
		customMeshes: make(map[scene.OSMID]*CustomMesh),
		hiddenFaces:  make(map[scene.OSMID]HiddenRange),
		logger:       logger,
	}
}

// AddChunk registers a loaded chunk
func (s *State) AddChunk(c *Chunk) {
	s.chunks[c.ID] = c
}

// Chunk looks up a chunk by ID
func (s *State) Chunk(id scene.ChunkID) (*Chunk, bool) {
	c, ok := s.chunks[id]
	return c, ok
}

// Chunks returns the live chunk set. Callers iterate; they must not
// remove entries.
func (s *State) Chunks() map[scene.ChunkID]*Chunk {
	return s.chunks
}

// CustomMesh looks up the replacement mesh for a building
func (s *State) CustomMesh(id scene.OSMID) (*CustomMesh, bool) {
	m, ok := s.customMeshes[id]
	return m, ok
}

// HasCustomMesh reports whether the building has been substituted
func (s *State) HasCustomMesh(id scene.OSMID) bool {
	_, ok := s.customMeshes[id]
	return ok
}

// HiddenRange returns the masked face range for a substituted building
func (s *State) HiddenRange(id scene.OSMID) (HiddenRange, bool) {
	r, ok := s.hiddenFaces[id]
	return r, ok
}

// HasHiddenFaces reports whether the building's procedural faces are
// masked
func (s *State) HasHiddenFaces(id scene.OSMID) bool {
	_, ok := s.hiddenFaces[id]
	return ok
}

// CustomMeshes returns the live replacement-mesh set. Callers iterate;
// they must not remove entries.
func (s *State) CustomMeshes() map[scene.OSMID]*CustomMesh {
	return s.customMeshes
}

// CustomMeshCount returns the number of substituted buildings
func (s *State) CustomMeshCount() int {
	return len(s.customMeshes)
}
