package scene

import (
	"log/slog"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

// Resolver joins the three identifier spaces. It is the only component
// that crosses between global IDs, OSM IDs and footprint building IDs.
type Resolver struct {
	faceMap *FaceMap
	props   *PropertyTable
	logger  *slog.Logger

	// chunks already warned about a lost building-ID attribute, so the
	// fallback logs once per chunk instead of once per frame
	warnedChunks map[ChunkID]bool
}

// NewResolver creates a resolver over a face map and property table
func NewResolver(faceMap *FaceMap, props *PropertyTable, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		faceMap:      faceMap,
		props:        props,
		logger:       logger,
		warnedChunks: make(map[ChunkID]bool),
	}
}

// FaceMap exposes the underlying index
func (r *Resolver) FaceMap() *FaceMap {
	return r.faceMap
}

// GlobalIDFromHit resolves a raycast hit (chunk + face index) to the
// global building ID, or NoGlobalID when nothing owns that face.
func (r *Resolver) GlobalIDFromHit(chunk ChunkID, faceIndex int) GlobalID {
	entry, ok := r.faceMap.Resolve(chunk, faceIndex)
	if !ok {
		return NoGlobalID
	}
	return entry.GlobalID
}

// EntryFromGlobalID finds the face-map entry carrying the given ID
func (r *Resolver) EntryFromGlobalID(id GlobalID) (Entry, ChunkID, bool) {
	return r.faceMap.ResolveGlobal(id)
}

// PropertiesFromOSMID joins an OSM ID to its property record, or nil
func (r *Resolver) PropertiesFromOSMID(id OSMID) *PropertyRecord {
	rec, ok := r.props.FindByOSMID(id)
	if !ok {
		return nil
	}
	return rec
}

// ApplyPatch merges a backend property override into the record joined
// to the given OSM ID
func (r *Resolver) ApplyPatch(id OSMID, patch PropertyPatch) bool {
	return r.props.ApplyPatch(id, patch)
}

// BuildingIDAt reads the per-vertex building-ID attribute at the first
// vertex of a hit face. When the attribute is missing or was lost by a
// re-indexing operation, it is rebuilt from the face map instead of
// failing the lookup.
func (r *Resolver) BuildingIDAt(chunk ChunkID, buf *mesh.Buffer, faceIndex int) GlobalID {
	if faceIndex < 0 || faceIndex >= buf.FaceCount() {
		return NoGlobalID
	}
	vi := buf.FaceVertices(faceIndex)
	if len(buf.BuildingIDs) <= vi[0] {
		if !r.RebuildBuildingIDs(chunk, buf) {
			return NoGlobalID
		}
		vi = buf.FaceVertices(faceIndex)
	}
	return GlobalIDFromFloat32(buf.BuildingIDs[vi[0]])
}

// RebuildBuildingIDs recomputes the per-vertex building-ID attribute of
// a chunk buffer from the face map. This is the documented fallback for
// geometry whose attribute was dropped by re-indexing; it warns once
// per chunk.
func (r *Resolver) RebuildBuildingIDs(chunk ChunkID, buf *mesh.Buffer) bool {
	entries := r.faceMap.Entries(chunk)
	if len(entries) == 0 {
		return false
	}
	if !r.warnedChunks[chunk] {
		r.warnedChunks[chunk] = true
		r.logger.Warn("building-ID attribute missing, rebuilding from face map",
			"chunk", chunk,
			"faces", buf.FaceCount())
	}
	ids := make([]float32, buf.VertexCount())
	for i := range ids {
		ids[i] = NoGlobalID.Float32()
	}
	for f := 0; f < buf.FaceCount(); f++ {
		entry, ok := r.faceMap.Resolve(chunk, f)
		if !ok {
			continue
		}
		for _, v := range buf.FaceVertices(f) {
			ids[v] = entry.GlobalID.Float32()
		}
	}
	buf.BuildingIDs = ids
	return true
}
