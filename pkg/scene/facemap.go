package scene

import (
	"fmt"
	"sort"
)

// Entry maps a contiguous face-index range within one chunk to one
// building. Entries for a chunk are sorted ascending by StartFace and
// partition the chunk's face range with no gaps or overlaps; Resolve
// depends on that invariant. Field names match the chunk facemap JSON
// documents and are load-bearing.
type Entry struct {
	OSMID         OSMID    `json:"osm_id"`
	BuildingIndex int      `json:"building_index"`
	GlobalID      GlobalID `json:"global_id"`
	StartFace     int      `json:"start_face"`
	EndFace       int      `json:"end_face"`
}

// Contains reports whether the face index falls in [StartFace, EndFace)
func (e Entry) Contains(faceIndex int) bool {
	return faceIndex >= e.StartFace && faceIndex < e.EndFace
}

// FaceMap is the per-chunk face-range index. A chunk's entry list is
// binary-searchable; the reverse (global ID) lookup is a linear scan,
// which is fine because it only runs on click, never per frame.
type FaceMap struct {
	chunks map[ChunkID][]Entry
}

// NewFaceMap creates an empty face map
func NewFaceMap() *FaceMap {
	return &FaceMap{chunks: make(map[ChunkID][]Entry)}
}

// SetChunk installs the entry list for a chunk, sorting it by
// StartFace so Resolve can binary search.
func (m *FaceMap) SetChunk(chunk ChunkID, entries []Entry) {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartFace < sorted[j].StartFace
	})
	m.chunks[chunk] = sorted
}

// RemoveChunk drops a chunk's entries, e.g. when the chunk unloads
func (m *FaceMap) RemoveChunk(chunk ChunkID) {
	delete(m.chunks, chunk)
}

// Chunks returns the IDs of all indexed chunks
func (m *FaceMap) Chunks() []ChunkID {
	ids := make([]ChunkID, 0, len(m.chunks))
	for id := range m.chunks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Entries returns the sorted entry list of a chunk, or nil
func (m *FaceMap) Entries(chunk ChunkID) []Entry {
	return m.chunks[chunk]
}

// Resolve finds the entry owning the given face index of a chunk.
// Missing chunks and out-of-range face indices report not-found.
func (m *FaceMap) Resolve(chunk ChunkID, faceIndex int) (Entry, bool) {
	entries := m.chunks[chunk]
	if len(entries) == 0 || faceIndex < 0 {
		return Entry{}, false
	}
	// First entry whose range ends past the face index
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].EndFace > faceIndex
	})
	if i < len(entries) && entries[i].Contains(faceIndex) {
		return entries[i], true
	}
	return Entry{}, false
}

// ResolveGlobal scans all chunks for the entry with the given global ID
func (m *FaceMap) ResolveGlobal(id GlobalID) (Entry, ChunkID, bool) {
	if id == NoGlobalID {
		return Entry{}, "", false
	}
	for chunk, entries := range m.chunks {
		for _, e := range entries {
			if e.GlobalID == id {
				return e, chunk, true
			}
		}
	}
	return Entry{}, "", false
}

// ResolveOSM scans all chunks for the first entry with the given OSM ID
func (m *FaceMap) ResolveOSM(id OSMID) (Entry, ChunkID, bool) {
	for chunk, entries := range m.chunks {
		for _, e := range entries {
			if e.OSMID == id {
				return e, chunk, true
			}
		}
	}
	return Entry{}, "", false
}

// Validate checks the partition invariant for every chunk (entries
// sorted, starting at face 0, contiguous with no gaps or overlaps) and
// global-ID uniqueness across the whole map.
func (m *FaceMap) Validate() error {
	seen := make(map[GlobalID]ChunkID)
	for _, chunk := range m.Chunks() {
		entries := m.chunks[chunk]
		for i, e := range entries {
			if e.GlobalID < 0 || e.GlobalID > MaxGlobalID {
				return fmt.Errorf("chunk %s: global ID %d outside float32-safe range", chunk, e.GlobalID)
			}
			if prev, dup := seen[e.GlobalID]; dup {
				return fmt.Errorf("global ID %d appears in chunks %s and %s", e.GlobalID, prev, chunk)
			}
			seen[e.GlobalID] = chunk
			if e.EndFace <= e.StartFace {
				return fmt.Errorf("chunk %s: entry %d has empty face range [%d, %d)", chunk, i, e.StartFace, e.EndFace)
			}
			if i == 0 {
				if e.StartFace != 0 {
					return fmt.Errorf("chunk %s: first entry starts at face %d, want 0", chunk, e.StartFace)
				}
				continue
			}
			if entries[i-1].EndFace != e.StartFace {
				return fmt.Errorf("chunk %s: gap or overlap between face %d and %d", chunk, entries[i-1].EndFace, e.StartFace)
			}
		}
	}
	return nil
}
