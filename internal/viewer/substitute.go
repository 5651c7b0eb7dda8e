package viewer

import (
	"context"
	"fmt"
	"sync"

	"github.com/meshwerk/citytwin/pkg/backend"
	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// ComputePlacement derives a building's original world frame from the
// procedural chunk geometry: the center is the bounding box midpoint
// over the building's face range, base Z is the minimum Z. Placing a
// mesh uses only the center's X/Y and the base Z.
// Because face hiding is a mask and never moves vertices, this read is
// valid at any point in the substitution sequence.
func (s *State) ComputePlacement(id scene.OSMID) (Placement, HiddenRange, error) {
	entry, chunkID, ok := s.Resolver.FaceMap().ResolveOSM(id)
	if !ok {
		return Placement{}, HiddenRange{}, fmt.Errorf("no face-map entry for osm id %d", id)
	}
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return Placement{}, HiddenRange{}, fmt.Errorf("chunk %s not loaded for osm id %d", chunkID, id)
	}

	box := geometry.NewBoundingBox()
	for f := entry.StartFace; f < entry.EndFace && f < chunk.Geom.FaceCount(); f++ {
		tri := chunk.Geom.FaceTriangle(f)
		box.Extend(tri.V1)
		box.Extend(tri.V2)
		box.Extend(tri.V3)
	}
	if box.IsEmpty() {
		return Placement{}, HiddenRange{}, fmt.Errorf("empty face range for osm id %d", id)
	}

	return Placement{
			Center: box.Center(),
			BaseZ:  box.Min.Z,
		}, HiddenRange{
			ChunkID:   chunkID,
			StartFace: entry.StartFace,
			EndFace:   entry.EndFace,
		}, nil
}

// PlaceMesh translates a replacement mesh from its stored local frame
// (centered at the origin, base at Z=0) into the building's world
// placement.
func PlaceMesh(buf *mesh.Buffer, p Placement) {
	buf.Translate(geometry.NewVector3(p.Center.X, p.Center.Y, p.BaseZ))
}

// SubstituteBatch replaces the procedural faces of every listed
// building with its user-authored mesh. The passes run in a fixed
// order over the whole batch:
//
//  1. compute every placement from the procedural geometry
//  2. download and place the replacement meshes (concurrent)
//  3. mask the original faces of each building whose mesh loaded
//  4. refresh properties from the backend (concurrent fetch)
//
// A building whose download or placement fails is skipped and keeps
// its procedural geometry; failures never abort the batch. Returns the
// IDs that were substituted.
func (s *State) SubstituteBatch(ctx context.Context, ids []scene.OSMID, client backend.Client) []scene.OSMID {
	type target struct {
		id        scene.OSMID
		placement Placement
		hidden    HiddenRange
		geom      *mesh.Buffer
	}

	// Pass 1: placements, synchronous, before anything else runs
	targets := make([]*target, 0, len(ids))
	for _, id := range ids {
		placement, hidden, err := s.ComputePlacement(id)
		if err != nil {
			s.logger.Warn("skipping substitution", "osm_id", int64(id), "error", err)
			continue
		}
		targets = append(targets, &target{id: id, placement: placement, hidden: hidden})
	}

	// Pass 2: downloads fan out; each goroutine owns its own slot
	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t *target) {
			defer wg.Done()
			buf, err := client.DownloadMesh(ctx, t.id)
			if err != nil {
				s.logger.Warn("custom mesh download failed", "osm_id", int64(t.id), "error", err)
				return
			}
			if buf == nil {
				s.logger.Debug("no custom mesh stored", "osm_id", int64(t.id))
				return
			}
			PlaceMesh(buf, t.placement)
			t.geom = buf
		}(t)
	}
	wg.Wait()

	// Pass 3: mask original faces, only for meshes that actually loaded
	substituted := make([]scene.OSMID, 0, len(targets))
	for _, t := range targets {
		if t.geom == nil {
			continue
		}
		s.customMeshes[t.id] = &CustomMesh{
			OSMID:     t.id,
			Geom:      t.geom,
			Placement: t.placement,
		}
		if chunk, ok := s.chunks[t.hidden.ChunkID]; ok {
			chunk.HideFaces(t.hidden.StartFace, t.hidden.EndFace)
		}
		s.hiddenFaces[t.id] = t.hidden
		substituted = append(substituted, t.id)
	}

	// Pass 4: property refresh. Fetches fan out; patches apply on the
	// calling goroutine because the property table is not locked.
	s.refreshProperties(ctx, substituted, client)
	return substituted
}

func (s *State) refreshProperties(ctx context.Context, ids []scene.OSMID, client backend.Client) {
	infos := make([]*backend.BuildingInfo, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id scene.OSMID) {
			defer wg.Done()
			info, err := client.FetchBuilding(ctx, id)
			if err != nil {
				s.logger.Warn("property refresh failed", "osm_id", int64(id), "error", err)
				return
			}
			infos[i] = info
		}(i, id)
	}
	wg.Wait()

	for _, info := range infos {
		if info == nil || !info.HasOverride {
			continue
		}
		if !s.Resolver.ApplyPatch(info.OSMID, info.Patch) {
			s.logger.Warn("no property record to patch", "osm_id", int64(info.OSMID))
		}
	}
}

// SubstituteOne replaces a single building after an in-session upload.
// Any previous replacement for the same building is disposed first so
// repeated edits do not leak renderer resources.
func (s *State) SubstituteOne(ctx context.Context, id scene.OSMID, client backend.Client) error {
	placement, hidden, err := s.ComputePlacement(id)
	if err != nil {
		return fmt.Errorf("placement for osm id %d: %w", id, err)
	}

	buf, err := client.DownloadMesh(ctx, id)
	if err != nil {
		return fmt.Errorf("download mesh for osm id %d: %w", id, err)
	}
	if buf == nil {
		return fmt.Errorf("no custom mesh stored for osm id %d", id)
	}
	PlaceMesh(buf, placement)

	if prev, ok := s.customMeshes[id]; ok && prev.Dispose != nil {
		prev.Dispose()
	}
	s.customMeshes[id] = &CustomMesh{OSMID: id, Geom: buf, Placement: placement}
	if chunk, ok := s.chunks[hidden.ChunkID]; ok {
		chunk.HideFaces(hidden.StartFace, hidden.EndFace)
	}
	s.hiddenFaces[id] = hidden

	s.refreshProperties(ctx, []scene.OSMID{id}, client)
	return nil
}

// RemoveCustomMesh disposes a building's replacement mesh and shows
// its procedural faces again. Returns false when the building was not
// substituted.
func (s *State) RemoveCustomMesh(id scene.OSMID) bool {
	m, ok := s.customMeshes[id]
	if !ok {
		return false
	}
	if m.Dispose != nil {
		m.Dispose()
	}
	delete(s.customMeshes, id)

	if r, ok := s.hiddenFaces[id]; ok {
		if chunk, ok := s.chunks[r.ChunkID]; ok {
			chunk.ShowFaces(r.StartFace, r.EndFace)
		}
		delete(s.hiddenFaces, id)
	}
	return true
}
