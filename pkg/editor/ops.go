package editor

import (
	"fmt"
	"math"
	"sort"

	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/mesh"
)

// sortedSelectedFaces returns the face selection in ascending order
func (s *Session) sortedSelectedFaces() []int {
	faces := make([]int, 0, len(s.selectedFaces))
	for f := range s.selectedFaces {
		faces = append(faces, f)
	}
	sort.Ints(faces)
	return faces
}

// DeleteSelectedFaces rebuilds the buffer keeping only unselected
// faces. Requires a non-empty face selection and flat (non-indexed)
// input; a filter rebuild is used because a non-indexed buffer has no
// shared vertices to preserve.
func (s *Session) DeleteSelectedFaces() bool {
	if len(s.selectedFaces) == 0 || s.geom.IsIndexed() {
		return false
	}
	s.beginChange()

	s.geom = s.filterFaces(func(face int) bool {
		_, selected := s.selectedFaces[face]
		return !selected
	})
	s.ClearSelection()
	return true
}

// RemoveDegenerateFaces drops faces whose area is below the threshold.
// Returns the number of faces removed and whether the operation ran.
func (s *Session) RemoveDegenerateFaces(areaThreshold float64) (int, bool) {
	if s.geom.IsIndexed() {
		return 0, false
	}
	before := s.geom.FaceCount()
	s.beginChange()

	s.geom = s.filterFaces(func(face int) bool {
		return s.geom.FaceTriangle(face).Area() >= areaThreshold
	})
	s.ClearSelection()
	return before - s.geom.FaceCount(), true
}

// filterFaces rebuilds the flat buffer with only the faces the keep
// predicate accepts
func (s *Session) filterFaces(keep func(face int) bool) *mesh.Buffer {
	src := s.geom
	out := &mesh.Buffer{}
	if src.HasNormals() {
		out.Normals = make([]float32, 0, len(src.Normals))
	}
	if src.HasUVs() {
		out.UVs = make([]float32, 0, len(src.UVs))
	}
	for f := 0; f < src.FaceCount(); f++ {
		if !keep(f) {
			continue
		}
		for corner := 0; corner < 3; corner++ {
			v := f*3 + corner
			out.Positions = append(out.Positions, src.Positions[v*3], src.Positions[v*3+1], src.Positions[v*3+2])
			if src.HasNormals() {
				out.Normals = append(out.Normals, src.Normals[v*3], src.Normals[v*3+1], src.Normals[v*3+2])
			}
			if src.HasUVs() {
				out.UVs = append(out.UVs, src.UVs[v*2], src.UVs[v*2+1])
			}
		}
	}
	return out
}

// FlipNormals reverses the winding of the selected faces, or of every
// face when the selection is empty. The vertex swap and the normal
// negation happen together; doing one without the other desyncs
// shading from winding. Flat input only.
func (s *Session) FlipNormals() bool {
	if s.geom.IsIndexed() {
		return false
	}
	s.beginChange()

	faces := s.sortedSelectedFaces()
	if len(faces) == 0 {
		faces = make([]int, s.geom.FaceCount())
		for f := range faces {
			faces[f] = f
		}
	}

	g := s.geom
	for _, f := range faces {
		v1 := f*3 + 1
		v2 := f*3 + 2
		swapVertex(g, v1, v2)
		for corner := 0; corner < 3; corner++ {
			v := f*3 + corner
			if g.HasNormals() {
				g.Normals[v*3] = -g.Normals[v*3]
				g.Normals[v*3+1] = -g.Normals[v*3+1]
				g.Normals[v*3+2] = -g.Normals[v*3+2]
			}
		}
	}
	return true
}

func swapVertex(g *mesh.Buffer, a, b int) {
	for i := 0; i < 3; i++ {
		g.Positions[a*3+i], g.Positions[b*3+i] = g.Positions[b*3+i], g.Positions[a*3+i]
		if g.HasNormals() {
			g.Normals[a*3+i], g.Normals[b*3+i] = g.Normals[b*3+i], g.Normals[a*3+i]
		}
	}
	if g.HasUVs() {
		g.UVs[a*2], g.UVs[b*2] = g.UVs[b*2], g.UVs[a*2]
		g.UVs[a*2+1], g.UVs[b*2+1] = g.UVs[b*2+1], g.UVs[a*2+1]
	}
}

// WeldVertices merges vertices that quantize to the same grid cell of
// size threshold and rebuilds the buffer as indexed geometry. This is
// the one operation that converts the buffer from non-indexed to
// indexed; operations that require flat input must re-expand first.
func (s *Session) WeldVertices(threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	s.beginChange()

	src := s.geom.ToNonIndexed()
	type slot struct{ index uint32 }
	seen := make(map[string]slot)

	out := &mesh.Buffer{Index: make([]uint32, 0, src.VertexCount())}
	if src.HasNormals() {
		out.Normals = make([]float32, 0)
	}
	if src.HasUVs() {
		out.UVs = make([]float32, 0)
	}

	for v := 0; v < src.VertexCount(); v++ {
		p := src.Position(v)
		key := fmt.Sprintf("%d_%d_%d",
			int64(math.Round(p.X/threshold)),
			int64(math.Round(p.Y/threshold)),
			int64(math.Round(p.Z/threshold)))

		entry, ok := seen[key]
		if !ok {
			entry = slot{index: uint32(len(out.Positions) / 3)}
			seen[key] = entry
			out.Positions = append(out.Positions, src.Positions[v*3], src.Positions[v*3+1], src.Positions[v*3+2])
			if src.HasNormals() {
				out.Normals = append(out.Normals, src.Normals[v*3], src.Normals[v*3+1], src.Normals[v*3+2])
			}
			if src.HasUVs() {
				out.UVs = append(out.UVs, src.UVs[v*2], src.UVs[v*2+1])
			}
		}
		out.Index = append(out.Index, entry.index)
	}

	s.geom = out
	s.ClearSelection()
	return true
}

// InsetFaces shrinks each selected face toward its own centroid by the
// given fraction in (0, 1). Faces are inset independently; shared
// boundaries tear, which is the expected behavior on a flat buffer.
func (s *Session) InsetFaces(fraction float64) bool {
	if len(s.selectedFaces) == 0 || s.geom.IsIndexed() {
		return false
	}
	if fraction <= 0 || fraction >= 1 {
		return false
	}
	s.beginChange()

	for f := range s.selectedFaces {
		center := s.geom.FaceTriangle(f).Center()
		for corner := 0; corner < 3; corner++ {
			v := f*3 + corner
			s.geom.SetPosition(v, s.geom.Position(v).Lerp(center, fraction))
		}
	}
	return true
}

// CenterGeometry translates the buffer so its bounding box is centered
// at the origin
func (s *Session) CenterGeometry() {
	s.beginChange()
	center := s.geom.Bounds().Center()
	s.geom.Translate(center.Negate())
}

// PlaceOnGround translates the buffer so its lowest point sits at Z=0
func (s *Session) PlaceOnGround() {
	s.beginChange()
	bounds := s.geom.Bounds()
	s.geom.Translate(geometry.NewVector3(0, 0, -bounds.Min.Z))
}

// ScaleGeometry scales the buffer uniformly about its bounding box
// center. Normal directions are intentionally left untouched; a
// uniform scale preserves them.
func (s *Session) ScaleGeometry(factor float64) bool {
	if factor <= 0 {
		return false
	}
	s.beginChange()

	center := s.geom.Bounds().Center()
	for v := 0; v < s.geom.VertexCount(); v++ {
		p := s.geom.Position(v)
		s.geom.SetPosition(v, center.Add(p.Sub(center).Mul(factor)))
	}
	return true
}
