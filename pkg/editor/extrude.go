package editor

import (
	"fmt"
	"math"

	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/mesh"
)

// edgeKeyPrecision quantizes positions for the boundary-edge map. In a
// flat buffer adjacent faces do not share vertex slots, so edges are
// matched by position, not by index.
const edgeKeyPrecision = 1e6

// ExtrudeFaces extrudes the selected faces along their averaged normal
// by the given distance. The selected faces move as a rigid cap; their
// pre-move copies stay behind as the base, and one quad (two triangles)
// is emitted per boundary edge of the selection to join base and cap.
// Requires a non-empty face selection on flat geometry.
//
// Zero-area side quads from degenerate boundary edges are not filtered.
func (s *Session) ExtrudeFaces(distance float64) bool {
	if len(s.selectedFaces) == 0 || s.geom.IsIndexed() {
		return false
	}
	s.beginChange()

	g := s.geom
	faces := s.sortedSelectedFaces()

	// Unweighted average of the selected faces' geometric normals
	var avg geometry.Vector3
	for _, f := range faces {
		avg = avg.Add(g.FaceTriangle(f).Normal())
	}
	avg = avg.Normalize()
	offset := avg.Mul(distance)

	// Boundary edges are the ones referenced by exactly one selected
	// face. Counted before any vertex moves.
	type edge struct{ a, b geometry.Vector3 }
	counts := make(map[string]int)
	reps := make(map[string]edge)
	for _, f := range faces {
		tri := g.FaceTriangle(f)
		corners := [3]geometry.Vector3{tri.V1, tri.V2, tri.V3}
		for i := 0; i < 3; i++ {
			a := corners[i]
			b := corners[(i+1)%3]
			key := edgeKey(a, b)
			counts[key]++
			if counts[key] == 1 {
				reps[key] = edge{a: a, b: b}
			}
		}
	}

	// Duplicate the selected faces' vertices in place as the base;
	// the original slots become the cap below.
	for _, f := range faces {
		for corner := 0; corner < 3; corner++ {
			v := f*3 + corner
			appendVertexCopy(g, v)
		}
	}

	// One quad per boundary edge, base to cap, with a flat normal from
	// the quad's own cross product.
	for key, count := range counts {
		if count != 1 {
			continue
		}
		e := reps[key]
		b1, b2 := e.a, e.b
		c1, c2 := e.a.Add(offset), e.b.Add(offset)
		n := b2.Sub(b1).Cross(c2.Sub(b1)).Normalize()
		appendTriangle(g, b1, b2, c2, n)
		appendTriangle(g, b1, c2, c1, n)
	}

	// Move the cap as a rigid unit
	for _, f := range faces {
		for corner := 0; corner < 3; corner++ {
			v := f*3 + corner
			g.SetPosition(v, g.Position(v).Add(offset))
		}
	}

	g.ComputeVertexNormals()
	return true
}

func edgeKey(a, b geometry.Vector3) string {
	ka := pointKey(a)
	kb := pointKey(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return ka + "|" + kb
}

func pointKey(p geometry.Vector3) string {
	return fmt.Sprintf("%d_%d_%d",
		int64(math.Round(p.X*edgeKeyPrecision)),
		int64(math.Round(p.Y*edgeKeyPrecision)),
		int64(math.Round(p.Z*edgeKeyPrecision)))
}

// appendVertexCopy appends a copy of vertex v to the end of the buffer
func appendVertexCopy(g *mesh.Buffer, v int) {
	g.Positions = append(g.Positions, g.Positions[v*3], g.Positions[v*3+1], g.Positions[v*3+2])
	if g.HasNormals() {
		g.Normals = append(g.Normals, g.Normals[v*3], g.Normals[v*3+1], g.Normals[v*3+2])
	}
	if g.HasUVs() {
		g.UVs = append(g.UVs, g.UVs[v*2], g.UVs[v*2+1])
	}
}

// appendTriangle appends a free-standing triangle with a flat normal
func appendTriangle(g *mesh.Buffer, a, b, c, n geometry.Vector3) {
	for _, p := range [3]geometry.Vector3{a, b, c} {
		g.Positions = append(g.Positions, float32(p.X), float32(p.Y), float32(p.Z))
		if g.HasNormals() {
			g.Normals = append(g.Normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
		if g.HasUVs() {
			g.UVs = append(g.UVs, 0, 0)
		}
	}
}
