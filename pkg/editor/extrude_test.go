package editor

import (
	"math"
	"testing"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

func TestExtrudeSingleFace(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
	}}
	s := Open(b, nil)
	s.SelectFace(0)

	if !s.ExtrudeFaces(2) {
		t.Fatal("extrude failed")
	}
	g := s.Geometry()

	// base copy (3) plus two side triangles per boundary edge (18)
	if g.VertexCount() != 3+21 {
		t.Errorf("vertex count: expected 24, got %d", g.VertexCount())
	}
	if g.FaceCount() != 8 {
		t.Errorf("face count: expected 8, got %d", g.FaceCount())
	}

	// the face normal is +Z, so the cap moves up by exactly the distance
	top := g.FaceTriangle(0)
	for i, z := range []float64{top.V1.Z, top.V2.Z, top.V3.Z} {
		if math.Abs(z-2) > 1e-6 {
			t.Errorf("cap vertex %d Z: expected 2, got %v", i, z)
		}
	}
	if math.Abs(top.V1.X) > 1e-6 || math.Abs(top.V1.Y) > 1e-6 {
		t.Error("cap moved laterally")
	}

	// the base copy stays at the original height
	base := g.FaceTriangle(1)
	if base.V1.Z != 0 || base.V2.Z != 0 || base.V3.Z != 0 {
		t.Error("base copy moved")
	}

	if !g.HasNormals() {
		t.Error("extrude must leave the buffer with normals")
	}
	if len(g.Normals) != len(g.Positions) {
		t.Error("normals out of step with positions")
	}
}

// Two faces sharing an edge: the shared edge is interior and gets no
// side wall, so only the outer boundary is skirted.
func TestExtrudeSharedEdge(t *testing.T) {
	s := Open(flatQuad(), nil)
	s.SelectFace(0)
	s.SelectFace(1)

	if !s.ExtrudeFaces(1) {
		t.Fatal("extrude failed")
	}
	g := s.Geometry()

	// 6 original + 6 base copies + 4 boundary edges * 6 side verts
	if g.VertexCount() != 36 {
		t.Errorf("vertex count: expected 36, got %d", g.VertexCount())
	}
	if g.FaceCount() != 12 {
		t.Errorf("face count: expected 12, got %d", g.FaceCount())
	}
}

func TestExtrudeCentroidDisplacement(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 2, 0, 0, 0, 2, 0,
	}}
	s := Open(b, nil)
	s.SelectFace(0)
	before := s.Geometry().FaceTriangle(0).Center()

	const d = 3.5
	if !s.ExtrudeFaces(d) {
		t.Fatal("extrude failed")
	}
	after := s.Geometry().FaceTriangle(0).Center()

	moved := after.Sub(before)
	if math.Abs(moved.Length()-d) > 1e-5 {
		t.Errorf("cap centroid displacement: expected %v, got %v", d, moved.Length())
	}
	if math.Abs(moved.Z-d) > 1e-5 {
		t.Errorf("displacement not along the face normal: %v", moved)
	}
}

func TestExtrudeRequiresSelection(t *testing.T) {
	s := Open(flatQuad(), nil)
	if s.ExtrudeFaces(1) {
		t.Error("extrude without selection must fail")
	}
}

func TestExtrudeNegativeDistance(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
	}}
	s := Open(b, nil)
	s.SelectFace(0)

	if !s.ExtrudeFaces(-1) {
		t.Fatal("extrude failed")
	}
	top := s.Geometry().FaceTriangle(0)
	if math.Abs(top.V1.Z+1) > 1e-6 {
		t.Errorf("negative distance must push the cap down, got Z=%v", top.V1.Z)
	}
}

func TestExtrudeIsUndoable(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
	}}
	s := Open(b, nil)
	original := append([]float32(nil), s.Geometry().Positions...)

	s.SelectFace(0)
	s.ExtrudeFaces(1)
	if !s.Undo() {
		t.Fatal("undo failed")
	}

	got := s.Geometry().Positions
	if len(got) != len(original) {
		t.Fatalf("position length after undo: expected %d, got %d", len(original), len(got))
	}
	for i := range original {
		if got[i] != original[i] {
			t.Fatalf("position %d after undo: %v vs %v", i, got[i], original[i])
		}
	}
}
