package mesh

import (
	"math"
	"testing"

	"github.com/meshwerk/citytwin/pkg/geometry"
)

// quad returns a non-indexed buffer with two triangles forming a unit
// quad in the XY plane
func quad() *Buffer {
	return &Buffer{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 1, 1, 0,
			0, 0, 0, 1, 1, 0, 0, 1, 0,
		},
	}
}

func TestBufferCounts(t *testing.T) {
	b := quad()
	if b.VertexCount() != 6 {
		t.Errorf("VertexCount: expected 6, got %d", b.VertexCount())
	}
	if b.FaceCount() != 2 {
		t.Errorf("FaceCount: expected 2, got %d", b.FaceCount())
	}
	if b.IsIndexed() {
		t.Error("expected non-indexed buffer")
	}
}

func TestBufferFaceVerticesIndexed(t *testing.T) {
	b := &Buffer{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Index:     []uint32{0, 1, 2, 0, 2, 3},
	}
	if b.FaceCount() != 2 {
		t.Fatalf("FaceCount: expected 2, got %d", b.FaceCount())
	}
	vi := b.FaceVertices(1)
	if vi != [3]int{0, 2, 3} {
		t.Errorf("FaceVertices(1): expected [0 2 3], got %v", vi)
	}
}

func TestBufferCloneIsDeep(t *testing.T) {
	b := quad()
	c := b.Clone()
	c.Positions[0] = 99

	if b.Positions[0] == 99 {
		t.Error("Clone shares position storage with the original")
	}
}

func TestBufferToNonIndexed(t *testing.T) {
	b := &Buffer{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Index:     []uint32{0, 1, 2, 0, 2, 3},
	}
	flat := b.ToNonIndexed()

	if flat.IsIndexed() {
		t.Fatal("ToNonIndexed returned an indexed buffer")
	}
	if flat.VertexCount() != 6 {
		t.Errorf("expected 6 expanded vertices, got %d", flat.VertexCount())
	}
	// Face 1 corner 1 must be old vertex 2 = (1,1,0)
	got := flat.Position(4)
	if got != geometry.NewVector3(1, 1, 0) {
		t.Errorf("expanded vertex 4: expected (1,1,0), got %v", got)
	}
}

func TestBufferComputeVertexNormalsFlat(t *testing.T) {
	b := quad()
	b.ComputeVertexNormals()

	if len(b.Normals) != len(b.Positions) {
		t.Fatalf("normal array length %d != position length %d", len(b.Normals), len(b.Positions))
	}
	for i := 0; i < b.VertexCount(); i++ {
		n := b.Normal(i)
		if n.Distance(geometry.NewVector3(0, 0, 1)) > 1e-6 {
			t.Errorf("vertex %d normal: expected +Z, got %v", i, n)
		}
	}
}

func TestBufferBounds(t *testing.T) {
	b := quad()
	bounds := b.Bounds()

	if bounds.Min != geometry.NewVector3(0, 0, 0) {
		t.Errorf("bounds min: got %v", bounds.Min)
	}
	if bounds.Max != geometry.NewVector3(1, 1, 0) {
		t.Errorf("bounds max: got %v", bounds.Max)
	}
}

func TestBufferSurfaceArea(t *testing.T) {
	b := quad()
	area := b.SurfaceArea()

	if math.Abs(area-1.0) > 1e-6 {
		t.Errorf("surface area: expected 1.0, got %v", area)
	}
}

func TestBufferTranslate(t *testing.T) {
	b := quad()
	b.Translate(geometry.NewVector3(10, 0, -5))

	if b.Position(0) != geometry.NewVector3(10, 0, -5) {
		t.Errorf("translated vertex 0: got %v", b.Position(0))
	}
}
