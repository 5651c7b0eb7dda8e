// Package mesh holds the flat vertex buffer representation shared by the
// scene chunks and the mesh editor. Vertex properties are stored as
// struct-of-arrays: positions, normals and UVs are flat float32 slices,
// indexed in order of face*3 + corner when no index buffer is present.
package mesh

import (
	"github.com/meshwerk/citytwin/pkg/geometry"
)

// Buffer is a triangle buffer. A nil Index means the buffer is
// non-indexed: every three consecutive vertices form one face.
// BuildingIDs is an optional per-vertex attribute carrying the global
// building ID, replicated across all three vertices of a face.
type Buffer struct {
	Positions   []float32
	Normals     []float32
	UVs         []float32
	Index       []uint32
	BuildingIDs []float32
}

// NewBuffer creates an empty non-indexed buffer
func NewBuffer() *Buffer {
	return &Buffer{}
}

// VertexCount returns the number of vertices stored in the buffer
func (b *Buffer) VertexCount() int {
	return len(b.Positions) / 3
}

// FaceCount returns the number of triangles
func (b *Buffer) FaceCount() int {
	if b.IsIndexed() {
		return len(b.Index) / 3
	}
	return b.VertexCount() / 3
}

// IsIndexed reports whether the buffer has an explicit index
func (b *Buffer) IsIndexed() bool {
	return b.Index != nil
}

// HasNormals reports whether per-vertex normals are present
func (b *Buffer) HasNormals() bool {
	return len(b.Normals) > 0
}

// HasUVs reports whether texture coordinates are present
func (b *Buffer) HasUVs() bool {
	return len(b.UVs) > 0
}

// Position returns the position of vertex i
func (b *Buffer) Position(i int) geometry.Vector3 {
	return geometry.Vector3{
		X: float64(b.Positions[i*3]),
		Y: float64(b.Positions[i*3+1]),
		Z: float64(b.Positions[i*3+2]),
	}
}

// SetPosition stores a position for vertex i
func (b *Buffer) SetPosition(i int, v geometry.Vector3) {
	b.Positions[i*3] = float32(v.X)
	b.Positions[i*3+1] = float32(v.Y)
	b.Positions[i*3+2] = float32(v.Z)
}

// Normal returns the stored normal of vertex i
func (b *Buffer) Normal(i int) geometry.Vector3 {
	return geometry.Vector3{
		X: float64(b.Normals[i*3]),
		Y: float64(b.Normals[i*3+1]),
		Z: float64(b.Normals[i*3+2]),
	}
}

// SetNormal stores a normal for vertex i
func (b *Buffer) SetNormal(i int, v geometry.Vector3) {
	b.Normals[i*3] = float32(v.X)
	b.Normals[i*3+1] = float32(v.Y)
	b.Normals[i*3+2] = float32(v.Z)
}

// FaceVertices returns the three vertex indices of a face, honoring the
// index buffer when present
func (b *Buffer) FaceVertices(face int) [3]int {
	if b.IsIndexed() {
		return [3]int{
			int(b.Index[face*3]),
			int(b.Index[face*3+1]),
			int(b.Index[face*3+2]),
		}
	}
	return [3]int{face * 3, face*3 + 1, face*3 + 2}
}

// FaceTriangle returns the triangle of a face in world coordinates
func (b *Buffer) FaceTriangle(face int) geometry.Triangle {
	vi := b.FaceVertices(face)
	return geometry.NewTriangle(b.Position(vi[0]), b.Position(vi[1]), b.Position(vi[2]))
}

// Clone returns a deep copy of the buffer
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		Positions: append([]float32(nil), b.Positions...),
	}
	if b.Normals != nil {
		c.Normals = append([]float32(nil), b.Normals...)
	}
	if b.UVs != nil {
		c.UVs = append([]float32(nil), b.UVs...)
	}
	if b.Index != nil {
		c.Index = append([]uint32(nil), b.Index...)
	}
	if b.BuildingIDs != nil {
		c.BuildingIDs = append([]float32(nil), b.BuildingIDs...)
	}
	return c
}

// ToNonIndexed expands an indexed buffer back to a flat face-ordered
// layout. Editing operations that restructure faces assume non-indexed
// input, so this is the inverse of welding. A non-indexed buffer is
// returned unchanged.
func (b *Buffer) ToNonIndexed() *Buffer {
	if !b.IsIndexed() {
		return b
	}
	out := &Buffer{
		Positions: make([]float32, 0, len(b.Index)*3),
	}
	if b.HasNormals() {
		out.Normals = make([]float32, 0, len(b.Index)*3)
	}
	if b.HasUVs() {
		out.UVs = make([]float32, 0, len(b.Index)*2)
	}
	if b.BuildingIDs != nil {
		out.BuildingIDs = make([]float32, 0, len(b.Index))
	}
	for _, idx := range b.Index {
		i := int(idx)
		out.Positions = append(out.Positions, b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2])
		if b.HasNormals() {
			out.Normals = append(out.Normals, b.Normals[i*3], b.Normals[i*3+1], b.Normals[i*3+2])
		}
		if b.HasUVs() {
			out.UVs = append(out.UVs, b.UVs[i*2], b.UVs[i*2+1])
		}
		if b.BuildingIDs != nil {
			out.BuildingIDs = append(out.BuildingIDs, b.BuildingIDs[i])
		}
	}
	return out
}

// Bounds computes the axis-aligned bounding box of all vertices
func (b *Buffer) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for i := 0; i < b.VertexCount(); i++ {
		bbox.Extend(b.Position(i))
	}
	return bbox
}

// ComputeVertexNormals recomputes smooth per-vertex normals. For an
// indexed buffer, face normals are accumulated on the shared vertices
// and normalized; for a non-indexed buffer every corner gets its face's
// geometric normal.
func (b *Buffer) ComputeVertexNormals() {
	b.Normals = make([]float32, len(b.Positions))
	if b.IsIndexed() {
		acc := make([]geometry.Vector3, b.VertexCount())
		for f := 0; f < b.FaceCount(); f++ {
			vi := b.FaceVertices(f)
			n := b.FaceTriangle(f).Normal()
			for _, v := range vi {
				acc[v] = acc[v].Add(n)
			}
		}
		for i, n := range acc {
			b.SetNormal(i, n.Normalize())
		}
		return
	}
	for f := 0; f < b.FaceCount(); f++ {
		n := b.FaceTriangle(f).Normal()
		for corner := 0; corner < 3; corner++ {
			b.SetNormal(f*3+corner, n)
		}
	}
}

// Translate moves every vertex by the given offset
func (b *Buffer) Translate(offset geometry.Vector3) {
	for i := 0; i < b.VertexCount(); i++ {
		b.SetPosition(i, b.Position(i).Add(offset))
	}
}

// SurfaceArea sums the area of all faces
func (b *Buffer) SurfaceArea() float64 {
	total := 0.0
	for f := 0; f < b.FaceCount(); f++ {
		total += b.FaceTriangle(f).Area()
	}
	return total
}
