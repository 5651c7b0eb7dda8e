// Package meshio encodes mesh buffers to the binary blob format used
// for custom-mesh upload, download and on-disk chunk storage. The
// layout is a little-endian header followed by the raw attribute
// arrays; the header carries a bounding sphere so consumers can place
// and cull a mesh without decoding the vertex data.
package meshio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	vec3d "github.com/flywave/go3d/float64/vec3"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

const (
	// Magic identifies a citytwin mesh blob, followed by the format
	// version byte.
	Magic   = 0x4354574d // "CTWM"
	Version = 1
)

const (
	flagNormals uint32 = 1 << iota
	flagUVs
	flagIndex
	flagBuildingIDs
)

var (
	ErrBadMagic    = errors.New("meshio: not a citytwin mesh blob")
	ErrBadVersion  = errors.New("meshio: unsupported format version")
	ErrShortBuffer = errors.New("meshio: truncated mesh data")
	ErrCorrupt     = errors.New("meshio: corrupt mesh data")
)

// Decode allocation caps. Mesh blobs hold a single building, so any
// header claiming more than this is corrupt, not large.
const (
	maxVertexCount = 1 << 24
	maxIndexCount  = 3 << 24
)

var byteOrder = binary.LittleEndian

// Header is the fixed-size prefix of a mesh blob
type Header struct {
	Magic       uint32
	Version     uint32
	Flags       uint32
	VertexCount uint32
	IndexCount  uint32

	// Bounding sphere of the encoded positions
	CenterX, CenterY, CenterZ float64
	Radius                    float64
}

// BoundingSphere computes the center and radius of the smallest
// axis-aligned enclosing sphere of the buffer's positions.
func BoundingSphere(b *mesh.Buffer) (vec3d.T, float64) {
	if b.VertexCount() == 0 {
		return vec3d.T{}, 0
	}
	min := vec3d.MaxVal
	max := vec3d.MinVal
	for i := 0; i < b.VertexCount(); i++ {
		p := b.Position(i)
		v := vec3d.T{p.X, p.Y, p.Z}
		min = vec3d.Min(&min, &v)
		max = vec3d.Max(&max, &v)
	}
	center := vec3d.Interpolate(&min, &max, 0.5)
	radius := 0.0
	for i := 0; i < b.VertexCount(); i++ {
		p := b.Position(i)
		v := vec3d.T{p.X, p.Y, p.Z}
		d := vec3d.Sub(&v, &center)
		if l := d.Length(); l > radius {
			radius = l
		}
	}
	return center, radius
}

// Encode writes the buffer as a mesh blob
func Encode(w io.Writer, b *mesh.Buffer) error {
	center, radius := BoundingSphere(b)

	header := Header{
		Magic:       Magic,
		Version:     Version,
		VertexCount: uint32(b.VertexCount()),
		IndexCount:  uint32(len(b.Index)),
		CenterX:     center[0],
		CenterY:     center[1],
		CenterZ:     center[2],
		Radius:      radius,
	}
	if b.HasNormals() {
		header.Flags |= flagNormals
	}
	if b.HasUVs() {
		header.Flags |= flagUVs
	}
	if b.IsIndexed() {
		header.Flags |= flagIndex
	}
	if b.BuildingIDs != nil {
		header.Flags |= flagBuildingIDs
	}

	if err := binary.Write(w, byteOrder, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(w, byteOrder, b.Positions); err != nil {
		return fmt.Errorf("failed to write positions: %w", err)
	}
	if b.HasNormals() {
		if err := binary.Write(w, byteOrder, b.Normals); err != nil {
			return fmt.Errorf("failed to write normals: %w", err)
		}
	}
	if b.HasUVs() {
		if err := binary.Write(w, byteOrder, b.UVs); err != nil {
			return fmt.Errorf("failed to write uvs: %w", err)
		}
	}
	if b.IsIndexed() {
		if err := binary.Write(w, byteOrder, b.Index); err != nil {
			return fmt.Errorf("failed to write index: %w", err)
		}
	}
	if b.BuildingIDs != nil {
		if err := binary.Write(w, byteOrder, b.BuildingIDs); err != nil {
			return fmt.Errorf("failed to write building ids: %w", err)
		}
	}
	return nil
}

// Decode reads a mesh blob back into a buffer
func Decode(r io.Reader) (*mesh.Buffer, error) {
	var header Header
	if err := binary.Read(r, byteOrder, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != Magic {
		return nil, ErrBadMagic
	}
	if header.Version != Version {
		return nil, ErrBadVersion
	}
	if header.VertexCount > maxVertexCount {
		return nil, fmt.Errorf("%w: vertex count %d", ErrCorrupt, header.VertexCount)
	}
	if header.IndexCount > maxIndexCount {
		return nil, fmt.Errorf("%w: index count %d", ErrCorrupt, header.IndexCount)
	}

	b := &mesh.Buffer{
		Positions: make([]float32, header.VertexCount*3),
	}
	if err := readFloats(r, b.Positions, "positions"); err != nil {
		return nil, err
	}
	if header.Flags&flagNormals != 0 {
		b.Normals = make([]float32, header.VertexCount*3)
		if err := readFloats(r, b.Normals, "normals"); err != nil {
			return nil, err
		}
	}
	if header.Flags&flagUVs != 0 {
		b.UVs = make([]float32, header.VertexCount*2)
		if err := readFloats(r, b.UVs, "uvs"); err != nil {
			return nil, err
		}
	}
	if header.Flags&flagIndex != 0 {
		b.Index = make([]uint32, header.IndexCount)
		if err := binary.Read(r, byteOrder, b.Index); err != nil {
			return nil, fmt.Errorf("%w: index", ErrShortBuffer)
		}
		for i, v := range b.Index {
			if v >= header.VertexCount {
				return nil, fmt.Errorf("%w: index entry %d references vertex %d of %d", ErrCorrupt, i, v, header.VertexCount)
			}
		}
	}
	if header.Flags&flagBuildingIDs != 0 {
		b.BuildingIDs = make([]float32, header.VertexCount)
		if err := readFloats(r, b.BuildingIDs, "building ids"); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readFloats(r io.Reader, dst []float32, what string) error {
	if err := binary.Read(r, byteOrder, dst); err != nil {
		return fmt.Errorf("%w: %s", ErrShortBuffer, what)
	}
	return nil
}
