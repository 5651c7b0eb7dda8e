package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/meshwerk/citytwin/pkg/mesh"
)

func sample() *mesh.Buffer {
	b := &mesh.Buffer{
		Positions: []float32{
			0, 0, 0, 2, 0, 0, 2, 2, 0,
			0, 0, 0, 2, 2, 0, 0, 2, 0,
		},
		UVs: []float32{
			0, 0, 1, 0, 1, 1,
			0, 0, 1, 1, 0, 1,
		},
		BuildingIDs: []float32{7, 7, 7, 7, 7, 7},
	}
	b.ComputeVertexNormals()
	return b
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src := sample()

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.VertexCount() != src.VertexCount() {
		t.Fatalf("vertex count: expected %d, got %d", src.VertexCount(), got.VertexCount())
	}
	for i, p := range src.Positions {
		if got.Positions[i] != p {
			t.Fatalf("position %d: expected %v, got %v", i, p, got.Positions[i])
		}
	}
	if !got.HasNormals() || !got.HasUVs() {
		t.Error("normals/uvs lost in round trip")
	}
	if got.IsIndexed() {
		t.Error("non-indexed buffer came back indexed")
	}
	if len(got.BuildingIDs) != 6 || got.BuildingIDs[0] != 7 {
		t.Errorf("building ids lost in round trip: %v", got.BuildingIDs)
	}
}

func TestEncodeDecodeIndexed(t *testing.T) {
	src := &mesh.Buffer{
		Positions: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Index:     []uint32{0, 1, 2, 0, 2, 3},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !got.IsIndexed() {
		t.Fatal("index buffer lost in round trip")
	}
	if len(got.Index) != 6 || got.Index[4] != 2 {
		t.Errorf("index content mismatch: %v", got.Index)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 128)
	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	src := sample()
	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()[:buf.Len()-8]
	if _, err := Decode(bytes.NewReader(data)); err == nil {
		t.Error("expected error for truncated blob")
	}
}

// An index referencing a vertex the blob does not carry must fail the
// decode, not produce a buffer that panics on first use.
func TestDecodeRejectsOutOfRangeIndex(t *testing.T) {
	src := &mesh.Buffer{
		Positions: []float32{0, 0, 0},
		Index:     []uint32{0, 5, 9},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecodeCapsHeaderCounts(t *testing.T) {
	header := Header{
		Magic:       Magic,
		Version:     Version,
		VertexCount: maxVertexCount + 1,
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, byteOrder, header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for oversized vertex count, got %v", err)
	}

	header.VertexCount = 0
	header.IndexCount = maxIndexCount + 1
	buf.Reset()
	if err := binary.Write(&buf, byteOrder, header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt for oversized index count, got %v", err)
	}
}

func TestBoundingSphere(t *testing.T) {
	src := sample()
	center, radius := BoundingSphere(src)

	if center[0] != 1 || center[1] != 1 || center[2] != 0 {
		t.Errorf("sphere center: expected (1,1,0), got %v", center)
	}
	expected := math.Sqrt(2)
	if math.Abs(radius-expected) > 1e-10 {
		t.Errorf("sphere radius: expected %v, got %v", expected, radius)
	}
}
