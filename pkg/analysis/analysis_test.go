package analysis

import (
	"math"
	"testing"

	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/scene"
)

func TestAnalyzeBuffer(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 3, 0, 0, 0, 4, 0,
	}}
	stats := AnalyzeBuffer(b)

	if stats.VertexCount != 3 || stats.FaceCount != 1 {
		t.Errorf("counts: %d vertices, %d faces", stats.VertexCount, stats.FaceCount)
	}
	if math.Abs(stats.SurfaceArea-6) > 1e-6 {
		t.Errorf("surface area: expected 6, got %v", stats.SurfaceArea)
	}
	if stats.MinEdgeLength != 3 || stats.MaxEdgeLength != 5 {
		t.Errorf("edge lengths: min %v max %v", stats.MinEdgeLength, stats.MaxEdgeLength)
	}
	if math.Abs(stats.AvgEdgeLength-4) > 1e-6 {
		t.Errorf("average edge length: %v", stats.AvgEdgeLength)
	}
	if stats.Degenerate != 0 {
		t.Errorf("degenerate count: %d", stats.Degenerate)
	}
	if stats.Dimensions.X != 3 || stats.Dimensions.Y != 4 {
		t.Errorf("dimensions: %v", stats.Dimensions)
	}
}

func TestAnalyzeBufferDegenerate(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{
		0, 0, 0, 1, 0, 0, 2, 0, 0,
	}}
	if stats := AnalyzeBuffer(b); stats.Degenerate != 1 {
		t.Errorf("expected 1 degenerate face, got %d", stats.Degenerate)
	}
}

func TestAnalyzeScene(t *testing.T) {
	fm := scene.NewFaceMap()
	fm.SetChunk("a", []scene.Entry{
		{OSMID: 1, GlobalID: 0, StartFace: 0, EndFace: 2},
		{OSMID: 2, GlobalID: 1, StartFace: 2, EndFace: 3},
	})
	fm.SetChunk("b", []scene.Entry{
		{OSMID: 3, GlobalID: 2, StartFace: 0, EndFace: 1},
	})

	props := scene.NewPropertyTable()
	props.Put(&scene.PropertyRecord{BuildingID: "w1", OSMID: 1})

	s := &scene.Scene{
		Name:       "demo",
		FaceMap:    fm,
		Properties: props,
		Chunks: map[scene.ChunkID]*mesh.Buffer{
			"a": {Positions: make([]float32, 3*3*3)},
			"b": {Positions: make([]float32, 1*3*3)},
		},
	}

	stats := AnalyzeScene(s)
	if stats.ChunkCount != 2 || stats.BuildingCount != 3 {
		t.Errorf("chunks %d buildings %d", stats.ChunkCount, stats.BuildingCount)
	}
	if stats.FaceCount != 4 {
		t.Errorf("face count: %d", stats.FaceCount)
	}
	if stats.PropertyCount != 1 {
		t.Errorf("property count: %d", stats.PropertyCount)
	}
	if len(stats.Chunks) != 2 || stats.Chunks[0].ID != "a" || stats.Chunks[0].Buildings != 2 {
		t.Errorf("chunk stats: %+v", stats.Chunks)
	}
}

func TestFormatVector(t *testing.T) {
	b := &mesh.Buffer{Positions: []float32{1, 2, 3}}
	got := FormatVector(b.Position(0))
	if got != "(1.000000, 2.000000, 3.000000)" {
		t.Errorf("formatted: %q", got)
	}
}
