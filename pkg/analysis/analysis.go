// Package analysis computes statistics over mesh buffers and loaded
// scenes for the CLI inspection commands.
package analysis

import (
	"fmt"
	"math"

	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// MeshStats summarizes one mesh buffer
type MeshStats struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	VertexCount   int
	FaceCount     int
	Indexed       bool
	Degenerate    int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
}

// DegenerateAreaThreshold is the face area below which a triangle is
// counted as degenerate.
const DegenerateAreaThreshold = 1e-10

// AnalyzeBuffer computes statistics for a mesh buffer
func AnalyzeBuffer(b *mesh.Buffer) *MeshStats {
	stats := &MeshStats{
		BoundingBox: b.Bounds(),
		SurfaceArea: b.SurfaceArea(),
		VertexCount: b.VertexCount(),
		FaceCount:   b.FaceCount(),
		Indexed:     b.IsIndexed(),
	}
	stats.Dimensions = stats.BoundingBox.Size()

	minLen := math.MaxFloat64
	maxLen := 0.0
	total := 0.0
	edges := 0
	for f := 0; f < b.FaceCount(); f++ {
		tri := b.FaceTriangle(f)
		if tri.Area() < DegenerateAreaThreshold {
			stats.Degenerate++
		}
		for _, l := range tri.EdgeLengths() {
			total += l
			if l < minLen {
				minLen = l
			}
			if l > maxLen {
				maxLen = l
			}
			edges++
		}
	}
	if edges > 0 {
		stats.MinEdgeLength = minLen
		stats.MaxEdgeLength = maxLen
		stats.AvgEdgeLength = total / float64(edges)
	}
	return stats
}

// ChunkStats summarizes one chunk of a scene
type ChunkStats struct {
	ID        scene.ChunkID
	Faces     int
	Buildings int
}

// SceneStats summarizes a loaded scene
type SceneStats struct {
	Name          string
	ChunkCount    int
	BuildingCount int
	FaceCount     int
	PropertyCount int
	Chunks        []ChunkStats
}

// AnalyzeScene computes per-chunk and scene-wide statistics
func AnalyzeScene(s *scene.Scene) *SceneStats {
	stats := &SceneStats{
		Name:          s.Name,
		ChunkCount:    len(s.Chunks),
		PropertyCount: s.Properties.Len(),
	}
	for _, id := range s.FaceMap.Chunks() {
		entries := s.FaceMap.Entries(id)
		cs := ChunkStats{ID: id, Buildings: len(entries)}
		if buf, ok := s.Chunks[id]; ok {
			cs.Faces = buf.FaceCount()
		}
		stats.BuildingCount += len(entries)
		stats.FaceCount += cs.Faces
		stats.Chunks = append(stats.Chunks, cs)
	}
	return stats
}

// FormatVector formats a vector for CLI output
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
