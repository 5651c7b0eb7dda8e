package main

import (
	"fmt"
	"os"

	"github.com/meshwerk/citytwin/pkg/analysis"
	"github.com/meshwerk/citytwin/pkg/scene"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [scene-dir]",
	Short: "Display information about a scene directory",
	Long:  "Show scene statistics including chunk count, building count, face totals and per-chunk breakdowns.",
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
	_, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	s, err := scene.Load(args[0], logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	result := analysis.AnalyzeScene(s)

	fmt.Println("Scene Information")
	fmt.Println("=================")
	if result.Name != "" {
		fmt.Printf("Name: %s\n", result.Name)
	}
	fmt.Printf("Directory: %s\n\n", args[0])

	fmt.Println("Totals:")
	fmt.Printf("  Chunks: %d\n", result.ChunkCount)
	fmt.Printf("  Buildings: %d\n", result.BuildingCount)
	fmt.Printf("  Faces: %d\n", result.FaceCount)
	fmt.Printf("  Property records: %d\n\n", result.PropertyCount)

	fmt.Println("Chunks:")
	for _, cs := range result.Chunks {
		fmt.Printf("  %s: %d buildings, %d faces\n", cs.ID, cs.Buildings, cs.Faces)
	}

	for id, buf := range s.Chunks {
		stats := analysis.AnalyzeBuffer(buf)
		fmt.Printf("\nChunk %s:\n", id)
		fmt.Printf("  Vertices: %d\n", stats.VertexCount)
		fmt.Printf("  Surface Area: %.6f square units\n", stats.SurfaceArea)
		fmt.Printf("  Min: %s\n", analysis.FormatVector(stats.BoundingBox.Min))
		fmt.Printf("  Max: %s\n", analysis.FormatVector(stats.BoundingBox.Max))
		if stats.Degenerate > 0 {
			fmt.Printf("  Degenerate faces: %d\n", stats.Degenerate)
		}
	}
}
