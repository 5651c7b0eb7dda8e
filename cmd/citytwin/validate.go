package main

import (
	"fmt"
	"os"

	"github.com/meshwerk/citytwin/pkg/scene"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scene-dir]",
	Short: "Validate the face-map indices of a scene",
	Long: `Check every chunk's face-map for the invariants the viewer depends on:
entries sorted by start face, contiguous coverage starting at face 0,
scene-wide global ID uniqueness, and IDs that survive a 32-bit float
round trip. Also cross-checks entry ranges against the loaded meshes.`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
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

	failed := false
	if err := s.FaceMap.Validate(); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		failed = true
	}

	// every chunk's face map must cover exactly the mesh's face count
	for _, id := range s.FaceMap.Chunks() {
		entries := s.FaceMap.Entries(id)
		if len(entries) == 0 {
			continue
		}
		buf, ok := s.Chunks[id]
		if !ok {
			fmt.Printf("FAIL: chunk %s has a face map but no mesh\n", id)
			failed = true
			continue
		}
		last := entries[len(entries)-1]
		if last.EndFace != buf.FaceCount() {
			fmt.Printf("FAIL: chunk %s face map covers %d faces, mesh has %d\n",
				id, last.EndFace, buf.FaceCount())
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Printf("OK: %d chunks, %d buildings\n", len(s.Chunks), countBuildings(s))
}

func countBuildings(s *scene.Scene) int {
	n := 0
	for _, id := range s.FaceMap.Chunks() {
		n += len(s.FaceMap.Entries(id))
	}
	return n
}
