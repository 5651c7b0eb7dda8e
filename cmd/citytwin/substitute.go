package main

import (
	"context"
	"fmt"
	"os"

	"github.com/meshwerk/citytwin/internal/viewer"
	"github.com/meshwerk/citytwin/pkg/backend"
	"github.com/meshwerk/citytwin/pkg/scene"
	"github.com/spf13/cobra"
)

var substituteCmd = &cobra.Command{
	Use:   "substitute [scene-dir]",
	Short: "Dry-run the custom-mesh substitution against the backend",
	Long: `Load a scene, fetch the backend's list of buildings with replacement
meshes, and run the full substitution batch: placement computation,
mesh download, face hiding and property refresh. Reports which
buildings were substituted and which kept their procedural geometry.`,
	Args: cobra.ExactArgs(1),
	Run:  runSubstitute,
}

func init() {
	rootCmd.AddCommand(substituteCmd)
}

func runSubstitute(cmd *cobra.Command, args []string) {
	cfg, logger, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.BackendURL == "" {
		fmt.Fprintln(os.Stderr, "Error: no backend_url configured")
		os.Exit(1)
	}

	s, err := scene.Load(args[0], logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}

	state := viewer.NewState(scene.NewResolver(s.FaceMap, s.Properties, logger), logger)
	for id, buf := range s.Chunks {
		state.AddChunk(viewer.NewChunk(id, buf))
	}

	ctx := context.Background()
	client := backend.NewHTTPClient(cfg.BackendURL, logger)

	ids, err := client.ListCustomMeshes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing custom meshes: %v\n", err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		fmt.Println("No buildings with replacement meshes.")
		return
	}

	done := state.SubstituteBatch(ctx, ids, client)

	fmt.Printf("Substituted %d of %d buildings\n", len(done), len(ids))
	for _, id := range done {
		r, _ := state.HiddenRange(id)
		fmt.Printf("  osm %d: chunk %s faces [%d, %d) hidden\n", id, r.ChunkID, r.StartFace, r.EndFace)
	}
	skipped := len(ids) - len(done)
	if skipped > 0 {
		fmt.Printf("%d buildings kept their procedural geometry (see log)\n", skipped)
	}
}
