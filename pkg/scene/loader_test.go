package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/meshio"
)

func writeSceneDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	manifest := `{
		"name": "test-town",
		"properties": "buildings.json",
		"chunks": [
			{"id": "tile_0_0", "mesh": "tile_0_0.ctwm", "facemap": "tile_0_0.facemap.json"},
			{"id": "broken", "mesh": "missing.ctwm", "facemap": "broken.facemap.json"}
		]
	}`
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	facemap := `[
		{"osm_id": 111, "building_index": 0, "global_id": 0, "start_face": 0, "end_face": 2}
	]`
	if err := os.WriteFile(filepath.Join(dir, "tile_0_0.facemap.json"), []byte(facemap), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.facemap.json"), []byte(facemap), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := &mesh.Buffer{
		Positions: []float32{
			0, 0, 5, 2, 0, 5, 2, 2, 9,
			0, 0, 5, 2, 2, 9, 0, 2, 9,
		},
		BuildingIDs: []float32{0, 0, 0, 0, 0, 0},
	}
	f, err := os.Create(filepath.Join(dir, "tile_0_0.ctwm"))
	if err != nil {
		t.Fatal(err)
	}
	if err := meshio.Encode(f, buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	properties := `[
		{"building_id": "b-1", "osm_id": 111, "name": "Town Hall", "building_type": "civic", "height": 12.5}
	]`
	if err := os.WriteFile(filepath.Join(dir, "buildings.json"), []byte(properties), 0o644); err != nil {
		t.Fatal(err)
	}

	return dir
}

func TestLoadScene(t *testing.T) {
	dir := writeSceneDir(t)

	s, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Name != "test-town" {
		t.Errorf("scene name: got %q", s.Name)
	}
	// The broken chunk is skipped, not fatal
	if len(s.Chunks) != 1 {
		t.Fatalf("expected 1 loaded chunk, got %d", len(s.Chunks))
	}

	buf := s.Chunks["tile_0_0"]
	if buf == nil || buf.FaceCount() != 2 {
		t.Fatalf("chunk buffer not loaded correctly: %+v", buf)
	}

	entry, found := s.FaceMap.Resolve("tile_0_0", 1)
	if !found || entry.OSMID != 111 {
		t.Errorf("facemap resolve after load: found=%v entry=%+v", found, entry)
	}

	rec, ok := s.Properties.FindByOSMID(111)
	if !ok || rec.Name != "Town Hall" {
		t.Errorf("property record after load: ok=%v rec=%+v", ok, rec)
	}
}

func TestLoadSceneMissingManifest(t *testing.T) {
	if _, err := Load(t.TempDir(), nil); err == nil {
		t.Error("expected error for missing manifest")
	}
}
