package scene

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/meshio"
)

// ManifestChunk names the on-disk files of one chunk
type ManifestChunk struct {
	ID      ChunkID `json:"id"`
	Mesh    string  `json:"mesh"`
	FaceMap string  `json:"facemap"`
}

// Manifest describes a scene directory. It is the root document the
// loader reads; all other paths are relative to the manifest.
type Manifest struct {
	Name       string          `json:"name"`
	Properties string          `json:"properties"`
	Chunks     []ManifestChunk `json:"chunks"`
}

// Scene bundles everything loaded from a scene directory: the chunk
// buffers, the face-range index over them, and the property table.
type Scene struct {
	Name       string
	FaceMap    *FaceMap
	Properties *PropertyTable
	Chunks     map[ChunkID]*mesh.Buffer
}

// ManifestFile is the well-known manifest name inside a scene directory
const ManifestFile = "scene.json"

// Load reads a scene directory: the manifest, every chunk's facemap and
// mesh buffer, and the property table. A chunk whose mesh or facemap
// fails to load is skipped with a logged error; the rest of the scene
// still loads.
func Load(dir string, logger *slog.Logger) (*Scene, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read scene manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse scene manifest: %w", err)
	}

	s := &Scene{
		Name:       manifest.Name,
		FaceMap:    NewFaceMap(),
		Properties: NewPropertyTable(),
		Chunks:     make(map[ChunkID]*mesh.Buffer),
	}

	for _, mc := range manifest.Chunks {
		entries, err := loadFaceMapFile(filepath.Join(dir, mc.FaceMap))
		if err != nil {
			logger.Error("skipping chunk: facemap load failed", "chunk", mc.ID, "error", err)
			continue
		}
		buf, err := loadMeshFile(filepath.Join(dir, mc.Mesh))
		if err != nil {
			logger.Error("skipping chunk: mesh load failed", "chunk", mc.ID, "error", err)
			continue
		}
		s.FaceMap.SetChunk(mc.ID, entries)
		s.Chunks[mc.ID] = buf
	}

	if manifest.Properties != "" {
		if err := loadPropertiesFile(filepath.Join(dir, manifest.Properties), s.Properties); err != nil {
			logger.Error("property table load failed", "error", err)
		}
	}

	logger.Info("scene loaded",
		"name", s.Name,
		"chunks", len(s.Chunks),
		"buildings", s.Properties.Len())
	return s, nil
}

func loadFaceMapFile(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse facemap: %w", err)
	}
	return entries, nil
}

func loadMeshFile(path string) (*mesh.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return meshio.Decode(f)
}

func loadPropertiesFile(path string, table *PropertyTable) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var records []*PropertyRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return fmt.Errorf("failed to parse property table: %w", err)
	}
	for _, rec := range records {
		table.Put(rec)
	}
	return nil
}
