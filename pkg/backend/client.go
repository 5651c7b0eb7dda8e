// Package backend talks to the city model service that stores building
// property overrides and user-supplied replacement meshes.
package backend

import (
	"context"

	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// BuildingInfo is the service's record for one building. The patch
// carries only the fields the service has overridden; everything else
// keeps the value baked into the scene tiles.
type BuildingInfo struct {
	OSMID       scene.OSMID         `json:"osm_id"`
	HasOverride bool                `json:"has_override"`
	Patch       scene.PropertyPatch `json:"properties"`
}

// Client is the backend access surface.
//
// DownloadMesh returns (nil, nil) when the building has no replacement
// mesh; a non-nil error always means the request itself failed. Callers
// must not treat an absent mesh as a failure.
type Client interface {
	// FetchBuilding returns the service record for a building
	FetchBuilding(ctx context.Context, id scene.OSMID) (*BuildingInfo, error)

	// DownloadMesh fetches and decodes the building's replacement mesh
	DownloadMesh(ctx context.Context, id scene.OSMID) (*mesh.Buffer, error)

	// UploadMesh stores a replacement mesh for the building. The source
	// tag is an opaque label recorded with the mesh (editor session,
	// import tool, migration script).
	UploadMesh(ctx context.Context, id scene.OSMID, buf *mesh.Buffer, source string) error

	// ListCustomMeshes returns the IDs of every building with a
	// replacement mesh
	ListCustomMeshes(ctx context.Context) ([]scene.OSMID, error)
}
