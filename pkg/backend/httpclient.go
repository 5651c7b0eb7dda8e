package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meshwerk/citytwin/pkg/mesh"
	"github.com/meshwerk/citytwin/pkg/meshio"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// HTTPClient is the net/http implementation of Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient creates a client for the service at baseURL
func NewHTTPClient(baseURL string, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// FetchBuilding returns the service record for a building
func (c *HTTPClient) FetchBuilding(ctx context.Context, id scene.OSMID) (*BuildingInfo, error) {
	url := fmt.Sprintf("%s/buildings/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch building %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch building %d: unexpected status code %d", id, resp.StatusCode)
	}

	var info BuildingInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode building %d: %w", id, err)
	}
	return &info, nil
}

// DownloadMesh fetches and decodes the building's replacement mesh.
// A 404 means the building has no replacement mesh and returns
// (nil, nil).
func (c *HTTPClient) DownloadMesh(ctx context.Context, id scene.OSMID) (*mesh.Buffer, error) {
	url := fmt.Sprintf("%s/buildings/%d/mesh", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download mesh for %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download mesh for %d: unexpected status code %d", id, resp.StatusCode)
	}

	buf, err := meshio.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mesh for %d: %w", id, err)
	}
	c.logger.Debug("downloaded custom mesh", "osm_id", int64(id), "vertices", buf.VertexCount())
	return buf, nil
}

// UploadMesh stores a replacement mesh for the building
func (c *HTTPClient) UploadMesh(ctx context.Context, id scene.OSMID, buf *mesh.Buffer, source string) error {
	var body bytes.Buffer
	if err := meshio.Encode(&body, buf); err != nil {
		return fmt.Errorf("failed to encode mesh for %d: %w", id, err)
	}

	url := fmt.Sprintf("%s/buildings/%d/mesh", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if source != "" {
		req.Header.Set("X-Mesh-Source", source)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload mesh for %d: %w", id, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("upload mesh for %d: unexpected status code %d", id, resp.StatusCode)
	}
	c.logger.Info("uploaded custom mesh", "osm_id", int64(id), "source", source)
	return nil
}

// ListCustomMeshes returns the IDs of every building with a
// replacement mesh
func (c *HTTPClient) ListCustomMeshes(ctx context.Context) ([]scene.OSMID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/custom-meshes", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom meshes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list custom meshes: unexpected status code %d", resp.StatusCode)
	}

	var ids []scene.OSMID
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("failed to decode custom mesh list: %w", err)
	}
	return ids, nil
}
