package viewer

import (
	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/scene"
)

// Hit is a resolved raycast intersection with a procedural chunk
type Hit struct {
	Chunk    scene.ChunkID
	Face     int
	Distance float64
	Point    geometry.Vector3
}

// InfoSink receives the property record of a clicked building. The
// info panel implements this; tests substitute their own.
type InfoSink interface {
	ShowBuilding(rec *scene.PropertyRecord)
	ClearBuilding()
}

// Controller drives hover and selection highlighting from pointer
// rays. It runs entirely on the UI goroutine.
//
// Custom meshes are deliberately excluded from the hit test: once a
// building is substituted, its replacement is not separately hoverable
// in the main scene.
type Controller struct {
	state *State
	info  InfoSink
}

// NewController creates a controller over the viewer state
func NewController(state *State, info InfoSink) *Controller {
	return &Controller{state: state, info: info}
}

// Raycast finds the nearest visible procedural face along the ray.
// Masked (hidden) faces are not hittable. Returns false when nothing
// is hit, including when no chunks are loaded yet.
func (c *Controller) Raycast(ray geometry.Ray) (Hit, bool) {
	best := Hit{Distance: -1}
	for id, chunk := range c.state.Chunks() {
		for f := 0; f < chunk.Geom.FaceCount(); f++ {
			if chunk.FaceHidden(f) {
				continue
			}
			t, ok := ray.IntersectTriangle(chunk.Geom.FaceTriangle(f))
			if !ok {
				continue
			}
			if best.Distance < 0 || t < best.Distance {
				best = Hit{Chunk: id, Face: f, Distance: t, Point: ray.At(t)}
			}
		}
	}
	return best, best.Distance >= 0
}

// PointerMove updates the hover highlight for a pointer ray. The
// selected building suppresses its own hover highlight.
func (c *Controller) PointerMove(ray geometry.Ray) {
	hit, ok := c.Raycast(ray)
	if !ok {
		c.state.Highlight.SetHovered(scene.NoGlobalID)
		return
	}
	chunk, _ := c.state.Chunk(hit.Chunk)
	id := c.state.Resolver.BuildingIDAt(hit.Chunk, chunk.Geom, hit.Face)
	if id == c.state.Highlight.SelectedID() {
		c.state.Highlight.SetHovered(scene.NoGlobalID)
		return
	}
	c.state.Highlight.SetHovered(id)
}

// Click resolves a pointer ray to a building selection. A click on
// empty space clears the selection and the info panel. Returns the
// selected global ID, or NoGlobalID.
func (c *Controller) Click(ray geometry.Ray) scene.GlobalID {
	hit, ok := c.Raycast(ray)
	if !ok {
		c.clearSelection()
		return scene.NoGlobalID
	}

	entry, found := c.state.Resolver.FaceMap().Resolve(hit.Chunk, hit.Face)
	if !found {
		c.clearSelection()
		return scene.NoGlobalID
	}

	c.state.Highlight.SetSelected(entry.GlobalID)
	if c.state.Highlight.HoveredID() == entry.GlobalID {
		c.state.Highlight.SetHovered(scene.NoGlobalID)
	}
	if c.info != nil {
		if rec := c.state.Resolver.PropertiesFromOSMID(entry.OSMID); rec != nil {
			c.info.ShowBuilding(rec)
		} else {
			c.info.ClearBuilding()
		}
	}
	return entry.GlobalID
}

func (c *Controller) clearSelection() {
	c.state.Highlight.SetSelected(scene.NoGlobalID)
	if c.info != nil {
		c.info.ClearBuilding()
	}
}
