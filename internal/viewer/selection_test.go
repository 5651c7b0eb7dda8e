package viewer

import (
	"testing"

	"github.com/meshwerk/citytwin/pkg/geometry"
	"github.com/meshwerk/citytwin/pkg/scene"
)

type fakeSink struct {
	shown   *scene.PropertyRecord
	cleared bool
}

func (f *fakeSink) ShowBuilding(rec *scene.PropertyRecord) {
	f.shown = rec
	f.cleared = false
}

func (f *fakeSink) ClearBuilding() {
	f.shown = nil
	f.cleared = true
}

func down(x, y float64) geometry.Ray {
	return geometry.NewRay(geometry.NewVector3(x, y, 20), geometry.NewVector3(0, 0, -1))
}

func TestRaycastNearestFace(t *testing.T) {
	st := testState()
	c := NewController(st, nil)

	// both roof (z=9) and floor (z=5) faces of 111 lie under this ray;
	// the roof is nearer
	hit, ok := c.Raycast(down(1, 0.5))
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Chunk != testChunk || hit.Face != 1 {
		t.Errorf("hit: %+v", hit)
	}
	if hit.Point.Z != 9 {
		t.Errorf("hit point Z: expected 9, got %v", hit.Point.Z)
	}
}

func TestRaycastMiss(t *testing.T) {
	st := testState()
	c := NewController(st, nil)

	if _, ok := c.Raycast(down(100, 100)); ok {
		t.Error("expected a miss")
	}
}

func TestRaycastEmptyScene(t *testing.T) {
	st := NewState(scene.NewResolver(scene.NewFaceMap(), scene.NewPropertyTable(), nil), nil)
	c := NewController(st, &fakeSink{})

	if _, ok := c.Raycast(down(0, 0)); ok {
		t.Error("expected a miss with no chunks loaded")
	}
	c.PointerMove(down(0, 0))
	if got := c.Click(down(0, 0)); got != scene.NoGlobalID {
		t.Errorf("click on empty scene: %v", got)
	}
}

func TestHover(t *testing.T) {
	st := testState()
	c := NewController(st, nil)

	c.PointerMove(down(1, 0.5))
	if st.Highlight.HoveredID() != 0 {
		t.Errorf("hovered: expected 0, got %v", st.Highlight.HoveredID())
	}

	c.PointerMove(down(100, 100))
	if st.Highlight.HoveredID() != scene.NoGlobalID {
		t.Error("hover not cleared on miss")
	}
}

// A selected building must not also light up as hovered.
func TestSelectedSuppressesOwnHover(t *testing.T) {
	st := testState()
	c := NewController(st, &fakeSink{})

	if got := c.Click(down(1, 0.5)); got != 0 {
		t.Fatalf("click: expected global id 0, got %v", got)
	}
	c.PointerMove(down(1, 0.5))
	if st.Highlight.HoveredID() != scene.NoGlobalID {
		t.Error("selected building hosts its own hover highlight")
	}

	// a different building still hovers normally
	c.PointerMove(down(10.2, 10.2))
	if st.Highlight.HoveredID() != 1 {
		t.Errorf("hovered: expected 1, got %v", st.Highlight.HoveredID())
	}
}

func TestClickShowsProperties(t *testing.T) {
	st := testState()
	sink := &fakeSink{}
	c := NewController(st, sink)

	c.Click(down(1, 0.5))
	if sink.shown == nil || sink.shown.Name != "Old Mill" {
		t.Fatalf("info panel record: %+v", sink.shown)
	}
	if st.Highlight.SelectedID() != 0 {
		t.Errorf("selected: %v", st.Highlight.SelectedID())
	}

	// empty space clears both selection and panel
	c.Click(down(100, 100))
	if st.Highlight.SelectedID() != scene.NoGlobalID {
		t.Error("selection not cleared")
	}
	if !sink.cleared {
		t.Error("info panel not cleared")
	}
}

// Masked faces are not raycast-hittable, so a substituted building
// cannot be hovered or re-selected through its procedural geometry.
func TestHiddenFacesNotHittable(t *testing.T) {
	st := testState()
	c := NewController(st, nil)

	chunk, _ := st.Chunk(testChunk)
	chunk.HideFaces(0, 2)

	if _, ok := c.Raycast(down(1, 0.5)); ok {
		t.Error("hidden faces must not be hittable")
	}
	// the other building is untouched
	if _, ok := c.Raycast(down(10.2, 10.2)); !ok {
		t.Error("visible faces must stay hittable")
	}
}
