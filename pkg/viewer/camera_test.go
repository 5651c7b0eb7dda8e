package viewer

import (
	"math"
	"testing"

	"github.com/meshwerk/citytwin/pkg/geometry"
)

func testCamera() *Camera {
	bbox := geometry.NewBoundingBox()
	bbox.Extend(geometry.NewVector3(-1, -1, 0))
	bbox.Extend(geometry.NewVector3(1, 1, 2))
	return NewCamera(bbox)
}

func TestCameraLooksAtCenter(t *testing.T) {
	c := testCamera()

	// the bounding box center projects to the screen center
	x, y, z := c.Project(geometry.NewVector3(0, 0, 1), 800, 600)
	if math.Abs(x-400) > 1 || math.Abs(y-300) > 1 {
		t.Errorf("center projected to (%v, %v)", x, y)
	}
	if z <= 0 {
		t.Errorf("center behind the camera: z=%v", z)
	}
}

func TestCameraRotateClampsPitch(t *testing.T) {
	c := testCamera()
	c.Rotate(10, 0)
	if c.Pitch >= math.Pi/2 {
		t.Errorf("pitch not clamped: %v", c.Pitch)
	}
	c.Rotate(-20, 0)
	if c.Pitch <= -math.Pi/2 {
		t.Errorf("pitch not clamped: %v", c.Pitch)
	}
}

func TestCameraZoomFloor(t *testing.T) {
	c := testCamera()
	for i := 0; i < 100; i++ {
		c.Zoom(-0.5)
	}
	if c.Distance < 0.1 {
		t.Errorf("distance below floor: %v", c.Distance)
	}
}

// A pick ray through the screen center must pass through the camera
// target.
func TestPickRayThroughCenter(t *testing.T) {
	c := testCamera()
	ray := c.PickRay(400, 300, 800, 600)

	toTarget := c.Target.Sub(ray.Origin).Normalize()
	if toTarget.Dot(ray.Direction) < 0.999 {
		t.Errorf("ray direction %v does not point at target", ray.Direction)
	}
}

// Project and PickRay must agree: picking where a point projected
// yields a ray passing near that point.
func TestProjectPickRoundTrip(t *testing.T) {
	c := testCamera()
	p := geometry.NewVector3(0.5, -0.3, 1.2)

	x, y, _ := c.Project(p, 800, 600)
	ray := c.PickRay(x, y, 800, 600)

	// distance from p to the ray
	toP := p.Sub(ray.Origin)
	along := toP.Dot(ray.Direction)
	closest := ray.At(along)
	if closest.Distance(p) > 0.01 {
		t.Errorf("pick ray misses projected point by %v", closest.Distance(p))
	}
}
