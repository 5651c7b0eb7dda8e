// Package viewer renders mesh previews on the CPU for the editor GUI.
package viewer

import (
	"math"

	"github.com/meshwerk/citytwin/pkg/geometry"
)

// Camera is an orbit camera around a target point. The scene is Z-up,
// matching the city geometry.
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	Pitch     float64 // Rotation toward the poles
	Yaw       float64 // Rotation around the Z axis
}

// NewCamera creates a camera positioned to view a bounding box
func NewCamera(bbox geometry.BoundingBox) *Camera {
	center := bbox.Center()
	size := bbox.Size()
	distance := math.Max(size.X, math.Max(size.Y, size.Z)) * 2.0
	if distance < 1 {
		distance = 1
	}

	c := &Camera{
		Target:   center,
		Up:       geometry.NewVector3(0, 0, 1),
		FOV:      math.Pi / 4,
		Distance: distance,
		Pitch:    math.Pi / 6,
		Yaw:      math.Pi / 4,
	}
	c.UpdatePosition()
	return c
}

// UpdatePosition recomputes the eye point from the orbit angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.Pitch) * math.Sin(c.Yaw)
	y := c.Distance * math.Cos(c.Pitch) * math.Cos(c.Yaw)
	z := c.Distance * math.Sin(c.Pitch)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera by the given angle deltas
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Pitch += deltaPitch
	c.Yaw += deltaYaw

	// Clamp pitch to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	if c.Pitch > maxAngle {
		c.Pitch = maxAngle
	}
	if c.Pitch < -maxAngle {
		c.Pitch = -maxAngle
	}

	c.UpdatePosition()
}

// Zoom changes the camera distance
func (c *Camera) Zoom(delta float64) {
	c.Distance *= (1.0 + delta)
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

// Project maps a world point to screen coordinates plus view depth
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	if z <= 0.01 {
		z = 0.01
	}

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + (width / 2)
	screenY := (-y/(z*fovScale))*(height/2) + (height / 2)

	return screenX, screenY, z
}

// PickRay converts screen coordinates into a world-space ray for
// face picking
func (c *Camera) PickRay(screenX, screenY, width, height float64) geometry.Ray {
	ndcX := (2.0 * screenX / width) - 1.0
	ndcY := 1.0 - (2.0 * screenY / height)

	aspect := width / height
	fovScale := math.Tan(c.FOV / 2)

	forward := c.Target.Sub(c.Position).Normalize()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	dir := forward.Add(right.Mul(ndcX * fovScale * aspect)).Add(up.Mul(ndcY * fovScale))
	return geometry.NewRay(c.Position, dir)
}
