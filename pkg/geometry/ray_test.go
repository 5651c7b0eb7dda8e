package geometry

import (
	"math"
	"testing"
)

func TestRayIntersectTriangleHit(t *testing.T) {
	tri := NewTriangle(
		NewVector3(-1, -1, 0),
		NewVector3(1, -1, 0),
		NewVector3(0, 1, 0),
	)
	ray := NewRay(NewVector3(0, 0, 5), NewVector3(0, 0, -1))

	dist, hit := ray.IntersectTriangle(tri)
	if !hit {
		t.Fatal("expected hit, got miss")
	}
	if math.Abs(dist-5.0) > 1e-10 {
		t.Errorf("hit distance: expected 5.0, got %v", dist)
	}
}

func TestRayIntersectTriangleMiss(t *testing.T) {
	tri := NewTriangle(
		NewVector3(-1, -1, 0),
		NewVector3(1, -1, 0),
		NewVector3(0, 1, 0),
	)
	ray := NewRay(NewVector3(5, 5, 5), NewVector3(0, 0, -1))

	if _, hit := ray.IntersectTriangle(tri); hit {
		t.Error("expected miss outside the triangle")
	}
}

func TestRayIntersectTriangleBehindOrigin(t *testing.T) {
	tri := NewTriangle(
		NewVector3(-1, -1, 0),
		NewVector3(1, -1, 0),
		NewVector3(0, 1, 0),
	)
	// Triangle is behind the ray origin
	ray := NewRay(NewVector3(0, 0, -5), NewVector3(0, 0, -1))

	if _, hit := ray.IntersectTriangle(tri); hit {
		t.Error("expected miss for triangle behind the origin")
	}
}

func TestRayIntersectTriangleParallel(t *testing.T) {
	tri := NewTriangle(
		NewVector3(-1, -1, 0),
		NewVector3(1, -1, 0),
		NewVector3(0, 1, 0),
	)
	ray := NewRay(NewVector3(0, 0, 5), NewVector3(1, 0, 0))

	if _, hit := ray.IntersectTriangle(tri); hit {
		t.Error("expected miss for ray parallel to triangle plane")
	}
}

func TestRayAt(t *testing.T) {
	ray := NewRay(NewVector3(1, 2, 3), NewVector3(0, 0, 2))

	point := ray.At(4)
	expected := NewVector3(1, 2, 7) // direction normalized to unit Z

	if point.Distance(expected) > 1e-10 {
		t.Errorf("At failed: expected %v, got %v", expected, point)
	}
}
