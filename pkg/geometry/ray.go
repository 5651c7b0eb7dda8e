package geometry

const intersectEpsilon = 1e-9

// Ray represents a half-line used for picking geometry under the cursor
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay creates a ray with a normalized direction
func NewRay(origin, direction Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vector3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectTriangle tests the ray against a triangle using the
// Möller–Trumbore algorithm. It returns the ray parameter of the hit
// point and whether the triangle was hit in front of the origin.
// Back faces are hit as well; callers that care about facing should
// check the triangle normal against the ray direction.
func (r Ray) IntersectTriangle(t Triangle) (float64, bool) {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)

	pvec := r.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, false // ray parallel to triangle plane
	}
	invDet := 1.0 / det

	tvec := r.Origin.Sub(t.V1)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qvec := tvec.Cross(edge1)
	v := r.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := edge2.Dot(qvec) * invDet
	if dist < intersectEpsilon {
		return 0, false
	}
	return dist, true
}
