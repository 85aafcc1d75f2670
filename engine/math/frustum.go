package math

import "github.com/go-gl/mathgl/mgl32"

// Cullable is anything with a world transform and a local bounding sphere.
type Cullable interface {
	GetWorldMatrix() mgl32.Mat4
	GetBoundingSphere() Sphere
}

// Frustum holds the six inward facing planes of a view volume in the order
// right, left, bottom, top, far, near.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix is a shorthand for SetFromProjectionMatrix on a new frustum.
func NewFrustumFromMatrix(m mgl32.Mat4) *Frustum {
	f := &Frustum{}
	return f.SetFromProjectionMatrix(m)
}

/**
 * @brief Extracts the planes from a combined projection * view matrix by
 * adding and subtracting its rows. Each plane is normalized.
 */
func (f *Frustum) SetFromProjectionMatrix(m mgl32.Mat4) *Frustum {
	f.Planes[0].SetComponents(m[3]-m[0], m[7]-m[4], m[11]-m[8], m[15]-m[12])
	f.Planes[1].SetComponents(m[3]+m[0], m[7]+m[4], m[11]+m[8], m[15]+m[12])
	f.Planes[2].SetComponents(m[3]+m[1], m[7]+m[5], m[11]+m[9], m[15]+m[13])
	f.Planes[3].SetComponents(m[3]-m[1], m[7]-m[5], m[11]-m[9], m[15]-m[13])
	f.Planes[4].SetComponents(m[3]-m[2], m[7]-m[6], m[11]-m[10], m[15]-m[14])
	f.Planes[5].SetComponents(m[3]+m[2], m[7]+m[6], m[11]+m[10], m[15]+m[14])
	return f
}

// IntersectSphere reports whether any part of the sphere can be inside the
// frustum. A sphere tangent to a plane from the outside is visible.
func (f *Frustum) IntersectSphere(center mgl32.Vec3, radius float32) bool {
	negRadius := -radius
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < negRadius {
			return false
		}
	}
	return true
}

// IntersectObject tests the object's bounding sphere moved into world space.
func (f *Frustum) IntersectObject(object Cullable) bool {
	sphere := object.GetBoundingSphere().ApplyMatrix4(object.GetWorldMatrix())
	return f.IntersectSphere(sphere.Center, sphere.Radius)
}

func (f *Frustum) ContainsPoint(point mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(point) < 0 {
			return false
		}
	}
	return true
}
