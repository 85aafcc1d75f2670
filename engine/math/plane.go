package math

import "github.com/go-gl/mathgl/mgl32"

// Plane is the set of points p where Normal.Dot(p) + Constant == 0.
type Plane struct {
	Normal   mgl32.Vec3
	Constant float32
}

func NewPlane(normal mgl32.Vec3, constant float32) Plane {
	return Plane{Normal: normal, Constant: constant}
}

// SetComponents sets the plane from raw coefficients and normalizes it, so
// the normal has unit length and the constant is scaled by the same factor.
func (p *Plane) SetComponents(x, y, z, w float32) *Plane {
	p.Normal = mgl32.Vec3{x, y, z}
	p.Constant = w
	return p.Normalize()
}

func (p *Plane) Normalize() *Plane {
	inverseNormalLength := 1.0 / p.Normal.Len()
	p.Normal = p.Normal.Mul(inverseNormalLength)
	p.Constant *= inverseNormalLength
	return p
}

// DistanceToPoint returns the signed distance, positive on the normal side.
func (p Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Constant
}
