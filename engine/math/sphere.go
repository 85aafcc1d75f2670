package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func NewSphere(center mgl32.Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// ApplyMatrix4 moves the centre by m and scales the radius by the largest
// axis scale of m, so the result still encloses the transformed volume.
func (s Sphere) ApplyMatrix4(m mgl32.Mat4) Sphere {
	return Sphere{
		Center: m.Mul4x1(s.Center.Vec4(1)).Vec3(),
		Radius: s.Radius * MaxScaleOnAxis(m),
	}
}

func (s Sphere) IsEmpty() bool {
	return s.Radius < 0
}

// SphereFromPoints computes a sphere centred on the bounding box of the
// packed xyz points with the radius of the farthest point.
func SphereFromPoints(points []float32, itemSize int) Sphere {
	box := BoxFromPoints(points, itemSize)
	if box.IsEmpty() {
		return Sphere{Radius: -1}
	}
	center := box.Center()

	var maxRadiusSq float32
	for i := 0; i+2 < len(points); i += itemSize {
		p := mgl32.Vec3{points[i], points[i+1], points[i+2]}
		maxRadiusSq = max(maxRadiusSq, lenSq(p.Sub(center)))
	}
	return Sphere{Center: center, Radius: math32.Sqrt(maxRadiusSq)}
}
