package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis aligned bounding box. The zero value is not empty; use
// NewBox3 for an empty box.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func NewBox3() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b *Box3) ExpandByPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box3) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// BoxFromPoints bounds the packed points; every itemSize floats start a
// point whose first three components are xyz.
func BoxFromPoints(points []float32, itemSize int) Box3 {
	b := NewBox3()
	if itemSize < 3 {
		return b
	}
	for i := 0; i+2 < len(points); i += itemSize {
		b.ExpandByPoint(mgl32.Vec3{points[i], points[i+1], points[i+2]})
	}
	return b
}

func lenSq(v mgl32.Vec3) float32 {
	return v.Dot(v)
}
