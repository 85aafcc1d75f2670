package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Vec3FromCol returns the xyz part of a matrix column.
func Vec3FromCol(m mgl32.Mat4, col int) mgl32.Vec3 {
	return m.Col(col).Vec3()
}

// SetColVec3 writes v into the xyz part of a matrix column, keeping w.
func SetColVec3(m *mgl32.Mat4, col int, v mgl32.Vec3) {
	m.SetCol(col, v.Vec4(m.Col(col).W()))
}
