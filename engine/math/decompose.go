package math

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Compose builds translation * rotation * scale.
func Compose(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	m := rotation.Normalize().Mat4()
	SetColVec3(&m, 0, Vec3FromCol(m, 0).Mul(scale.X()))
	SetColVec3(&m, 1, Vec3FromCol(m, 1).Mul(scale.Y()))
	SetColVec3(&m, 2, Vec3FromCol(m, 2).Mul(scale.Z()))
	m.SetCol(3, position.Vec4(1))
	return m
}

/**
 * @brief Splits an affine matrix into position, rotation and scale. A negative
 * determinant is folded into the x scale so the rotation stays proper.
 * Zero scale on any axis produces NaN components.
 */
func Decompose(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	sx := Vec3FromCol(m, 0).Len()
	sy := Vec3FromCol(m, 1).Len()
	sz := Vec3FromCol(m, 2).Len()
	if m.Det() < 0 {
		sx = -sx
	}

	position := Vec3FromCol(m, 3)

	r := mgl32.Ident4()
	SetColVec3(&r, 0, Vec3FromCol(m, 0).Mul(1/sx))
	SetColVec3(&r, 1, Vec3FromCol(m, 1).Mul(1/sy))
	SetColVec3(&r, 2, Vec3FromCol(m, 2).Mul(1/sz))

	return position, mgl32.Mat4ToQuat(r).Normalize(), mgl32.Vec3{sx, sy, sz}
}

// MaxScaleOnAxis returns the largest column length of the upper 3x3.
func MaxScaleOnAxis(m mgl32.Mat4) float32 {
	x := lenSq(Vec3FromCol(m, 0))
	y := lenSq(Vec3FromCol(m, 1))
	z := lenSq(Vec3FromCol(m, 2))
	return math32.Sqrt(max(x, y, z))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}
