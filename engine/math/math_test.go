package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, eps), "want %v got %v", want, got)
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	cases := []struct {
		position mgl32.Vec3
		rotation mgl32.Quat
		scale    mgl32.Vec3
	}{
		{mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1}},
		{mgl32.Vec3{-4, 0.5, 9}, mgl32.QuatRotate(mgl32.DegToRad(37), mgl32.Vec3{0, 1, 0}), mgl32.Vec3{2, 3, 0.5}},
		{mgl32.Vec3{0, 0, 0}, mgl32.QuatRotate(mgl32.DegToRad(-120), mgl32.Vec3{1, 1, 0}.Normalize()), mgl32.Vec3{0.25, 4, 1.5}},
	}

	for _, c := range cases {
		m := Compose(c.position, c.rotation, c.scale)
		p, q, s := Decompose(m)

		assertVec3(t, c.position, p)
		assertVec3(t, c.scale, s)
		// q and -q describe the same rotation
		d := q.Dot(c.rotation)
		assert.InDelta(t, 1.0, float64(d*d), eps)
	}
}

func TestComposeOrder(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	m := Compose(mgl32.Vec3{5, 0, 0}, q, mgl32.Vec3{2, 2, 2})

	// scale, then rotate, then translate
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assertVec3(t, mgl32.Vec3{5, 2, 0}, p)
}

func TestDecomposeNegativeDeterminant(t *testing.T) {
	m := mgl32.Scale3D(-2, 1, 1)
	_, _, s := Decompose(m)
	assertVec3(t, mgl32.Vec3{-2, 1, 1}, s)
}

func TestMaxScaleOnAxis(t *testing.T) {
	assert.InDelta(t, 3.0, float64(MaxScaleOnAxis(mgl32.Scale3D(1, 3, 2))), eps)
}

func TestPlaneSetComponentsNormalizes(t *testing.T) {
	var p Plane
	p.SetComponents(0, 2, 0, 4)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, p.Normal)
	assert.InDelta(t, 2.0, float64(p.Constant), eps)
	assert.InDelta(t, 3.0, float64(p.DistanceToPoint(mgl32.Vec3{7, 1, 7})), eps)
}

func orthoFrustum() *Frustum {
	return NewFrustumFromMatrix(mgl32.Ortho(-1, 1, -1, 1, 0.1, 10))
}

func TestFrustumSphereOnPlaneIsVisible(t *testing.T) {
	f := orthoFrustum()
	assert.True(t, f.IntersectSphere(mgl32.Vec3{1, 0, -5}, 0.5))
	assert.True(t, f.IntersectSphere(mgl32.Vec3{0, -1, -5}, 0))
}

func TestFrustumTangentSphereIsVisible(t *testing.T) {
	f := orthoFrustum()
	assert.True(t, f.IntersectSphere(mgl32.Vec3{1.5, 0, -5}, 0.5))
}

func TestFrustumCulling(t *testing.T) {
	f := orthoFrustum()
	assert.False(t, f.IntersectSphere(mgl32.Vec3{1.6, 0, -5}, 0.5))
	assert.False(t, f.IntersectSphere(mgl32.Vec3{0, 0, 5}, 1))
	assert.False(t, f.IntersectSphere(mgl32.Vec3{0, 0, -20}, 1))
	assert.True(t, f.IntersectSphere(mgl32.Vec3{0, 0, -5}, 1))
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, -5}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, 1}))
}

func TestFrustumPerspectiveView(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := NewFrustumFromMatrix(proj.Mul4(view))

	assert.True(t, f.IntersectSphere(mgl32.Vec3{}, 1))
	assert.False(t, f.IntersectSphere(mgl32.Vec3{0, 0, 20}, 1))
	assert.False(t, f.IntersectSphere(mgl32.Vec3{50, 0, 0}, 1))
}

type cullable struct {
	world  mgl32.Mat4
	sphere Sphere
}

func (c cullable) GetWorldMatrix() mgl32.Mat4 { return c.world }
func (c cullable) GetBoundingSphere() Sphere  { return c.sphere }

func TestFrustumIntersectObjectUsesWorldMatrix(t *testing.T) {
	f := orthoFrustum()
	obj := cullable{world: mgl32.Translate3D(0, 0, -5), sphere: NewSphere(mgl32.Vec3{}, 0.1)}
	assert.True(t, f.IntersectObject(obj))

	obj.world = mgl32.Translate3D(3, 0, -5)
	assert.False(t, f.IntersectObject(obj))

	// scaling the object grows the radius until it reaches back in
	obj.world = mgl32.Translate3D(3, 0, -5).Mul4(mgl32.Scale3D(25, 1, 1))
	assert.True(t, f.IntersectObject(obj))
}

func TestSphereFromPoints(t *testing.T) {
	s := SphereFromPoints([]float32{-1, 0, 0, 1, 0, 0, 0, 2, 0}, 3)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, s.Center)
	assert.InDelta(t, 1.41421, float64(s.Radius), eps)

	empty := SphereFromPoints(nil, 3)
	assert.True(t, empty.IsEmpty())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3, 1, 5))
	assert.Equal(t, float32(179), Clamp(float32(200), 1, 179))
}

func TestGenerateNormals(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := GenerateNormals(positions, []uint32{0, 1, 2})
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, normals)

	flipped := GenerateNormals(positions, []uint32{0, 2, 1})
	assert.Equal(t, float32(-1), flipped[2])

	unindexed := GenerateNormals(positions, nil)
	assert.Equal(t, normals, unindexed)
}
