package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraViewIsInverseWorld(t *testing.T) {
	c := NewPerspectiveCamera(nil, 60, 16.0/9.0, 0.1, 100)
	c.SetPosition(0, 2, 10)
	c.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.UpdateWorldMatrix(false, false)

	assertMat4(t, mgl32.Ident4(), c.GetViewMatrix().Mul4(c.GetWorldMatrix()))
	want := mgl32.LookAtV(mgl32.Vec3{0, 2, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	assertMat4(t, want, c.GetViewMatrix())
}

func TestCameraInGraphUpdatesView(t *testing.T) {
	s := NewScene(nil)
	rig := NewGroup(nil)
	c := NewPerspectiveCamera(nil, 45, 1, 0.1, 100)
	require.NoError(t, s.AddChild(rig))
	require.NoError(t, rig.AddChild(c))
	rig.SetPosition(0, 0, 5)

	s.UpdateWorldMatrix(false, true)
	assertVec3(t, mgl32.Vec3{0, 0, -5}, c.GetViewMatrix().Col(3).Vec3())
}

func TestPerspectiveProjection(t *testing.T) {
	c := NewPerspectiveCamera(nil, 200, 1, 0.1, 100)
	assert.Equal(t, float32(179), c.Fov)

	c.SetFov(90)
	want := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 100)
	assertMat4(t, want, c.GetProjectionMatrix())

	c.SetAspect(2)
	assert.InDelta(t, 0.5, float64(c.GetProjectionMatrix()[0]), eps)
}

func TestOrthographicProjection(t *testing.T) {
	c := NewOrthographicCamera(nil, -2, 2, -1, 1, 0.1, 10)
	assertMat4(t, mgl32.Ortho(-2, 2, -1, 1, 0.1, 10), c.GetProjectionMatrix())
}

func TestCameraMovement(t *testing.T) {
	c := NewPerspectiveCamera(nil, 60, 1, 0.1, 100)
	c.MoveForward(2)
	assertVec3(t, mgl32.Vec3{0, 0, -2}, c.GetPosition())
	c.MoveRight(1)
	c.MoveUp(3)
	c.MoveBackward(2)
	c.MoveLeft(1)
	c.MoveDown(3)
	assertVec3(t, mgl32.Vec3{}, c.GetPosition())
}
