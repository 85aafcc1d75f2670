package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/math"
)

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. The view matrix
 * is the inverse of the world matrix and is refreshed together with it.
 */
type Camera interface {
	Object
	GetProjectionMatrix() mgl32.Mat4
	GetViewMatrix() mgl32.Mat4
	UpdateProjectionMatrix() mgl32.Mat4
}

type cameraBase struct {
	Node
	worldMatrixInverse mgl32.Mat4
	projectionMatrix   mgl32.Mat4
}

func (c *cameraBase) initCamera(bus *core.EventBus, outer Object) {
	c.init(bus, outer)
	c.worldMatrixInverse = mgl32.Ident4()
	c.projectionMatrix = mgl32.Ident4()
}

// UpdateWorldMatrix refreshes the world matrix and the view matrix.
func (c *cameraBase) UpdateWorldMatrix(updateParent, updateChildren bool) mgl32.Mat4 {
	world := c.Node.UpdateWorldMatrix(updateParent, updateChildren)
	c.worldMatrixInverse = world.Inv()
	return world
}

func (c *cameraBase) GetViewMatrix() mgl32.Mat4 {
	return c.worldMatrixInverse
}

func (c *cameraBase) GetProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *cameraBase) MoveForward(amount float32) {
	c.SetPositionV(c.GetPosition().Add(c.GetLocalDirection().Mul(amount)))
}

func (c *cameraBase) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *cameraBase) MoveRight(amount float32) {
	c.SetPositionV(c.GetPosition().Add(c.GetRight().Mul(amount)))
}

func (c *cameraBase) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *cameraBase) MoveUp(amount float32) {
	c.SetPositionV(c.GetPosition().Add(mgl32.Vec3{0, amount, 0}))
}

func (c *cameraBase) MoveDown(amount float32) {
	c.MoveUp(-amount)
}

// PerspectiveCamera projects with a vertical field of view in degrees.
type PerspectiveCamera struct {
	cameraBase
	Fov    float32
	Aspect float32
	Near   float32
	Far    float32
}

func NewPerspectiveCamera(bus *core.EventBus, fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		Fov:    math.Clamp(fov, 1, 179),
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.initCamera(bus, c)
	c.UpdateProjectionMatrix()
	return c
}

func (c *PerspectiveCamera) UpdateProjectionMatrix() mgl32.Mat4 {
	c.projectionMatrix = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
	return c.projectionMatrix
}

// SetFov changes the field of view, clamped to [1, 179] degrees.
func (c *PerspectiveCamera) SetFov(fov float32) {
	c.Fov = math.Clamp(fov, 1, 179)
	c.UpdateProjectionMatrix()
}

func (c *PerspectiveCamera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.UpdateProjectionMatrix()
}

type OrthographicCamera struct {
	cameraBase
	Left   float32
	Right  float32
	Bottom float32
	Top    float32
	Near   float32
	Far    float32
}

func NewOrthographicCamera(bus *core.EventBus, left, right, bottom, top, near, far float32) *OrthographicCamera {
	c := &OrthographicCamera{
		Left:   left,
		Right:  right,
		Bottom: bottom,
		Top:    top,
		Near:   near,
		Far:    far,
	}
	c.initCamera(bus, c)
	c.UpdateProjectionMatrix()
	return c
}

func (c *OrthographicCamera) UpdateProjectionMatrix() mgl32.Mat4 {
	c.projectionMatrix = mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
	return c.projectionMatrix
}
