package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/math"
)

// Object is anything that lives in the scene graph. Types embedding Node
// get AsNode and UpdateWorldMatrix for free and may override the latter.
type Object interface {
	AsNode() *Node
	UpdateWorldMatrix(updateParent, updateChildren bool) mgl32.Mat4
}

/**
 * @brief A node of the transform hierarchy. The local matrix and the
 * position/rotation/scale triple describe the same transform: mutators that
 * edit the matrix decompose it right away and mutators that set the triple
 * recompose it right away.
 *
 * A node owns its children. The parent reference is only used to walk up.
 * Angles are in degrees.
 */
type Node struct {
	ID            uint32
	Name          string
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool

	position   mgl32.Vec3
	quaternion mgl32.Quat
	scale      mgl32.Vec3

	localMatrix     mgl32.Mat4
	worldMatrix     mgl32.Mat4
	modelViewMatrix mgl32.Mat4
	normalMatrix    mgl32.Mat3

	needsUpdateMatrix bool

	parent   Object
	children []Object
	// the value embedding this node, handed to children as their parent
	outer Object

	disposeOnce sync.Once
	bus         *core.EventBus
}

func NewNode(bus *core.EventBus) *Node {
	n := &Node{}
	n.init(bus, n)
	return n
}

func (n *Node) init(bus *core.EventBus, outer Object) {
	n.ID = core.IdentifierAcquireNewID()
	n.Visible = true
	n.position = mgl32.Vec3{}
	n.quaternion = mgl32.QuatIdent()
	n.scale = mgl32.Vec3{1, 1, 1}
	n.localMatrix = mgl32.Ident4()
	n.worldMatrix = mgl32.Ident4()
	n.modelViewMatrix = mgl32.Ident4()
	n.normalMatrix = mgl32.Ident3()
	n.needsUpdateMatrix = true
	n.bus = bus
	n.outer = outer
}

func (n *Node) AsNode() *Node {
	return n
}

func (n *Node) GetID() uint32 {
	return n.ID
}

// decompose rebuilds the triple after a direct matrix edit, which makes the
// matrix the current source of truth.
func (n *Node) decompose() {
	n.position, n.quaternion, n.scale = math.Decompose(n.localMatrix)
	n.needsUpdateMatrix = false
}

func (n *Node) axisScales() (float32, float32, float32) {
	return math.Vec3FromCol(n.localMatrix, 0).Len(),
		math.Vec3FromCol(n.localMatrix, 1).Len(),
		math.Vec3FromCol(n.localMatrix, 2).Len()
}

// SetPosition writes the translation column of the local matrix.
func (n *Node) SetPosition(x, y, z float32) {
	n.SetPositionV(mgl32.Vec3{x, y, z})
}

func (n *Node) SetPositionV(position mgl32.Vec3) {
	n.localMatrix.SetCol(3, position.Vec4(1))
	n.position = position
}

// SetQuaternion replaces the rotation while keeping the per axis scale.
func (n *Node) SetQuaternion(q mgl32.Quat) {
	sx, sy, sz := n.axisScales()
	r := q.Normalize().Mat4()

	math.SetColVec3(&n.localMatrix, 0, math.Vec3FromCol(r, 0).Mul(sx))
	math.SetColVec3(&n.localMatrix, 1, math.Vec3FromCol(r, 1).Mul(sy))
	math.SetColVec3(&n.localMatrix, 2, math.Vec3FromCol(r, 2).Mul(sz))
	n.decompose()
}

// SetScale replaces the per axis scale while keeping the rotation.
func (n *Node) SetScale(x, y, z float32) {
	col0 := math.Vec3FromCol(n.localMatrix, 0).Normalize().Mul(x)
	col1 := math.Vec3FromCol(n.localMatrix, 1).Normalize().Mul(y)
	col2 := math.Vec3FromCol(n.localMatrix, 2).Normalize().Mul(z)

	n.localMatrix.SetCol(0, col0.Vec4(0))
	n.localMatrix.SetCol(1, col1.Vec4(0))
	n.localMatrix.SetCol(2, col2.Vec4(0))
	n.decompose()
}

// SetTransform sets position, rotation and scale and recomposes the local matrix.
func (n *Node) SetTransform(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	n.position = position
	n.quaternion = rotation.Normalize()
	n.scale = scale
	n.needsUpdateMatrix = true
	n.UpdateMatrix()
}

// rotateLocal turns the basis around one of its own current axes. The
// translation stays where it is.
func (n *Node) rotateLocal(col int, angle float32) {
	axis := math.Vec3FromCol(n.localMatrix, col).Normalize()
	r := mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis)

	position := n.localMatrix.Col(3)
	n.localMatrix = r.Mul4(n.localMatrix)
	n.localMatrix.SetCol(3, position)
	n.decompose()
}

// RotateX pitches around the node's current x axis.
func (n *Node) RotateX(angle float32) {
	n.rotateLocal(0, angle)
}

// RotateY yaws around the node's current y axis.
func (n *Node) RotateY(angle float32) {
	n.rotateLocal(1, angle)
}

// RotateZ rolls around the node's current z axis.
func (n *Node) RotateZ(angle float32) {
	n.rotateLocal(2, angle)
}

// RotateAroundAxis appends a rotation around an axis given in local space.
func (n *Node) RotateAroundAxis(axis mgl32.Vec3, angle float32) {
	r := mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize())
	n.localMatrix = n.localMatrix.Mul4(r)
	n.decompose()
}

// SetRotateAroundAxis replaces the rotation with one around axis, keeping scale.
func (n *Node) SetRotateAroundAxis(axis mgl32.Vec3, angle float32) {
	r := mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize())
	sx, sy, sz := n.axisScales()

	n.localMatrix.SetCol(0, r.Col(0))
	n.localMatrix.SetCol(1, r.Col(1))
	n.localMatrix.SetCol(2, r.Col(2))
	n.localMatrix = n.localMatrix.Mul4(mgl32.Scale3D(sx, sy, sz))
	n.decompose()
}

/**
 * @brief Orients the node so its -z axis points at target, keeping the per
 * axis scale. target equal to the position or up parallel to the view
 * direction give NaN results.
 */
func (n *Node) LookAt(target, up mgl32.Vec3) {
	sx, sy, sz := n.axisScales()
	position := math.Vec3FromCol(n.localMatrix, 3)

	forward := target.Sub(position).Normalize().Mul(sz)
	right := up.Cross(forward.Mul(-1)).Normalize().Mul(sx)
	newUp := right.Cross(forward).Normalize().Mul(sy)

	n.localMatrix.SetCol(0, right.Vec4(0))
	n.localMatrix.SetCol(1, newUp.Vec4(0))
	n.localMatrix.SetCol(2, forward.Mul(-1).Vec4(0))
	n.localMatrix.SetCol(3, position.Vec4(1))
	n.decompose()
}

func (n *Node) SetLocalMatrix(m mgl32.Mat4) {
	n.localMatrix = m
	n.decompose()
}

// SetWorldMatrix overrides the world matrix until the next world update.
func (n *Node) SetWorldMatrix(m mgl32.Mat4) {
	n.worldMatrix = m
}

// UpdateMatrix composes translation * rotation * scale if the triple changed.
func (n *Node) UpdateMatrix() {
	if !n.needsUpdateMatrix {
		return
	}
	n.needsUpdateMatrix = false
	n.localMatrix = math.Compose(n.position, n.quaternion, n.scale)
}

/**
 * @brief Refreshes the world matrix. With updateParent the ancestors are
 * refreshed first, parent only. With updateChildren the whole subtree is
 * refreshed top down.
 * @returns the new world matrix.
 */
func (n *Node) UpdateWorldMatrix(updateParent, updateChildren bool) mgl32.Mat4 {
	if n.parent != nil && updateParent {
		n.parent.UpdateWorldMatrix(true, false)
	}

	n.UpdateMatrix()

	n.worldMatrix = n.localMatrix
	if n.parent != nil {
		n.worldMatrix = n.parent.AsNode().worldMatrix.Mul4(n.localMatrix)
	}

	if updateChildren {
		for _, child := range n.children {
			child.UpdateWorldMatrix(false, true)
		}
	}
	return n.worldMatrix
}

func (n *Node) UpdateModelViewMatrix(viewMatrix mgl32.Mat4) mgl32.Mat4 {
	n.modelViewMatrix = viewMatrix.Mul4(n.worldMatrix)
	return n.modelViewMatrix
}

// UpdateNormalMatrix derives the normal matrix from the model view matrix.
func (n *Node) UpdateNormalMatrix() mgl32.Mat3 {
	n.normalMatrix = math.NormalMatrix(n.modelViewMatrix)
	return n.normalMatrix
}

func (n *Node) GetPosition() mgl32.Vec3 {
	return math.Vec3FromCol(n.localMatrix, 3)
}

func (n *Node) GetQuaternion() mgl32.Quat {
	return n.quaternion
}

func (n *Node) GetScale() mgl32.Vec3 {
	return n.scale
}

func (n *Node) GetWorldPosition() mgl32.Vec3 {
	return math.Vec3FromCol(n.worldMatrix, 3)
}

// GetLocalDirection is the facing direction (-z) in parent space.
func (n *Node) GetLocalDirection() mgl32.Vec3 {
	return math.Vec3FromCol(n.localMatrix, 2).Mul(-1).Normalize()
}

func (n *Node) GetWorldDirection() mgl32.Vec3 {
	return math.Vec3FromCol(n.worldMatrix, 2).Mul(-1).Normalize()
}

func (n *Node) GetUp() mgl32.Vec3 {
	return math.Vec3FromCol(n.localMatrix, 1).Normalize()
}

func (n *Node) GetRight() mgl32.Vec3 {
	return math.Vec3FromCol(n.localMatrix, 0).Normalize()
}

func (n *Node) GetLocalMatrix() mgl32.Mat4 {
	return n.localMatrix
}

func (n *Node) GetWorldMatrix() mgl32.Mat4 {
	return n.worldMatrix
}

func (n *Node) GetModelViewMatrix() mgl32.Mat4 {
	return n.modelViewMatrix
}

func (n *Node) GetNormalMatrix() mgl32.Mat3 {
	return n.normalMatrix
}

func (n *Node) NeedsUpdateMatrix() bool {
	return n.needsUpdateMatrix
}
