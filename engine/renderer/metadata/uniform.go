package metadata

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type UniformKind uint8

const (
	UniformKindFloat UniformKind = iota
	UniformKindVec2
	UniformKindVec3
	UniformKindVec4
	UniformKindInt
	UniformKindBool
	UniformKindMat3
	UniformKindMat4
	// A sampler. The payload is the texture unit.
	UniformKindTexture
)

func (k UniformKind) String() string {
	switch k {
	case UniformKindFloat:
		return "float"
	case UniformKindVec2:
		return "vec2"
	case UniformKindVec3:
		return "vec3"
	case UniformKindVec4:
		return "vec4"
	case UniformKindInt:
		return "int"
	case UniformKindBool:
		return "bool"
	case UniformKindMat3:
		return "mat3"
	case UniformKindMat4:
		return "mat4"
	case UniformKindTexture:
		return "sampler"
	default:
		return fmt.Sprintf("UniformKind(%d)", uint8(k))
	}
}

// UniformValue is a tagged union over the uniform types the renderer
// uploads. Build values with the Uniform* constructors.
type UniformValue struct {
	Kind    UniformKind
	floats  [16]float32
	integer int32
}

func UniformFloat(v float32) UniformValue {
	u := UniformValue{Kind: UniformKindFloat}
	u.floats[0] = v
	return u
}

func UniformVec2(v mgl32.Vec2) UniformValue {
	u := UniformValue{Kind: UniformKindVec2}
	copy(u.floats[:], v[:])
	return u
}

func UniformVec3(v mgl32.Vec3) UniformValue {
	u := UniformValue{Kind: UniformKindVec3}
	copy(u.floats[:], v[:])
	return u
}

func UniformVec4(v mgl32.Vec4) UniformValue {
	u := UniformValue{Kind: UniformKindVec4}
	copy(u.floats[:], v[:])
	return u
}

func UniformInt(v int32) UniformValue {
	return UniformValue{Kind: UniformKindInt, integer: v}
}

func UniformBool(v bool) UniformValue {
	u := UniformValue{Kind: UniformKindBool}
	if v {
		u.integer = 1
	}
	return u
}

func UniformMat3(m mgl32.Mat3) UniformValue {
	u := UniformValue{Kind: UniformKindMat3}
	copy(u.floats[:], m[:])
	return u
}

func UniformMat4(m mgl32.Mat4) UniformValue {
	u := UniformValue{Kind: UniformKindMat4}
	copy(u.floats[:], m[:])
	return u
}

// UniformTexture refers to a sampler bound to the given texture unit.
func UniformTexture(unit int32) UniformValue {
	return UniformValue{Kind: UniformKindTexture, integer: unit}
}

func (u UniformValue) Float() float32 {
	return u.floats[0]
}

func (u UniformValue) Vec2() mgl32.Vec2 {
	return mgl32.Vec2{u.floats[0], u.floats[1]}
}

func (u UniformValue) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{u.floats[0], u.floats[1], u.floats[2]}
}

func (u UniformValue) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{u.floats[0], u.floats[1], u.floats[2], u.floats[3]}
}

func (u UniformValue) Int() int32 {
	return u.integer
}

func (u UniformValue) Bool() bool {
	return u.integer != 0
}

func (u UniformValue) Mat3() mgl32.Mat3 {
	var m mgl32.Mat3
	copy(m[:], u.floats[:9])
	return m
}

func (u UniformValue) Mat4() mgl32.Mat4 {
	var m mgl32.Mat4
	copy(m[:], u.floats[:])
	return m
}

// UniformSetter is the closed set of typed uniform entry points a backend
// exposes for the current program.
type UniformSetter interface {
	SetUniform1f(location int32, v float32)
	SetUniform2f(location int32, v mgl32.Vec2)
	SetUniform3f(location int32, v mgl32.Vec3)
	SetUniform4f(location int32, v mgl32.Vec4)
	SetUniform1i(location int32, v int32)
	SetUniformMatrix3f(location int32, m mgl32.Mat3)
	SetUniformMatrix4f(location int32, m mgl32.Mat4)
}

// Upload dispatches a value to the setter matching its kind.
func (u UniformValue) Upload(setter UniformSetter, location int32) error {
	switch u.Kind {
	case UniformKindFloat:
		setter.SetUniform1f(location, u.Float())
	case UniformKindVec2:
		setter.SetUniform2f(location, u.Vec2())
	case UniformKindVec3:
		setter.SetUniform3f(location, u.Vec3())
	case UniformKindVec4:
		setter.SetUniform4f(location, u.Vec4())
	case UniformKindInt, UniformKindBool, UniformKindTexture:
		setter.SetUniform1i(location, u.integer)
	case UniformKindMat3:
		setter.SetUniformMatrix3f(location, u.Mat3())
	case UniformKindMat4:
		setter.SetUniformMatrix4f(location, u.Mat4())
	default:
		return fmt.Errorf("unsupported uniform kind %s", u.Kind)
	}
	return nil
}
