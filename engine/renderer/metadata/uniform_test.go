package metadata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSetter struct {
	calls []string
	last  interface{}
}

func (r *recordingSetter) SetUniform1f(l int32, v float32) {
	r.calls = append(r.calls, "1f")
	r.last = v
}

func (r *recordingSetter) SetUniform2f(l int32, v mgl32.Vec2) {
	r.calls = append(r.calls, "2f")
	r.last = v
}

func (r *recordingSetter) SetUniform3f(l int32, v mgl32.Vec3) {
	r.calls = append(r.calls, "3f")
	r.last = v
}

func (r *recordingSetter) SetUniform4f(l int32, v mgl32.Vec4) {
	r.calls = append(r.calls, "4f")
	r.last = v
}

func (r *recordingSetter) SetUniform1i(l int32, v int32) {
	r.calls = append(r.calls, "1i")
	r.last = v
}

func (r *recordingSetter) SetUniformMatrix3f(l int32, m mgl32.Mat3) {
	r.calls = append(r.calls, "m3")
	r.last = m
}

func (r *recordingSetter) SetUniformMatrix4f(l int32, m mgl32.Mat4) {
	r.calls = append(r.calls, "m4")
	r.last = m
}

func TestUniformUploadDispatchesOnKind(t *testing.T) {
	m4 := mgl32.Translate3D(1, 2, 3)
	cases := []struct {
		value UniformValue
		call  string
		want  interface{}
	}{
		{UniformFloat(0.5), "1f", float32(0.5)},
		{UniformVec2(mgl32.Vec2{1, 2}), "2f", mgl32.Vec2{1, 2}},
		{UniformVec3(mgl32.Vec3{1, 2, 3}), "3f", mgl32.Vec3{1, 2, 3}},
		{UniformVec4(mgl32.Vec4{1, 2, 3, 4}), "4f", mgl32.Vec4{1, 2, 3, 4}},
		{UniformInt(7), "1i", int32(7)},
		{UniformBool(true), "1i", int32(1)},
		{UniformTexture(3), "1i", int32(3)},
		{UniformMat3(m4.Mat3()), "m3", m4.Mat3()},
		{UniformMat4(m4), "m4", m4},
	}

	for _, c := range cases {
		r := &recordingSetter{}
		require.NoError(t, c.value.Upload(r, 0), c.value.Kind.String())
		assert.Equal(t, []string{c.call}, r.calls, c.value.Kind.String())
		assert.Equal(t, c.want, r.last, c.value.Kind.String())
	}
}

func TestUniformUnknownKind(t *testing.T) {
	r := &recordingSetter{}
	err := UniformValue{Kind: UniformKind(99)}.Upload(r, 0)
	assert.Error(t, err)
	assert.Empty(t, r.calls)
}
