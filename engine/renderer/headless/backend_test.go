package headless

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
)

func TestHeadlessTracksLiveObjects(t *testing.T) {
	hr := New()
	require.NoError(t, hr.Initialize("test", 64, 64))

	b, err := hr.CreateBuffer(metadata.BufferTargetArray, metadata.BufferUsageStaticDraw, []float32{1, 2, 3})
	require.NoError(t, err)
	vao, err := hr.CreateVertexArray()
	require.NoError(t, err)
	tex, err := hr.CreateTexture(metadata.TextureDescriptor{Width: 1, Height: 1})
	require.NoError(t, err)
	fb, err := hr.CreateFramebuffer(tex, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, LiveObjects{Buffers: 1, VertexArrays: 1, Textures: 1, Framebuffers: 1}, hr.Live())

	require.NoError(t, hr.UpdateBuffer(b, []float32{4}))
	assert.Equal(t, 2, hr.BufferWrites(b))

	hr.DestroyFramebuffer(fb)
	hr.DestroyTexture(tex)
	hr.DestroyVertexArray(vao)
	hr.DestroyBuffer(b)
	assert.Equal(t, LiveObjects{}, hr.Live())
	assert.Error(t, hr.UpdateBuffer(b, []float32{1}))
}

func TestHeadlessProgramLocationsAndFailure(t *testing.T) {
	hr := New()
	hr.FailProgram = func(s metadata.ProgramSource) bool {
		return strings.Contains(s.Name, "broken")
	}

	info, err := hr.CreateProgram(metadata.ProgramSource{
		Name:       "basic",
		Uniforms:   []string{"modelViewMatrix", "projectionMatrix"},
		Attributes: []string{"position"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), info.UniformLocations["projectionMatrix"])
	assert.Equal(t, uint32(0), info.AttributeLocations["position"])

	_, err = hr.CreateProgram(metadata.ProgramSource{Name: "broken"})
	assert.ErrorIs(t, err, core.ErrProgramBuild)
	assert.Equal(t, 1, hr.ProgramsCompiled())
}

func TestHeadlessRecordsDraws(t *testing.T) {
	hr := New()
	require.NoError(t, hr.Initialize("test", 64, 64))
	require.NoError(t, hr.BeginFrame(0))

	info, err := hr.CreateProgram(metadata.ProgramSource{Name: "p", Uniforms: []string{"opacity"}})
	require.NoError(t, err)
	hr.UseProgram(info.Handle)
	require.NoError(t, metadata.UniformFloat(0.5).Upload(hr, info.UniformLocations["opacity"]))
	hr.SetBlending(true, metadata.BlendFactorSrcAlpha, metadata.BlendFactorOneMinusSrcAlpha)
	hr.DrawElements(metadata.DrawModeTriangles, 36)

	draws := hr.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, info.Handle, draws[0].Program)
	assert.True(t, draws[0].Blending)
	assert.True(t, draws[0].Indexed)
	assert.Equal(t, []UniformWrite{{Program: info.Handle, Location: 0, Value: float32(0.5)}}, hr.Uniforms())

	require.NoError(t, hr.EndFrame(0))
	assert.Equal(t, uint64(1), hr.FrameNumber)
}

func TestHeadlessRejectsBadInput(t *testing.T) {
	hr := New()
	_, err := hr.CreateBuffer(metadata.BufferTargetArray, metadata.BufferUsageStaticDraw, "nope")
	assert.ErrorIs(t, err, core.ErrBufferBuild)

	_, err = hr.CreateTexture(metadata.TextureDescriptor{})
	assert.ErrorIs(t, err, core.ErrTextureBuild)

	assert.ErrorIs(t, hr.BeginFrame(0), core.ErrNotInitialized)
}
