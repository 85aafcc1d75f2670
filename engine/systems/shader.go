package systems

import (
	"embed"
	"fmt"
	"strings"

	"github.com/hq2318768188/FFEngine/engine/core"
	"github.com/hq2318768188/FFEngine/engine/renderer/metadata"
	"github.com/hq2318768188/FFEngine/engine/resources"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFiles embed.FS

const glslVersion = "#version 330 core"

/**
 * @brief Fixed vertex attribute locations shared by every program, so a
 * vertex binding built for one program stays valid for another.
 */
var attributeLayout = []struct {
	Name     string
	Location uint32
	Define   string
}{
	{resources.AttributePosition, 0, "POSITION_LOCATION"},
	{resources.AttributeNormal, 1, "NORMAL_LOCATION"},
	{resources.AttributeColor, 2, "COLOR_LOCATION"},
	{resources.AttributeUV, 3, "UV_LOCATION"},
	{resources.AttributeTangent, 4, "TANGENT_LOCATION"},
}

// AttributeLocation returns the fixed location of a named vertex attribute.
func AttributeLocation(name string) (uint32, bool) {
	for _, a := range attributeLayout {
		if a.Name == name {
			return a.Location, true
		}
	}
	return 0, false
}

// Texture units per map uniform.
const (
	DiffuseMapUnit int32 = iota
	NormalMapUnit
	SpecularMapUnit
	EnvMapUnit
)

type shaderTemplate struct {
	vertex   string
	fragment string
}

/**
 * @brief Holds the GLSL sources of every material type and turns a set of
 * program parameters into a compilable program source.
 */
type ShaderLibrary struct {
	templates map[string]*shaderTemplate
}

func NewShaderLibrary() (*ShaderLibrary, error) {
	sl := &ShaderLibrary{
		templates: make(map[string]*shaderTemplate),
	}
	for _, t := range []resources.MaterialType{
		resources.MaterialTypeBasic,
		resources.MaterialTypePhong,
		resources.MaterialTypeCube,
		resources.MaterialTypeDepth,
	} {
		name := t.String()
		vertex, err := shaderFiles.ReadFile("shaders/" + name + ".vert")
		if err != nil {
			return nil, err
		}
		fragment, err := shaderFiles.ReadFile("shaders/" + name + ".frag")
		if err != nil {
			return nil, err
		}
		sl.templates[name] = &shaderTemplate{
			vertex:   string(vertex),
			fragment: string(fragment),
		}
	}
	return sl, nil
}

func (sl *ShaderLibrary) Has(shaderID string) bool {
	_, ok := sl.templates[shaderID]
	return ok
}

// Override replaces the sources of a known shader. Programs built before
// the call keep the old code.
func (sl *ShaderLibrary) Override(shaderID, vertex, fragment string) error {
	if !sl.Has(shaderID) {
		return fmt.Errorf("%w: unknown shader `%s`", core.ErrProgramBuild, shaderID)
	}
	sl.templates[shaderID] = &shaderTemplate{
		vertex:   vertex,
		fragment: fragment,
	}
	return nil
}

// Source assembles the program source for the variant params selects.
func (sl *ShaderLibrary) Source(params metadata.ProgramParameters) (metadata.ProgramSource, error) {
	t, ok := sl.templates[params.ShaderID]
	if !ok {
		return metadata.ProgramSource{}, fmt.Errorf("%w: unknown shader `%s`", core.ErrProgramBuild, params.ShaderID)
	}

	defines := programDefines(params)

	var header strings.Builder
	header.WriteString(glslVersion)
	header.WriteByte('\n')
	for _, a := range attributeLayout {
		fmt.Fprintf(&header, "#define %s %d\n", a.Define, a.Location)
	}
	for _, d := range defines {
		fmt.Fprintf(&header, "#define %s\n", d)
	}

	attributes := make([]string, len(attributeLayout))
	for i, a := range attributeLayout {
		attributes[i] = a.Name
	}

	return metadata.ProgramSource{
		Name:       params.ShaderID,
		Vertex:     header.String() + t.vertex,
		Fragment:   header.String() + t.fragment,
		Defines:    defines,
		Uniforms:   programUniforms(params),
		Attributes: attributes,
	}, nil
}

func programDefines(params metadata.ProgramParameters) []string {
	var defines []string
	flag := func(on bool, name string) {
		if on {
			defines = append(defines, name)
		}
	}
	flag(params.Instancing, "USE_INSTANCING")
	flag(params.HasNormal, "HAS_NORMAL")
	flag(params.HasUV, "HAS_UV")
	flag(params.HasColor, "HAS_COLOR")
	flag(params.UseTangent, "USE_TANGENT")
	flag(params.HasDiffuseMap, "HAS_DIFFUSE_MAP")
	flag(params.HasEnvCubeMap, "HAS_ENV_CUBE_MAP")
	flag(params.HasSpecularMap, "HAS_SPECULAR_MAP")
	flag(params.UseNormalMap, "USE_NORMAL_MAP")
	flag(params.ShadowMapEnabled, "USE_SHADOW_MAP")
	flag(params.Skinning, "USE_SKINNING")
	flag(params.DepthPacking == uint32(resources.RGBADepthPacking), "DEPTH_PACKING_RGBA")
	if params.DirectionalLightCount > 0 {
		defines = append(defines, fmt.Sprintf("DIRECTIONAL_LIGHT_COUNT %d", params.DirectionalLightCount))
	}
	if params.NumDirectionalLightShadow > 0 {
		defines = append(defines, fmt.Sprintf("DIRECTIONAL_LIGHT_SHADOW_COUNT %d", params.NumDirectionalLightShadow))
	}
	if params.Skinning {
		defines = append(defines, fmt.Sprintf("MAX_BONES %d", params.MaxBones))
	}
	return defines
}

// programUniforms lists the uniforms a variant declares.
func programUniforms(params metadata.ProgramParameters) []string {
	uniforms := []string{"modelViewMatrix", "projectionMatrix", "opacity"}
	switch params.ShaderID {
	case resources.MaterialTypeBasic.String():
		uniforms = append(uniforms, "color")
		if params.HasDiffuseMap {
			uniforms = append(uniforms, "diffuseMap")
		}
	case resources.MaterialTypePhong.String():
		uniforms = append(uniforms, "normalMatrix", "color", "shininess")
		if params.HasDiffuseMap {
			uniforms = append(uniforms, "diffuseMap")
		}
		if params.UseNormalMap {
			uniforms = append(uniforms, "normalMap")
		}
		if params.HasSpecularMap {
			uniforms = append(uniforms, "specularMap")
		}
	case resources.MaterialTypeCube.String():
		uniforms = append(uniforms, "envMap")
	}
	return uniforms
}

/**
 * @brief Collects every input that selects a shader variant for drawing
 * geometry with material. Materials of the same type and map layout on
 * geometries with the same attributes produce equal parameters.
 */
func ProgramParametersFor(material *resources.Material, geometry *resources.Geometry) metadata.ProgramParameters {
	params := metadata.ProgramParameters{
		ShaderID:       material.Type.String(),
		HasDiffuseMap:  material.DiffuseMap != nil,
		HasEnvCubeMap:  material.EnvMap != nil && material.EnvMap.Type == resources.TextureTypeCube,
		HasSpecularMap: material.SpecularMap != nil,
		UseNormalMap:   material.NormalMap != nil,
		DepthPacking:   uint32(material.DepthPacking),
	}
	if geometry != nil {
		params.HasNormal = geometry.HasAttribute(resources.AttributeNormal)
		params.HasUV = geometry.HasAttribute(resources.AttributeUV)
		params.HasColor = geometry.HasAttribute(resources.AttributeColor)
		params.UseTangent = geometry.HasAttribute(resources.AttributeTangent)
	}
	return params
}
