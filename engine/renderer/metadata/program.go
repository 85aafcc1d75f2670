package metadata

// ProgramParameters captures every input that selects a shader variant. Two
// draws with equal parameters can share one program.
type ProgramParameters struct {
	ShaderID string

	Instancing bool
	HasNormal  bool
	HasUV      bool
	HasColor   bool
	UseTangent bool

	HasDiffuseMap  bool
	HasEnvCubeMap  bool
	HasSpecularMap bool
	UseNormalMap   bool

	ShadowMapEnabled          bool
	DirectionalLightCount     uint32
	NumDirectionalLightShadow uint32

	Skinning bool
	MaxBones uint32

	DepthPacking uint32
}

// ProgramSource is what a backend compiles. Uniforms and Attributes list
// the names the program exposes.
type ProgramSource struct {
	Name       string
	Vertex     string
	Fragment   string
	Defines    []string
	Uniforms   []string
	Attributes []string
}

// ProgramInfo is what a backend reports back for a linked program.
type ProgramInfo struct {
	Handle             ProgramHandle
	UniformLocations   map[string]int32
	AttributeLocations map[string]uint32
}
