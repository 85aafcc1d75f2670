package resources

import "github.com/hq2318768188/FFEngine/engine/core"

// NewBoxGeometry builds an indexed box centred on the origin with per face
// normals and uvs.
func NewBoxGeometry(bus *core.EventBus, width, height, depth float32) *Geometry {
	hw, hh, hd := width/2, height/2, depth/2

	// each face: normal, then four corners counter clockwise seen from outside
	faces := [6]struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{1, 0, 0}, [4][3]float32{{hw, -hh, hd}, {hw, -hh, -hd}, {hw, hh, -hd}, {hw, hh, hd}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hw, -hh, -hd}, {-hw, -hh, hd}, {-hw, hh, hd}, {-hw, hh, -hd}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hw, hh, hd}, {hw, hh, hd}, {hw, hh, -hd}, {-hw, hh, -hd}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hw, -hh, -hd}, {hw, -hh, -hd}, {hw, -hh, hd}, {-hw, -hh, hd}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{-hw, -hh, hd}, {hw, -hh, hd}, {hw, hh, hd}, {-hw, hh, hd}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hw, -hh, -hd}, {-hw, -hh, -hd}, {-hw, hh, -hd}, {hw, hh, -hd}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	positions := make([]float32, 0, 6*4*3)
	normals := make([]float32, 0, 6*4*3)
	texcoords := make([]float32, 0, 6*4*2)
	indices := make([]uint32, 0, 6*6)

	for f, face := range faces {
		for c, corner := range face.corners {
			positions = append(positions, corner[:]...)
			normals = append(normals, face.normal[:]...)
			texcoords = append(texcoords, uvs[c][:]...)
		}
		base := uint32(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	g := NewGeometry(bus)
	g.Name = "box"
	g.SetAttribute(AttributePosition, NewFloatAttribute(bus, positions, 3))
	g.SetAttribute(AttributeNormal, NewFloatAttribute(bus, normals, 3))
	g.SetAttribute(AttributeUV, NewFloatAttribute(bus, texcoords, 2))
	g.SetIndex(NewIndexAttribute(bus, indices))
	return g
}

// NewPlaneGeometry builds a quad in the xy plane facing +z.
func NewPlaneGeometry(bus *core.EventBus, width, height float32) *Geometry {
	hw, hh := width/2, height/2

	g := NewGeometry(bus)
	g.Name = "plane"
	g.SetAttribute(AttributePosition, NewFloatAttribute(bus, []float32{
		-hw, -hh, 0,
		hw, -hh, 0,
		hw, hh, 0,
		-hw, hh, 0,
	}, 3))
	g.SetAttribute(AttributeUV, NewFloatAttribute(bus, []float32{0, 0, 1, 0, 1, 1, 0, 1}, 2))
	g.SetIndex(NewIndexAttribute(bus, []uint32{0, 1, 2, 0, 2, 3}))
	g.ComputeVertexNormals()
	return g
}
