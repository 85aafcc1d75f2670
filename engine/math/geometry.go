package math

import "github.com/go-gl/mathgl/mgl32"

func vec3At(data []float32, i uint32) mgl32.Vec3 {
	return mgl32.Vec3{data[i*3], data[i*3+1], data[i*3+2]}
}

// GenerateNormals writes one face normal per triangle into the normals of
// its three vertices. positions and the result are packed xyz. Without an
// index the positions are read as a plain triangle list.
func GenerateNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	vertexCount := uint32(len(positions) / 3)

	triangle := func(i0, i1, i2 uint32) {
		if i0 >= vertexCount || i1 >= vertexCount || i2 >= vertexCount {
			return
		}
		edge1 := vec3At(positions, i1).Sub(vec3At(positions, i0))
		edge2 := vec3At(positions, i2).Sub(vec3At(positions, i0))

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		normal := edge1.Cross(edge2).Normalize()
		for _, idx := range [3]uint32{i0, i1, i2} {
			copy(normals[idx*3:idx*3+3], normal[:])
		}
	}

	if len(indices) > 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			triangle(indices[i], indices[i+1], indices[i+2])
		}
		return normals
	}
	for i := uint32(0); i+2 < vertexCount; i += 3 {
		triangle(i, i+1, i+2)
	}
	return normals
}
