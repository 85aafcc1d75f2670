package metadata

// RenderStats counts the work of the last rendered frame.
type RenderStats struct {
	Frame     uint64
	Calls     uint32
	Triangles uint32
	Lines     uint32
	Points    uint32
	// draw items dropped because a resource failed to build
	Skipped uint32
	// live cache entries
	Programs   int
	Textures   int
	Geometries int
}
