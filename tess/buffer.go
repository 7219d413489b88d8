package tess

// Vertex is the GPU vertex format: a tile-local position and an extrusion
// normal. Stroke vertices extrude along the normal in the shader; fill
// vertices carry a zero normal.
type Vertex struct {
	Position [2]float32
	Normal   [2]float32
}

// VertexBuffers is an indexed triangle mesh.
type VertexBuffers struct {
	Vertices []Vertex
	Indices  []uint32
}

func (b *VertexBuffers) pushVertex(v Vertex) uint32 {
	b.Vertices = append(b.Vertices, v)
	return uint32(len(b.Vertices) - 1)
}

func (b *VertexBuffers) pushTriangle(a, c, d uint32) {
	b.Indices = append(b.Indices, a, c, d)
}
