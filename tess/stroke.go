package tess

import "math"

// strokePath emits stroke geometry for every subpath: one quad per
// segment, with each endpoint duplicated and extruded along the segment
// normal by the shader. Joins are resolved by the overlapping quads,
// which is sufficient at tile resolution.
func strokePath(buf *VertexBuffers, subpaths [][]point) {
	for _, subpath := range subpaths {
		for i := 0; i+1 < len(subpath); i++ {
			strokeSegment(buf, subpath[i], subpath[i+1])
		}
	}
}

func strokeSegment(buf *VertexBuffers, a, b point) {
	dx := float64(b.x - a.x)
	dy := float64(b.y - a.y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := float32(-dy / length)
	ny := float32(dx / length)

	up := [2]float32{nx, ny}
	down := [2]float32{-nx, -ny}

	a0 := buf.pushVertex(Vertex{Position: [2]float32{a.x, a.y}, Normal: up})
	a1 := buf.pushVertex(Vertex{Position: [2]float32{a.x, a.y}, Normal: down})
	b0 := buf.pushVertex(Vertex{Position: [2]float32{b.x, b.y}, Normal: up})
	b1 := buf.pushVertex(Vertex{Position: [2]float32{b.x, b.y}, Normal: down})

	buf.pushTriangle(a0, a1, b0)
	buf.pushTriangle(b0, a1, b1)
}
