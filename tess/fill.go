package tess

import (
	"errors"
	"math"
)

var ErrDegenerateGeometry = errors.New("tess: degenerate geometry")

// fillPath triangulates the subpaths of a closed path under the non-zero
// fill rule and appends the result to buf. Rings are classified into
// exteriors and holes by winding, holes are bridged into their exterior,
// and each resulting ring is ear-clipped.
func fillPath(buf *VertexBuffers, subpaths [][]point, tolerance float64) error {
	var rings [][]point
	for _, subpath := range subpaths {
		ring := weld(subpath, tolerance)
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	if len(rings) == 0 {
		return nil
	}

	// The ring with the largest absolute area is necessarily an exterior;
	// its winding identifies the exterior orientation for the whole path.
	exteriorSign := 0.0
	largest := 0.0
	for _, ring := range rings {
		if a := signedArea(ring); math.Abs(a) > largest {
			largest = math.Abs(a)
			exteriorSign = sign(a)
		}
	}
	if exteriorSign == 0 {
		return ErrDegenerateGeometry
	}

	type polygon struct {
		exterior []point
		holes    [][]point
	}
	var polygons []polygon
	var holes [][]point
	for _, ring := range rings {
		if sign(signedArea(ring)) == exteriorSign {
			polygons = append(polygons, polygon{exterior: ring})
		} else {
			holes = append(holes, ring)
		}
	}

	// A hole outside every exterior is dropped: under the non-zero rule
	// it cancels nothing.
	for _, hole := range holes {
		for i := range polygons {
			if ringContains(polygons[i].exterior, hole[0]) {
				polygons[i].holes = append(polygons[i].holes, hole)
				break
			}
		}
	}

	for _, poly := range polygons {
		earClip(buf, poly.exterior, poly.holes)
	}
	return nil
}

// weld drops consecutive points closer than the tolerance, including the
// closing wrap-around pair.
func weld(ring []point, tolerance float64) []point {
	if len(ring) == 0 {
		return nil
	}
	welded := ring[:1:1]
	for _, p := range ring[1:] {
		last := welded[len(welded)-1]
		if math.Hypot(float64(p.x-last.x), float64(p.y-last.y)) > tolerance {
			welded = append(welded, p)
		}
	}
	if len(welded) > 1 {
		first, last := welded[0], welded[len(welded)-1]
		if math.Hypot(float64(first.x-last.x), float64(first.y-last.y)) <= tolerance {
			welded = welded[:len(welded)-1]
		}
	}
	return welded
}

func signedArea(ring []point) float64 {
	area := 0.0
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		area += float64(a.x)*float64(b.y) - float64(b.x)*float64(a.y)
	}
	return area / 2
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func ringContains(ring []point, p point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.y > p.y) != (b.y > p.y) &&
			float64(p.x) < float64(b.x-a.x)*float64(p.y-a.y)/float64(b.y-a.y)+float64(a.x) {
			inside = !inside
		}
	}
	return inside
}

func reverse(ring []point) {
	for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
		ring[i], ring[j] = ring[j], ring[i]
	}
}

// earClip triangulates one exterior ring with its holes and appends the
// triangles to buf. The exterior is normalized counter-clockwise and
// holes clockwise before the holes are bridged into a single ring.
func earClip(buf *VertexBuffers, exterior []point, holes [][]point) {
	ring := append([]point(nil), exterior...)
	if signedArea(ring) < 0 {
		reverse(ring)
	}
	for _, hole := range holes {
		h := append([]point(nil), hole...)
		if signedArea(h) > 0 {
			reverse(h)
		}
		ring = bridgeHole(ring, h)
	}
	if len(ring) < 3 {
		return
	}

	base := uint32(len(buf.Vertices))
	for _, p := range ring {
		buf.pushVertex(Vertex{Position: [2]float32{p.x, p.y}})
	}

	// Remaining vertex indices into ring, clipped down to a triangle.
	remaining := make([]int, len(ring))
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 3 {
		clipped := false
		for i := 0; i < len(remaining); i++ {
			prev := remaining[(i+len(remaining)-1)%len(remaining)]
			curr := remaining[i]
			next := remaining[(i+1)%len(remaining)]
			if !isEar(ring, remaining, prev, curr, next) {
				continue
			}
			buf.pushTriangle(base+uint32(prev), base+uint32(curr), base+uint32(next))
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// No ear found: the ring is degenerate or self-intersecting.
			// Fall back to a fan so the feature still renders and the
			// index ledger stays consistent.
			for i := 1; i+1 < len(remaining); i++ {
				buf.pushTriangle(base+uint32(remaining[0]), base+uint32(remaining[i]), base+uint32(remaining[i+1]))
			}
			return
		}
	}
	buf.pushTriangle(base+uint32(remaining[0]), base+uint32(remaining[1]), base+uint32(remaining[2]))
}

func cross(o, a, b point) float64 {
	return float64(a.x-o.x)*float64(b.y-o.y) - float64(a.y-o.y)*float64(b.x-o.x)
}

func pointInTriangle(a, b, c, p point) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func isEar(ring []point, remaining []int, prev, curr, next int) bool {
	a, b, c := ring[prev], ring[curr], ring[next]
	if cross(a, b, c) <= 0 {
		return false // reflex corner in a counter-clockwise ring
	}
	for _, idx := range remaining {
		if idx == prev || idx == curr || idx == next {
			continue
		}
		p := ring[idx]
		if p == a || p == b || p == c {
			continue // bridge duplicates share coordinates
		}
		if pointInTriangle(a, b, c, p) {
			return false
		}
	}
	return true
}

// bridgeHole splices a clockwise hole into a counter-clockwise ring by
// connecting the hole's leftmost vertex to a visible ring vertex, the
// standard ear-clipping hole elimination.
func bridgeHole(ring, hole []point) []point {
	holeIdx := 0
	for i, p := range hole {
		if p.x < hole[holeIdx].x {
			holeIdx = i
		}
	}
	holePoint := hole[holeIdx]

	// Pick the visible ring vertex: among vertices to the left of the
	// hole point, the one whose connecting segment crosses no ring edge,
	// preferring the closest.
	bridge := -1
	bestDist := math.Inf(1)
	for i, p := range ring {
		if p.x > holePoint.x {
			continue
		}
		dist := math.Hypot(float64(p.x-holePoint.x), float64(p.y-holePoint.y))
		if dist >= bestDist {
			continue
		}
		if segmentIntersectsRing(ring, p, holePoint) {
			continue
		}
		bridge = i
		bestDist = dist
	}
	if bridge == -1 {
		// No visible vertex: fall back to the nearest one.
		for i, p := range ring {
			dist := math.Hypot(float64(p.x-holePoint.x), float64(p.y-holePoint.y))
			if dist < bestDist {
				bestDist = dist
				bridge = i
			}
		}
	}

	// ring[..bridge], bridge, hole[holeIdx..], hole[..holeIdx], holeIdx,
	// bridge, ring[bridge+1..]; both bridge endpoints appear twice.
	spliced := make([]point, 0, len(ring)+len(hole)+2)
	spliced = append(spliced, ring[:bridge+1]...)
	spliced = append(spliced, hole[holeIdx:]...)
	spliced = append(spliced, hole[:holeIdx+1]...)
	spliced = append(spliced, ring[bridge])
	spliced = append(spliced, ring[bridge+1:]...)
	return spliced
}

func segmentIntersectsRing(ring []point, a, b point) bool {
	for i := range ring {
		c, d := ring[i], ring[(i+1)%len(ring)]
		if c == a || d == a {
			continue
		}
		if segmentsCross(a, b, c, d) {
			return true
		}
	}
	return false
}

func segmentsCross(a, b, c, d point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}
