package tess

type point struct {
	x, y float32
}

// pathBuilder accumulates subpaths between begin/end events. Input
// coordinates are double-precision but are narrowed to single precision
// on entry to match the vertex format.
type pathBuilder struct {
	subpaths [][]point
	current  []point
}

func (p *pathBuilder) begin(x, y float64) {
	p.current = append(p.current[:0:0], point{float32(x), float32(y)})
}

func (p *pathBuilder) lineTo(x, y float64) {
	p.current = append(p.current, point{float32(x), float32(y)})
}

// end terminates the current subpath. With close set, the subpath is
// forced closed: a trailing duplicate of the first point is dropped and
// the subpath is recorded as a ring.
func (p *pathBuilder) end(close bool) {
	subpath := p.current
	p.current = nil
	if len(subpath) == 0 {
		return
	}
	if close && len(subpath) > 1 {
		last := subpath[len(subpath)-1]
		if last == subpath[0] {
			subpath = subpath[:len(subpath)-1]
		}
	}
	p.subpaths = append(p.subpaths, subpath)
}

// take returns the accumulated subpaths and resets the builder.
func (p *pathBuilder) take() [][]point {
	subpaths := p.subpaths
	p.subpaths = nil
	p.current = nil
	return subpaths
}
