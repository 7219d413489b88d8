package tess

import (
	log "github.com/sirupsen/logrus"

	"github.com/aidangoettsch/go-tilepipe/style"
)

// DefaultTolerance is the fixed tessellation tolerance, in tile units.
const DefaultTolerance = 0.02

// Tessellator consumes a feature event stream and produces an indexed
// vertex buffer plus a per-feature index-count ledger. A tessellator is
// single-use per layer: construct one, feed it a stream, read Buffer and
// FeatureIndices.
//
// When a filter is configured, it is evaluated against the feature's
// accumulated properties on every geometry emission (a feature may emit
// several times before it ends), with a synthetic "$type" property naming
// the geometry class. Rejected features contribute no vertices, no
// indices, and no ledger entry.
type Tessellator struct {
	path     pathBuilder
	pathOpen bool
	isPoint  bool

	Buffer VertexBuffers

	// FeatureIndices records, per non-filtered feature in processing
	// order, how many indices the feature appended.
	FeatureIndices []uint32
	currentIndex   int

	filter     *style.Filter
	properties style.Properties
	filtered   bool
}

// New creates a tessellator. A nil filter admits every feature.
func New(filter *style.Filter) *Tessellator {
	return &Tessellator{
		filter:     filter,
		properties: style.Properties{},
	}
}

func (t *Tessellator) matchesFilter() (bool, error) {
	if t.filter == nil {
		return true, nil
	}
	return t.filter.Evaluate(t.properties)
}

func (t *Tessellator) updateFeatureIndices() {
	next := len(t.Buffer.Indices)
	t.FeatureIndices = append(t.FeatureIndices, uint32(next-t.currentIndex))
	t.currentIndex = next
}

func (t *Tessellator) tessellateStrokes() error {
	subpaths := t.path.take()

	t.properties["$type"] = style.String("LineString")
	match, err := t.matchesFilter()
	if err != nil {
		return err
	}
	if !match {
		t.filtered = true
		log.WithFields(log.Fields{"geometry": "LineString"}).Debug("feature filtered")
		return nil
	}

	strokePath(&t.Buffer, subpaths)
	return nil
}

func (t *Tessellator) tessellateFill() error {
	subpaths := t.path.take()

	t.properties["$type"] = style.String("Polygon")
	match, err := t.matchesFilter()
	if err != nil {
		return err
	}
	if !match {
		t.filtered = true
		log.WithFields(log.Fields{"geometry": "Polygon"}).Debug("feature filtered")
		return nil
	}

	return fillPath(&t.Buffer, subpaths, DefaultTolerance)
}

func (t *Tessellator) endPath(close bool) {
	if t.pathOpen {
		t.path.end(close)
		t.pathOpen = false
	}
}

// FeatureBegin implements FeatureProcessor.
func (t *Tessellator) FeatureBegin() error {
	clear(t.properties)
	t.filtered = false
	return nil
}

// FeatureEnd implements FeatureProcessor. For unfiltered features it
// appends the index growth since the previous accounted feature to the
// ledger.
func (t *Tessellator) FeatureEnd() error {
	if !t.filtered {
		t.updateFeatureIndices()
	}
	return nil
}

// Property implements PropertyProcessor.
func (t *Tessellator) Property(name string, value any) error {
	literal, err := style.LiteralOf(value)
	if err != nil {
		return err
	}
	t.properties[name] = literal
	return nil
}

// Coord implements GeometryProcessor.
func (t *Tessellator) Coord(x, y float64) error {
	switch {
	case t.isPoint:
		// Point geometry is not tessellated.
	case !t.pathOpen:
		t.path.begin(x, y)
		t.pathOpen = true
	default:
		t.path.lineTo(x, y)
	}
	return nil
}

func (t *Tessellator) PointBegin() error {
	t.isPoint = true
	return nil
}

func (t *Tessellator) PointEnd() error {
	t.isPoint = false
	return nil
}

func (t *Tessellator) MultiPointBegin() error { return nil }
func (t *Tessellator) MultiPointEnd() error   { return nil }

func (t *Tessellator) LinestringBegin(bool) error { return nil }

func (t *Tessellator) LinestringEnd(tagged bool) error {
	t.endPath(false)
	if tagged {
		return t.tessellateStrokes()
	}
	return nil
}

func (t *Tessellator) MultiLinestringBegin() error { return nil }

func (t *Tessellator) MultiLinestringEnd() error {
	return t.tessellateStrokes()
}

func (t *Tessellator) PolygonBegin(bool) error { return nil }

func (t *Tessellator) PolygonEnd(tagged bool) error {
	t.endPath(true)
	if tagged {
		return t.tessellateFill()
	}
	return nil
}

func (t *Tessellator) MultiPolygonBegin() error { return nil }

func (t *Tessellator) MultiPolygonEnd() error {
	return t.tessellateFill()
}
