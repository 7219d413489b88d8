// Package tess converts geometry event streams into GPU-ready vertex and
// index buffers.
package tess

// GeometryProcessor consumes an ordered geometry event stream. Coordinates
// arrive between a begin and the matching end event; the tagged flag marks
// standalone geometries, whose completion triggers tessellation, as
// opposed to members of a multi-geometry, which tessellate once at the
// multi end event.
type GeometryProcessor interface {
	Coord(x, y float64) error

	PointBegin() error
	PointEnd() error
	MultiPointBegin() error
	MultiPointEnd() error

	LinestringBegin(tagged bool) error
	LinestringEnd(tagged bool) error
	MultiLinestringBegin() error
	MultiLinestringEnd() error

	PolygonBegin(tagged bool) error
	PolygonEnd(tagged bool) error
	MultiPolygonBegin() error
	MultiPolygonEnd() error
}

// PropertyProcessor consumes a feature's property key/value pairs.
type PropertyProcessor interface {
	Property(name string, value any) error
}

// FeatureProcessor brackets per-feature state.
type FeatureProcessor interface {
	FeatureBegin() error
	FeatureEnd() error
}

// StreamProcessor consumes a full feature stream: for every feature a
// FeatureBegin, its properties, its geometry events, then a FeatureEnd.
type StreamProcessor interface {
	FeatureProcessor
	PropertyProcessor
	GeometryProcessor
}
