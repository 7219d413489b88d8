package vector

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"

	"github.com/aidangoettsch/go-tilepipe/tess"
)

// processLayer streams a decoded layer's features through the processor:
// per feature its properties, then its geometry events.
func processLayer(layer *mvt.Layer, proc tess.StreamProcessor) error {
	for _, feature := range layer.Features {
		if err := proc.FeatureBegin(); err != nil {
			return err
		}
		for name, value := range feature.Properties {
			if err := proc.Property(name, value); err != nil {
				return err
			}
		}
		if feature.Geometry != nil {
			if err := processGeometry(feature.Geometry, proc, true); err != nil {
				return err
			}
		}
		if err := proc.FeatureEnd(); err != nil {
			return err
		}
	}
	return nil
}

// processGeometry emits the event stream for one geometry. The tagged
// flag marks standalone geometries; members of a multi-geometry are
// untagged so that tessellation happens once, at the multi end event.
func processGeometry(geometry orb.Geometry, proc tess.GeometryProcessor, tagged bool) error {
	switch g := geometry.(type) {
	case orb.Point:
		return processPoint(g, proc)
	case orb.MultiPoint:
		if err := proc.MultiPointBegin(); err != nil {
			return err
		}
		for _, p := range g {
			if err := processPoint(p, proc); err != nil {
				return err
			}
		}
		return proc.MultiPointEnd()
	case orb.LineString:
		return processLinestring(g, proc, tagged)
	case orb.MultiLineString:
		if err := proc.MultiLinestringBegin(); err != nil {
			return err
		}
		for _, line := range g {
			if err := processLinestring(line, proc, false); err != nil {
				return err
			}
		}
		return proc.MultiLinestringEnd()
	case orb.Ring:
		return processLinestring(orb.LineString(g), proc, false)
	case orb.Polygon:
		return processPolygon(g, proc, tagged)
	case orb.MultiPolygon:
		if err := proc.MultiPolygonBegin(); err != nil {
			return err
		}
		for _, polygon := range g {
			if err := processPolygon(polygon, proc, false); err != nil {
				return err
			}
		}
		return proc.MultiPolygonEnd()
	case orb.Collection:
		for _, member := range g {
			if err := processGeometry(member, proc, tagged); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unhandled geometry %T", ErrDecode, geometry)
	}
}

func processPoint(p orb.Point, proc tess.GeometryProcessor) error {
	if err := proc.PointBegin(); err != nil {
		return err
	}
	if err := proc.Coord(p[0], p[1]); err != nil {
		return err
	}
	return proc.PointEnd()
}

func processLinestring(line orb.LineString, proc tess.GeometryProcessor, tagged bool) error {
	if err := proc.LinestringBegin(tagged); err != nil {
		return err
	}
	for _, p := range line {
		if err := proc.Coord(p[0], p[1]); err != nil {
			return err
		}
	}
	return proc.LinestringEnd(tagged)
}

func processPolygon(polygon orb.Polygon, proc tess.GeometryProcessor, tagged bool) error {
	if err := proc.PolygonBegin(tagged); err != nil {
		return err
	}
	for _, ring := range polygon {
		if err := processLinestring(orb.LineString(ring), proc, false); err != nil {
			return err
		}
	}
	return proc.PolygonEnd(tagged)
}
