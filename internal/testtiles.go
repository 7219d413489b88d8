package internal

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
)

// PolygonFeature builds a closed square polygon feature in tile
// coordinates with the given properties.
func PolygonFeature(min, max float64, properties map[string]any) *geojson.Feature {
	feature := geojson.NewFeature(orb.Polygon{orb.Ring{
		{min, min},
		{max, min},
		{max, max},
		{min, max},
		{min, min},
	}})
	for k, v := range properties {
		feature.Properties[k] = v
	}
	return feature
}

// LineFeature builds a linestring feature in tile coordinates with the
// given properties.
func LineFeature(points []orb.Point, properties map[string]any) *geojson.Feature {
	line := make(orb.LineString, len(points))
	copy(line, points)
	feature := geojson.NewFeature(line)
	for k, v := range properties {
		feature.Properties[k] = v
	}
	return feature
}

// TileLayer wraps features into a named vector tile layer. Coordinates
// are taken as already in tile space, no projection is applied.
func TileLayer(name string, features ...*geojson.Feature) *mvt.Layer {
	fc := geojson.NewFeatureCollection()
	for _, feature := range features {
		fc.Append(feature)
	}
	return mvt.NewLayer(name, fc)
}

// EncodeTile marshals layers into raw vector tile protobuf bytes.
func EncodeTile(t *testing.T, layers ...*mvt.Layer) []byte {
	t.Helper()

	data, err := mvt.Marshal(mvt.Layers(layers))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// EncodeTileGzipped marshals layers into gzip compressed vector tile
// bytes, the framing most tile servers and MBTiles archives use.
func EncodeTileGzipped(t *testing.T, layers ...*mvt.Layer) []byte {
	t.Helper()

	data, err := mvt.MarshalGzipped(mvt.Layers(layers))
	if err != nil {
		t.Fatal(err)
	}
	return data
}
