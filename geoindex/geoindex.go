// Package geoindex builds per-tile geometry indexes for feature lookup,
// ordered along a Hilbert curve for spatial locality.
package geoindex

import (
	"sort"

	"github.com/google/hilbert"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/planar"
)

// curveOrder fixes the Hilbert curve resolution: tile extents are
// quantized onto a 2^curveOrder grid before mapping to curve positions.
const curveOrder = 8

// IndexedGeometry is one feature retained in a tile index: its geometry,
// bounding box, source layer and property bag.
type IndexedGeometry struct {
	Layer      string
	Geometry   orb.Geometry
	Bound      orb.Bound
	Properties map[string]any

	hilbertPos uint64
}

// TileIndex holds a tile's indexed geometries sorted by Hilbert curve
// position, so spatially close features sit close in the slice.
type TileIndex struct {
	extent     float64
	geometries []IndexedGeometry
}

// Build indexes every feature of the decoded layers.
func Build(layers mvt.Layers) *TileIndex {
	extent := float64(4096)
	if len(layers) > 0 && layers[0].Extent > 0 {
		extent = float64(layers[0].Extent)
	}

	curve, _ := hilbert.NewHilbert(1 << curveOrder)

	index := &TileIndex{extent: extent}
	for _, layer := range layers {
		for _, feature := range layer.Features {
			if feature.Geometry == nil {
				continue
			}
			bound := feature.Geometry.Bound()
			index.geometries = append(index.geometries, IndexedGeometry{
				Layer:      layer.Name,
				Geometry:   feature.Geometry,
				Bound:      bound,
				Properties: feature.Properties,
				hilbertPos: curvePosition(curve, bound.Center(), extent),
			})
		}
	}

	sort.Slice(index.geometries, func(i, j int) bool {
		return index.geometries[i].hilbertPos < index.geometries[j].hilbertPos
	})
	return index
}

func curvePosition(curve *hilbert.Hilbert, p orb.Point, extent float64) uint64 {
	grid := float64(int(1)<<curveOrder) - 1
	x := clampGrid(p[0]/extent*grid, grid)
	y := clampGrid(p[1]/extent*grid, grid)
	pos, err := curve.MapInverse(x, y)
	if err != nil {
		return 0
	}
	return uint64(pos)
}

func clampGrid(v, grid float64) int {
	if v < 0 {
		return 0
	}
	if v > grid {
		return int(grid)
	}
	return int(v)
}

// Len returns the number of indexed geometries.
func (i *TileIndex) Len() int {
	return len(i.geometries)
}

// Geometries returns all indexed geometries in Hilbert order.
func (i *TileIndex) Geometries() []IndexedGeometry {
	return i.geometries
}

// PointQuery returns the indexed geometries containing the point, in
// Hilbert order. Polygonal geometries are tested exactly; for other
// geometry kinds the bounding box decides.
func (i *TileIndex) PointQuery(p orb.Point) []IndexedGeometry {
	var hits []IndexedGeometry
	for _, g := range i.geometries {
		if !g.Bound.Contains(p) {
			continue
		}
		switch geometry := g.Geometry.(type) {
		case orb.Polygon:
			if !planar.PolygonContains(geometry, p) {
				continue
			}
		case orb.MultiPolygon:
			if !planar.MultiPolygonContains(geometry, p) {
				continue
			}
		}
		hits = append(hits, g)
	}
	return hits
}
