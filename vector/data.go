// Package vector decodes vector tiles and drives tessellation per style
// layer, reporting results as typed messages to a caller-supplied sink.
package vector

import (
	"github.com/paulmach/orb/encoding/mvt"

	"github.com/aidangoettsch/go-tilepipe/geoindex"
	"github.com/aidangoettsch/go-tilepipe/tess"
	"github.com/aidangoettsch/go-tilepipe/tile"
)

// Extent is the nominal tile coordinate extent of a vector tile.
const Extent = 4096

// AvailableVectorLayerData is one successfully tessellated style layer of
// a tile: its mesh and the per-feature index-count ledger. The sum of
// FeatureIndices equals len(Buffer.Indices).
type AvailableVectorLayerData struct {
	Coords         tile.Coords
	Buffer         tess.VertexBuffers
	FeatureIndices []uint32
	StyleLayerID   string
}

func (*AvailableVectorLayerData) vectorLayerData() {}

// MissingVectorLayerData marks a layer that produced no mesh, either
// absent from the tile or failed during tessellation.
type MissingVectorLayerData struct {
	LayerName string
}

func (MissingVectorLayerData) vectorLayerData() {}

// VectorLayerData is the closed available-or-missing variant stored per
// style layer.
type VectorLayerData interface {
	vectorLayerData()
}

// LayersComponent collects a tile's per-style-layer results. It is
// attached to the tile component store once the tile's pipeline finishes.
type LayersComponent struct {
	Layers []VectorLayerData
}

// Message is a report from tile processing, delivered through a Sink.
type Message interface {
	Coords() tile.Coords
}

// TileFinished signals that all layers of a tile have been processed.
type TileFinished struct {
	Tile tile.Coords
}

func (m TileFinished) Coords() tile.Coords { return m.Tile }

// LayerMissing reports a style layer that yielded no data for a tile.
type LayerMissing struct {
	Tile      tile.Coords
	LayerName string
}

func (m LayerMissing) Coords() tile.Coords { return m.Tile }

// LayerTessellated carries one style layer's tessellation result along
// with the decoded source layer it came from.
type LayerTessellated struct {
	Data     AvailableVectorLayerData
	RawLayer *mvt.Layer
}

func (m LayerTessellated) Coords() tile.Coords { return m.Data.Coords }

// LayerIndexed carries a tile's geometry index.
type LayerIndexed struct {
	Tile  tile.Coords
	Index *geoindex.TileIndex
}

func (m LayerIndexed) Coords() tile.Coords { return m.Tile }

// Sink receives processing reports. Send may fail; a send failure aborts
// the current tile's remaining processing.
type Sink interface {
	Send(Message) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Message) error

func (f SinkFunc) Send(m Message) error { return f(m) }
