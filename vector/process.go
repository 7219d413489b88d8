package vector

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
	log "github.com/sirupsen/logrus"

	"github.com/aidangoettsch/go-tilepipe/geoindex"
	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/aidangoettsch/go-tilepipe/tess"
	"github.com/aidangoettsch/go-tilepipe/tile"
)

// ErrDecode marks malformed tile bytes. Decoding failure is fatal for the
// whole tile request: nothing is reported to the sink.
var ErrDecode = errors.New("vector: tile decode failed")

// ErrSend marks a sink delivery failure, fatal for the current tile's
// remaining processing.
var ErrSend = errors.New("vector: sending report failed")

// Request describes one tile processing invocation.
type Request struct {
	Coords tile.Coords

	// Layers is the set of requested source layer names.
	Layers map[string]bool

	// Style supplies the layers to match against. It is only read and may
	// be shared across concurrent requests.
	Style *style.Style

	// BuildIndex additionally builds a geometry index over the decoded
	// layers and reports it with a LayerIndexed message.
	BuildIndex bool
}

var gzipMagic = []byte{0x1f, 0x8b}

func decode(data []byte) (mvt.Layers, error) {
	if bytes.HasPrefix(data, gzipMagic) {
		return mvt.UnmarshalGzipped(data)
	}
	return mvt.Unmarshal(data)
}

// Process decodes a tile and tessellates every requested layer against
// every matching style layer, reporting through the sink. Per tile the
// report order is: per-layer results, then missing-layer reports for
// absent layers, then TileFinished.
//
// A failed style layer is reported missing and processing continues with
// the remaining layers; only decode and send failures abort the request.
func Process(data []byte, req Request, sink Sink) error {
	layers, err := decode(data)
	if err != nil {
		log.WithFields(log.Fields{"coords": req.Coords}).Error("tile decode failed")
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	for _, layer := range layers {
		if !req.Layers[layer.Name] {
			continue
		}
		for _, styleLayer := range req.Style.LayersForSource(layer.Name) {
			if err := processStyleLayer(layer, styleLayer, req.Coords, sink); err != nil {
				return err
			}
		}
	}

	available := make(map[string]bool, len(layers))
	for _, layer := range layers {
		available[layer.Name] = true
	}
	for name := range req.Layers {
		if available[name] {
			continue
		}
		log.WithFields(log.Fields{"coords": req.Coords, "layer": name}).Warn("requested layer not found in tile")
		if err := sink.Send(LayerMissing{Tile: req.Coords, LayerName: name}); err != nil {
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
	}

	if req.BuildIndex {
		index := geoindex.Build(layers)
		if err := sink.Send(LayerIndexed{Tile: req.Coords, Index: index}); err != nil {
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
	}

	if err := sink.Send(TileFinished{Tile: req.Coords}); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

func processStyleLayer(layer *mvt.Layer, styleLayer *style.StyleLayer, coords tile.Coords, sink Sink) error {
	tessellator := tess.New(styleLayer.Filter)

	if err := processLayer(layer, tessellator); err != nil {
		log.WithFields(log.Fields{
			"coords":      coords,
			"style_layer": styleLayer.ID,
		}).WithError(err).Error("layer tessellation failed")
		if err := sink.Send(LayerMissing{Tile: coords, LayerName: styleLayer.ID}); err != nil {
			return fmt.Errorf("%w: %v", ErrSend, err)
		}
		return nil
	}

	report := LayerTessellated{
		Data: AvailableVectorLayerData{
			Coords:         coords,
			Buffer:         tessellator.Buffer,
			FeatureIndices: tessellator.FeatureIndices,
			StyleLayerID:   styleLayer.ID,
		},
		RawLayer: layer,
	}
	if err := sink.Send(report); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}
