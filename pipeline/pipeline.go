// Package pipeline fans tile processing out over a worker pool and
// attaches finished results to a tile component store.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/aidangoettsch/go-tilepipe/geoindex"
	"github.com/aidangoettsch/go-tilepipe/source"
	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/aidangoettsch/go-tilepipe/tcs"
	"github.com/aidangoettsch/go-tilepipe/tile"
	"github.com/aidangoettsch/go-tilepipe/vector"
)

// Pipeline drives decode and tessellation for batches of tiles. Each
// tile is processed independently on a worker; reports flow through a
// single consumer that owns all store writes, so a tile's components
// become visible only once its processing has finished.
type Pipeline struct {
	Source source.RawTileSource
	Style  *style.Style

	// Layers is the set of requested source layer names.
	Layers map[string]bool

	// Tiles receives a LayersComponent per finished tile, and a TileIndex
	// component when BuildIndex is set.
	Tiles *tcs.Tiles

	// Workers bounds concurrent tile processing. Zero means one worker
	// per CPU.
	Workers int

	BuildIndex bool
}

type pendingTile struct {
	layers []vector.VectorLayerData
	index  *geoindex.TileIndex
}

// Run processes every tile and attaches the results. It returns the
// first error encountered; remaining work is cancelled through ctx.
func (p *Pipeline) Run(ctx context.Context, coords []tile.Coords) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	messages := make(chan vector.Message)

	g.Go(func() error {
		defer close(messages)

		producers, ctx := errgroup.WithContext(ctx)
		producers.SetLimit(workers)
		for _, c := range coords {
			c := c
			producers.Go(func() error {
				return p.processTile(ctx, c, messages)
			})
		}
		return producers.Wait()
	})

	g.Go(func() error {
		pending := make(map[tile.Coords]*pendingTile, len(coords))
		for m := range messages {
			p.consume(m, pending)
		}
		return nil
	})

	return g.Wait()
}

func (p *Pipeline) processTile(ctx context.Context, coords tile.Coords, messages chan<- vector.Message) error {
	data, err := p.Source.ReadTile(coords)
	if err != nil {
		return fmt.Errorf("reading tile %v: %w", coords, err)
	}

	sink := vector.SinkFunc(func(m vector.Message) error {
		select {
		case messages <- m:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	req := vector.Request{
		Coords:     coords,
		Layers:     p.Layers,
		Style:      p.Style,
		BuildIndex: p.BuildIndex,
	}
	return vector.Process(data, req, sink)
}

// consume folds one report into the per-tile accumulation, attaching to
// the store when the tile's finished marker arrives.
func (p *Pipeline) consume(m vector.Message, pending map[tile.Coords]*pendingTile) {
	entry := pending[m.Coords()]
	if entry == nil {
		entry = &pendingTile{}
		pending[m.Coords()] = entry
	}

	switch m := m.(type) {
	case vector.LayerTessellated:
		data := m.Data
		entry.layers = append(entry.layers, &data)
	case vector.LayerMissing:
		entry.layers = append(entry.layers, vector.MissingVectorLayerData{LayerName: m.LayerName})
	case vector.LayerIndexed:
		entry.index = m.Index
	case vector.TileFinished:
		delete(pending, m.Coords())
		handle, ok := p.Tiles.Spawn(m.Coords())
		if !ok {
			log.WithFields(log.Fields{"coords": m.Coords()}).Warn("dropping result for unaddressable tile")
			return
		}
		handle.Insert(&vector.LayersComponent{Layers: entry.layers})
		if entry.index != nil {
			handle.Insert(entry.index)
		}
		log.WithFields(log.Fields{
			"coords": m.Coords(),
			"layers": len(entry.layers),
		}).Debug("tile attached")
	}
}
