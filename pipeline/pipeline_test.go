package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aidangoettsch/go-tilepipe/geoindex"
	"github.com/aidangoettsch/go-tilepipe/internal"
	"github.com/aidangoettsch/go-tilepipe/pipeline"
	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/aidangoettsch/go-tilepipe/tcs"
	"github.com/aidangoettsch/go-tilepipe/tile"
	"github.com/aidangoettsch/go-tilepipe/vector"
)

const testStyleJSON = `{
	"version": 8,
	"name": "test",
	"layers": [
		{
			"id": "water",
			"type": "fill",
			"source": "test",
			"source-layer": "water",
			"filter": ["==", "class", "water"],
			"paint": {"fill-color": "#0000ff"}
		}
	]
}`

type mapSource map[tile.Coords][]byte

func (s mapSource) ReadTile(coords tile.Coords) ([]byte, error) {
	return s[coords], nil
}

type failSource struct{ err error }

func (s failSource) ReadTile(tile.Coords) ([]byte, error) {
	return nil, s.err
}

func testStyle(t *testing.T) *style.Style {
	t.Helper()
	s, err := style.Parse([]byte(testStyleJSON))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func waterTileBytes(t *testing.T) []byte {
	t.Helper()
	return internal.EncodeTile(t, internal.TileLayer("water",
		internal.PolygonFeature(0, 1024, map[string]any{"class": "water"}),
	))
}

func TestRunAttachesTiles(t *testing.T) {
	coords := []tile.Coords{
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 1},
	}
	src := mapSource{}
	for _, c := range coords {
		src[c] = waterTileBytes(t)
	}

	tiles := tcs.New()
	p := &pipeline.Pipeline{
		Source:  src,
		Style:   testStyle(t),
		Layers:  map[string]bool{"water": true},
		Tiles:   tiles,
		Workers: 2,
	}
	if err := p.Run(context.Background(), coords); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, c := range coords {
		layers, ok := tcs.Query[*vector.LayersComponent](tiles, c)
		if !ok {
			t.Errorf("tile %v has no layers component", c)
			continue
		}
		if len(layers.Layers) != 1 {
			t.Errorf("tile %v has %d layer entries, want 1", c, len(layers.Layers))
			continue
		}
		available, ok := layers.Layers[0].(*vector.AvailableVectorLayerData)
		if !ok {
			t.Errorf("tile %v layer entry = %T, want available data", c, layers.Layers[0])
			continue
		}
		if available.StyleLayerID != "water" || len(available.Buffer.Indices) == 0 {
			t.Errorf("tile %v got unexpected layer data: %q with %d indices",
				c, available.StyleLayerID, len(available.Buffer.Indices))
		}
	}
}

func TestRunMissingSourceTile(t *testing.T) {
	coords := tile.Coords{X: 0, Y: 0, Z: 1}

	tiles := tcs.New()
	p := &pipeline.Pipeline{
		Source: mapSource{},
		Style:  testStyle(t),
		Layers: map[string]bool{"water": true},
		Tiles:  tiles,
	}
	if err := p.Run(context.Background(), []tile.Coords{coords}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// An empty source tile still finishes, with the requested layer
	// reported missing.
	layers, ok := tcs.Query[*vector.LayersComponent](tiles, coords)
	if !ok {
		t.Fatal("tile has no layers component")
	}
	if len(layers.Layers) != 1 {
		t.Fatalf("got %d layer entries, want 1", len(layers.Layers))
	}
	missing, ok := layers.Layers[0].(vector.MissingVectorLayerData)
	if !ok || missing.LayerName != "water" {
		t.Errorf("layer entry = %+v, want missing water", layers.Layers[0])
	}
}

func TestRunBuildIndex(t *testing.T) {
	coords := tile.Coords{X: 0, Y: 0, Z: 1}

	tiles := tcs.New()
	p := &pipeline.Pipeline{
		Source:     mapSource{coords: waterTileBytes(t)},
		Style:      testStyle(t),
		Layers:     map[string]bool{"water": true},
		Tiles:      tiles,
		BuildIndex: true,
	}
	if err := p.Run(context.Background(), []tile.Coords{coords}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	index, ok := tcs.Query[*geoindex.TileIndex](tiles, coords)
	if !ok {
		t.Fatal("tile has no geometry index component")
	}
	if index.Len() != 1 {
		t.Errorf("index Len = %d, want 1", index.Len())
	}
}

func TestRunSourceError(t *testing.T) {
	readErr := errors.New("archive corrupted")
	p := &pipeline.Pipeline{
		Source: failSource{err: readErr},
		Style:  testStyle(t),
		Layers: map[string]bool{"water": true},
		Tiles:  tcs.New(),
	}
	err := p.Run(context.Background(), []tile.Coords{{X: 0, Y: 0, Z: 1}})
	if !errors.Is(err, readErr) {
		t.Errorf("Run error = %v, want the source read error", err)
	}
}

func TestRunNoTiles(t *testing.T) {
	p := &pipeline.Pipeline{
		Source: mapSource{},
		Style:  testStyle(t),
		Layers: map[string]bool{"water": true},
		Tiles:  tcs.New(),
	}
	if err := p.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run with no tiles failed: %v", err)
	}
}
