// Package tcs is the tile component store: a registry from quadkey to a
// tile identity and an ordered list of heterogeneous components.
//
// The store is designed for single-owner access; it is not safe for
// concurrent mutation. Within one query session, exclusive borrows are
// tracked per component type and a repeated exclusive borrow of the same
// type is reported as an error rather than permitted as a silent race.
package tcs

import (
	"fmt"

	"github.com/aidangoettsch/go-tilepipe/tess"
	"github.com/aidangoettsch/go-tilepipe/tile"
	"github.com/aidangoettsch/go-tilepipe/vector"
)

// Tile is the identity record of a spawned tile entry.
type Tile struct {
	Coords tile.Coords
}

// Component is any data value attachable to a tile. At most one live
// value of each concrete component type is expected per tile; queries
// return the first stored match.
type Component any

type entry struct {
	tile       Tile
	components []Component
}

// Tiles maps quadkeys to tile entries. The zero value is not usable;
// construct with New, which tessellates the shared background quad.
type Tiles struct {
	entries map[tile.Quadkey]*entry

	backgroundTile vector.AvailableVectorLayerData
}

// New creates an empty store. The full-extent background quad is
// tessellated once here and reused for every background style layer.
func New() *Tiles {
	tessellator := tess.New(nil)

	// The unit background polygon spanning the tile extent.
	const extent = float64(vector.Extent)
	mustEvent := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("tcs: background quad tessellation failed: %v", err))
		}
	}
	mustEvent(tessellator.FeatureBegin())
	mustEvent(tessellator.PolygonBegin(true))
	mustEvent(tessellator.Coord(0, 0))
	mustEvent(tessellator.Coord(0, extent))
	mustEvent(tessellator.Coord(extent, extent))
	mustEvent(tessellator.Coord(extent, 0))
	mustEvent(tessellator.PolygonEnd(true))
	mustEvent(tessellator.FeatureEnd())

	return &Tiles{
		entries: map[tile.Quadkey]*entry{},
		backgroundTile: vector.AvailableVectorLayerData{
			Coords:         tile.Coords{},
			Buffer:         tessellator.Buffer,
			FeatureIndices: tessellator.FeatureIndices,
			StyleLayerID:   "background",
		},
	}
}

// Exists reports whether a tile entry exists at the coordinates.
func (t *Tiles) Exists(coords tile.Coords) bool {
	key, ok := coords.Quadkey()
	if !ok {
		return false
	}
	_, ok = t.entries[key]
	return ok
}

// Spawn returns a handle to the tile entry at the coordinates, creating
// an empty entry if none exists. Spawning an existing tile returns the
// same entry; its components are kept. It reports false only for
// coordinates that cannot be encoded as a quadkey.
func (t *Tiles) Spawn(coords tile.Coords) (TileSpawnResult, bool) {
	key, ok := coords.Quadkey()
	if !ok {
		return TileSpawnResult{}, false
	}
	if _, ok := t.entries[key]; !ok {
		t.entries[key] = &entry{tile: Tile{Coords: coords}}
	}
	return TileSpawnResult{tiles: t, tile: Tile{Coords: coords}}, true
}

// Clear empties all tiles and components.
func (t *Tiles) Clear() {
	clear(t.entries)
}

// FindLayer resolves the tessellated layer to load for a style layer at
// a tile. With a source layer name set, it searches the tile's vector
// layers component for an available entry matching the style layer id
// that the caller has not already loaded (per the loaded set maintained
// by the external buffer index). Without a source layer name the style
// layer is a background layer and the shared background quad is
// returned, unless already loaded.
func (t *Tiles) FindLayer(coords tile.Coords, sourceLayer *string, styleLayerID string, loaded map[string]bool) *vector.AvailableVectorLayerData {
	if sourceLayer == nil {
		if loaded[styleLayerID] {
			return nil
		}
		t.backgroundTile.StyleLayerID = styleLayerID
		return &t.backgroundTile
	}

	layers, ok := Query[*vector.LayersComponent](t, coords)
	if !ok {
		return nil
	}
	for _, data := range layers.Layers {
		available, ok := data.(*vector.AvailableVectorLayerData)
		if !ok {
			continue
		}
		if available.StyleLayerID == styleLayerID && !loaded[available.StyleLayerID] {
			return available
		}
	}
	return nil
}

// TileSpawnResult is a transient handle used to attach components to a
// spawned tile. It must not be used after the store is cleared.
type TileSpawnResult struct {
	tiles *Tiles
	tile  Tile
}

func (r TileSpawnResult) Tile() Tile { return r.tile }

// Insert appends a component to the tile's component list. Attaching to
// a tile that no longer exists is a programming error and panics.
func (r TileSpawnResult) Insert(component Component) TileSpawnResult {
	key, ok := r.tile.Coords.Quadkey()
	if !ok {
		return r
	}
	e, exists := r.tiles.entries[key]
	if !exists {
		panic(fmt.Sprintf("tcs: can not add a component at %v: entry does not exist", r.tile.Coords))
	}
	e.components = append(e.components, component)
	return r
}
