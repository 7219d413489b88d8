// Package source provides raw tile byte sources for the processing
// pipeline: MBTiles archives, XYZ directory trees, and URL templates for
// remote servers.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using the MBTiles
// source.
package source

import (
	"github.com/aidangoettsch/go-tilepipe/tile"
)

// RawTileSource yields encoded tile bytes for coordinates. A source
// returns an empty slice, not an error, for a tile it does not have.
type RawTileSource interface {
	ReadTile(coords tile.Coords) ([]byte, error)
}

// TileVisitor is called once per stored tile during enumeration.
type TileVisitor func(coords tile.Coords, data []byte) error
