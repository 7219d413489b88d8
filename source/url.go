package source

import (
	"fmt"

	"github.com/aidangoettsch/go-tilepipe/tile"
)

// AddressingScheme selects the row-order convention used when formatting
// tile URLs.
type AddressingScheme int

const (
	SchemeXYZ AddressingScheme = iota
	SchemeTMS
)

// TessellateSource describes a remote server of encoded vector tiles.
type TessellateSource struct {
	URL      string
	Filetype string
	MaxZoom  uint8
	Scheme   AddressingScheme
}

// Format builds the request URL for a tile.
func (s TessellateSource) Format(coords tile.Coords) string {
	if s.Scheme == SchemeTMS {
		coords = coords.ToTMS()
	}
	return fmt.Sprintf("%s/%d/%d/%d.%s", s.URL, coords.Z, coords.X, coords.Y, s.Filetype)
}

// Covers reports whether the source serves the zoom level.
func (s TessellateSource) Covers(coords tile.Coords) bool {
	return coords.Z <= s.MaxZoom
}

// RasterSource describes a remote server of raster tiles with a keyed
// query string.
type RasterSource struct {
	URL      string
	Filetype string
	Key      string
	Scheme   AddressingScheme
}

// Format builds the request URL for a tile.
func (s RasterSource) Format(coords tile.Coords) string {
	if s.Scheme == SchemeTMS {
		coords = coords.ToTMS()
	}
	return fmt.Sprintf("%s/%d/%d/%d.%s?key=%s", s.URL, coords.Z, coords.X, coords.Y, s.Filetype, s.Key)
}
