// Package tile provides world tile coordinates and quadkey addressing.
package tile

import "fmt"

// MaxZoom is the deepest zoom level for which quadkeys can be derived.
const MaxZoom = 30

// Coords represents tile coordinates in the XYZ scheme (Tiled web map).
type Coords struct {
	X int32
	Y int32
	Z uint8
}

func (c Coords) Valid() bool {
	return c.Z <= MaxZoom &&
		c.X >= 0 && c.X < 1<<c.Z &&
		c.Y >= 0 && c.Y < 1<<c.Z
}

func (c Coords) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Parent returns the tile one zoom level up that contains c.
// The root tile is its own parent.
func (c Coords) Parent() Coords {
	if c.Z == 0 {
		return c
	}
	return Coords{X: c.X >> 1, Y: c.Y >> 1, Z: c.Z - 1}
}

// ToTMS converts c to the TMS scheme, where tile rows count from the
// bottom of the map instead of the top. The conversion is an involution:
// applying it twice yields the original coordinates.
func (c Coords) ToTMS() Coords {
	return Coords{X: c.X, Y: (1 << c.Z) - 1 - c.Y, Z: c.Z}
}

// Quadkey is the path from the root tile to a tile, one base-4 digit per
// zoom level. An ancestor's key is a strict prefix of every descendant's
// key, so lexicographic comparison groups subtrees together.
type Quadkey string

// Quadkey derives the quadkey for c. It reports false for coordinates
// outside the addressable pyramid (negative, overflowing, or deeper than
// MaxZoom); such coordinates have no storage key.
func (c Coords) Quadkey() (Quadkey, bool) {
	if !c.Valid() {
		return "", false
	}
	key := make([]byte, c.Z)
	for i := uint8(0); i < c.Z; i++ {
		shift := c.Z - i - 1
		digit := byte('0')
		if c.X>>shift&1 == 1 {
			digit++
		}
		if c.Y>>shift&1 == 1 {
			digit += 2
		}
		key[i] = digit
	}
	return Quadkey(key), true
}

// Zoom returns the zoom level the key addresses.
func (q Quadkey) Zoom() uint8 {
	return uint8(len(q))
}

// IsAncestorOf reports whether q addresses a strict ancestor of other.
func (q Quadkey) IsAncestorOf(other Quadkey) bool {
	return len(q) < len(other) && other[:len(q)] == q
}
