package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/aidangoettsch/go-tilepipe/tile"
)

var ErrInvalidPattern = errors.New("tilepipe: invalid file pattern")

func validatePattern(pattern string) error {
	for _, p := range []string{"{x}", "{y}", "{z}"} {
		if !strings.Contains(pattern, p) {
			return fmt.Errorf("%w: placeholder %v not found", ErrInvalidPattern, p)
		}
	}
	return nil
}

func formatPattern(pattern string, coords tile.Coords) string {
	result := pattern
	result = strings.ReplaceAll(result, "{x}", strconv.FormatInt(int64(coords.X), 10))
	result = strings.ReplaceAll(result, "{y}", strconv.FormatInt(int64(coords.Y), 10))
	result = strings.ReplaceAll(result, "{z}", strconv.FormatUint(uint64(coords.Z), 10))
	return result
}

// XYZDir reads tiles stored as individual files under a directory tree,
// with paths like "/z/x/y.mvt" described by a placeholder pattern.
type XYZDir struct {
	filePattern string
	rootDir     string
	pathRegexp  *regexp.Regexp
}

// OpenXYZDir creates a source for the given file pattern
// (e.g. "/home/user/tiles/{z}/{x}/{y}.mvt").
func OpenXYZDir(filePattern string) (*XYZDir, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}

	regexPattern := filePattern
	regexPattern = strings.ReplaceAll(regexPattern, "{x}", `(?P<x>\d+)`)
	regexPattern = strings.ReplaceAll(regexPattern, "{y}", `(?P<y>\d+)`)
	regexPattern = strings.ReplaceAll(regexPattern, "{z}", `(?P<z>\d+)`)
	pathRegexp, err := regexp.Compile("^" + regexPattern + "$")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	// The deepest shared ancestor of two distinct tile paths is the root
	// of the tree to walk.
	path0 := formatPattern(filePattern, tile.Coords{X: 0, Y: 0, Z: 0})
	path1 := formatPattern(filePattern, tile.Coords{X: 1, Y: 1, Z: 1})
	for path0 != path1 {
		path0 = filepath.Dir(path0)
		path1 = filepath.Dir(path1)
	}

	return &XYZDir{filePattern, path0, pathRegexp}, nil
}

func (x *XYZDir) ReadTile(coords tile.Coords) ([]byte, error) {
	filePath := formatPattern(x.filePattern, coords)
	tileData, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return make([]byte, 0), nil
	}
	if err != nil {
		return nil, err
	}
	return tileData, nil
}

// WriteTile stores tile bytes at the pattern's path, creating parent
// directories as needed. It makes the directory usable as a local cache
// for a remote source.
func (x *XYZDir) WriteTile(coords tile.Coords, tileData []byte) error {
	filePath := formatPattern(x.filePattern, coords)

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	return os.WriteFile(filePath, tileData, 0644)
}

// VisitTiles walks the directory tree and calls the visitor for every
// file matching the pattern. Files that do not match are skipped.
func (x *XYZDir) VisitTiles(visitor TileVisitor) error {
	return filepath.WalkDir(x.rootDir, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		matches := x.pathRegexp.FindStringSubmatch(filePath)
		if matches == nil {
			return nil
		}

		xc, _ := strconv.Atoi(matches[x.pathRegexp.SubexpIndex("x")])
		yc, _ := strconv.Atoi(matches[x.pathRegexp.SubexpIndex("y")])
		zc, _ := strconv.Atoi(matches[x.pathRegexp.SubexpIndex("z")])

		tileData, err := os.ReadFile(filePath)
		if err != nil {
			return err
		}

		return visitor(tile.Coords{X: int32(xc), Y: int32(yc), Z: uint8(zc)}, tileData)
	})
}
