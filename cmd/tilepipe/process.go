package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/aidangoettsch/go-tilepipe/pipeline"
	"github.com/aidangoettsch/go-tilepipe/source"
	"github.com/aidangoettsch/go-tilepipe/style"
	"github.com/aidangoettsch/go-tilepipe/tcs"
	"github.com/aidangoettsch/go-tilepipe/tile"
	"github.com/aidangoettsch/go-tilepipe/vector"
)

type processCmd struct {
	inputPath   string
	inputFormat string
	stylePath   string
	layers      string
	workers     int
	buildIndex  bool
}

func (c *processCmd) Name() string     { return "process" }
func (c *processCmd) Synopsis() string { return "tessellate tiles against a style document" }
func (c *processCmd) Usage() string {
	return "tilepipe process -i <path> -style <style.json> [-layers a,b] [-index] <z/x/y> [z/x/y ...]\n"
}
func (c *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input path")
	f.StringVar(&c.inputFormat, "if", "", "Input format (mbtiles, xyz)")
	f.StringVar(&c.stylePath, "style", "", "Style document path")
	f.StringVar(&c.layers, "layers", "", "Comma-separated source layers (default: all the style references)")
	f.IntVar(&c.workers, "workers", 0, "Concurrent tile workers (default: one per CPU)")
	f.BoolVar(&c.buildIndex, "index", false, "Build a geometry index per tile")
}

func parseCoords(arg string) (tile.Coords, error) {
	var z uint8
	var x, y int32
	if _, err := fmt.Sscanf(arg, "%d/%d/%d", &z, &x, &y); err != nil {
		return tile.Coords{}, fmt.Errorf("invalid tile %q: %w", arg, err)
	}
	coords := tile.Coords{X: x, Y: y, Z: z}
	if !coords.Valid() {
		return tile.Coords{}, fmt.Errorf("tile %q out of range", arg)
	}
	return coords, nil
}

func requestedLayers(spec string, s *style.Style) map[string]bool {
	layers := make(map[string]bool)
	if spec != "" {
		for _, name := range strings.Split(spec, ",") {
			layers[strings.TrimSpace(name)] = true
		}
		return layers
	}
	for i := range s.Layers {
		if s.Layers[i].SourceLayer != nil {
			layers[*s.Layers[i].SourceLayer] = true
		}
	}
	return layers
}

func openSource(format, path string) (source.RawTileSource, error) {
	switch deduceFormat(format, path) {
	case "mbtiles":
		return source.OpenMBTiles(path)
	case "xyz", "":
		return source.OpenXYZDir(path)
	default:
		return nil, fmt.Errorf("invalid input format: %q", format)
	}
}

func (c *processCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 || c.stylePath == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	coords := make([]tile.Coords, 0, f.NArg())
	for _, arg := range f.Args() {
		parsed, err := parseCoords(arg)
		if err != nil {
			log.Error(err)
			return subcommands.ExitUsageError
		}
		coords = append(coords, parsed)
	}

	styleData, err := os.ReadFile(c.stylePath)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	styleDoc, err := style.Parse(styleData)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}

	src, err := openSource(c.inputFormat, c.inputPath)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	tiles := tcs.New()
	p := &pipeline.Pipeline{
		Source:     src,
		Style:      styleDoc,
		Layers:     requestedLayers(c.layers, styleDoc),
		Tiles:      tiles,
		Workers:    c.workers,
		BuildIndex: c.buildIndex,
	}
	if err := p.Run(ctx, coords); err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}

	for _, coord := range coords {
		layers, ok := tcs.Query[*vector.LayersComponent](tiles, coord)
		if !ok {
			fmt.Printf("%v: no result\n", coord)
			continue
		}
		fmt.Printf("%v:\n", coord)
		for _, data := range layers.Layers {
			switch data := data.(type) {
			case *vector.AvailableVectorLayerData:
				fmt.Printf("  %-20s %6d vertices %6d indices %4d features\n",
					data.StyleLayerID, len(data.Buffer.Vertices), len(data.Buffer.Indices), len(data.FeatureIndices))
			case vector.MissingVectorLayerData:
				fmt.Printf("  %-20s missing\n", data.LayerName)
			}
		}
	}

	return subcommands.ExitSuccess
}
